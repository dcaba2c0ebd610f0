package stats

// UserStats is derived/cached per-user state kept alongside the session
// ledger. It is not fully derivable from ledger replay: the mystery-egg and
// duel side channels write here directly, and that coupling is intentional.
type UserStats struct {
	Streak          int      `json:"streak"`
	LongestStreak   int      `json:"longest_streak"`
	LifetimeTopTier int      `json:"lifetime_top_tier"`
	WeeklyTopTier   int      `json:"weekly_top_tier"`
	WeeklyCompleted int      `json:"weekly_completed"`
	BonusPoints     int      `json:"bonus_points"`
	Achievements    []string `json:"achievements,omitempty"`
	PendingEffect   string   `json:"pending_effect,omitempty"`
	LastEggDay      string   `json:"last_egg_day,omitempty"`
	Themes          []string `json:"themes,omitempty"`
}

// RecordCompletion updates the streak and weekly/lifetime counters for one
// natural completion.
func (u *UserStats) RecordCompletion(topTier bool) {
	u.Streak++
	if u.Streak > u.LongestStreak {
		u.LongestStreak = u.Streak
	}
	u.WeeklyCompleted++
	if topTier {
		u.WeeklyTopTier++
		u.LifetimeTopTier++
	}
}

// ResetStreak zeroes the streak after an abort or cycle rollover.
func (u *UserStats) ResetStreak() {
	u.Streak = 0
}

// Momentum is the display multiplier derived from the streak. It is never
// fed back into scoring.
func (u *UserStats) Momentum() float64 {
	switch {
	case u.Streak >= 4:
		return 2.0
	case u.Streak == 3:
		return 1.5
	case u.Streak == 2:
		return 1.2
	default:
		return 1.0
	}
}

// HasAchievement reports whether the badge id was already granted.
func (u *UserStats) HasAchievement(id string) bool {
	for _, a := range u.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// Grant adds a badge id if not already present and reports whether it was new.
func (u *UserStats) Grant(id string) bool {
	if u.HasAchievement(id) {
		return false
	}
	u.Achievements = append(u.Achievements, id)
	return true
}

// UnlockTheme adds a cosmetic set if not already unlocked.
func (u *UserStats) UnlockTheme(name string) {
	for _, t := range u.Themes {
		if t == name {
			return
		}
	}
	u.Themes = append(u.Themes, name)
}

// ResetWeekly clears the cycle-scoped counters at rollover. Lifetime
// counters, achievements, and themes are untouched.
func (u *UserStats) ResetWeekly() {
	u.WeeklyTopTier = 0
	u.WeeklyCompleted = 0
	u.BonusPoints = 0
	u.Streak = 0
}

package engine

import (
	"time"

	"chicfocus/internal/cycle"
	"chicfocus/internal/scoring"
	"chicfocus/internal/tiers"
)

// UserView is one user's slice of the state snapshot.
type UserView struct {
	Points        int      `json:"points"`
	SessionsToday int      `json:"sessions_today"`
	DailyLimit    int      `json:"daily_limit"`
	Streak        int      `json:"streak"`
	LongestStreak int      `json:"longest_streak"`
	Momentum      float64  `json:"momentum"`
	Achievements  []string `json:"achievements"`
	Themes        []string `json:"themes"`
	ActiveTask    string   `json:"active_task,omitempty"`
	ActiveTier    int      `json:"active_tier,omitempty"`
	Remaining     int      `json:"remaining,omitempty"`
}

// Snapshot is the full point-in-time state delivered to clients.
type Snapshot struct {
	Users         map[string]UserView `json:"users"`
	Tiers         []tiers.Tier        `json:"tiers"`
	CycleStart    time.Time           `json:"cycle_start"`
	DaysRemaining int                 `json:"days_remaining"`
	LastWinner    string              `json:"last_winner,omitempty"`
	History       []cycle.Record      `json:"history,omitempty"`
}

// Snapshot assembles the current state. It is a best-effort read: per-user
// transitions are not blocked while it runs.
func (e *Engine) Snapshot() Snapshot {
	now := e.clock.Now()

	e.mu.Lock()
	start := e.cycleStart
	winner := e.winner
	history := make([]cycle.Record, len(e.history))
	copy(history, e.history)
	e.mu.Unlock()

	snap := Snapshot{
		Users:      make(map[string]UserView, len(e.cfg.Users)),
		Tiers:      e.cfg.Catalog.List(),
		CycleStart: start,
		LastWinner: winner,
		History:    history,
	}

	days := 7 - int(now.Sub(start).Hours()/24)
	if days < 0 {
		days = 0
	}
	snap.DaysRemaining = days

	for _, u := range e.cfg.Users {
		all := e.ledger.CompletedForUser(u)
		points := 0
		for i := range all {
			if all[i].CompletedAt != nil && !all[i].CompletedAt.Before(start) {
				points += scoring.PriceFinal(all, i, e.cfg.Catalog)
			}
		}

		e.mu.Lock()
		st := *e.stats[u]
		e.mu.Unlock()

		view := UserView{
			Points:        points + st.BonusPoints,
			SessionsToday: e.ledger.StartedOn(u, now),
			DailyLimit:    e.cfg.DailyLimit,
			Streak:        st.Streak,
			LongestStreak: st.LongestStreak,
			Momentum:      st.Momentum(),
			Achievements:  st.Achievements,
			Themes:        st.Themes,
		}
		if s, ok := e.ledger.ActiveSnapshot(u); ok {
			view.ActiveTask = s.Task
			view.ActiveTier = s.Tier
		}
		if rem, ok := e.sched.Remaining(u); ok {
			view.Remaining = rem
		}
		snap.Users[u] = view
	}
	return snap
}

// Points returns the user's current cycle points.
func (e *Engine) Points(user string) int {
	if !e.validUser(user) {
		return 0
	}
	return e.Snapshot().Users[user].Points
}

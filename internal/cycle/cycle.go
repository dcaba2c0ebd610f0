package cycle

import (
	"time"

	"chicfocus/internal/sessions"
)

// Length is the competition period after which a winner is declared.
const Length = 7 * 24 * time.Hour

// TieWinner is the declared result when neither tiebreak settles it.
const TieWinner = "Tie"

// Result is one user's aggregated cycle outcome.
type Result struct {
	Points           int `json:"points"`
	TopTierCount     int `json:"top_tier_count"`
	Completions      int `json:"completions"`
	LongestStreak    int `json:"longest_streak"`
	AchievementCount int `json:"achievement_count"`
}

// Record archives one finished cycle.
type Record struct {
	Start   time.Time         `json:"start"`
	End     time.Time         `json:"end"`
	Results map[string]Result `json:"results"`
	Winner  string            `json:"winner"`
}

// Due reports whether the cycle that began at start should roll over.
func Due(start, now time.Time) bool {
	return now.Sub(start) >= Length
}

// Winner picks between the two users: higher points, then higher top-tier
// count, then a tie.
func Winner(userA, userB string, a, b Result) string {
	switch {
	case a.Points > b.Points:
		return userA
	case b.Points > a.Points:
		return userB
	case a.TopTierCount > b.TopTierCount:
		return userA
	case b.TopTierCount > a.TopTierCount:
		return userB
	}
	return TieWinner
}

// DistinctDays counts the local calendar days on which any of the given
// completed sessions finished.
func DistinctDays(completed []sessions.Session) int {
	days := map[string]bool{}
	for _, s := range completed {
		if s.CompletedAt != nil {
			days[s.CompletedAt.Local().Format("2006-01-02")] = true
		}
	}
	return len(days)
}

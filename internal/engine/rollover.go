package engine

import (
	"log"

	"chicfocus/internal/achievements"
	"chicfocus/internal/cycle"
	"chicfocus/internal/events"
	"chicfocus/internal/scoring"
	"chicfocus/internal/sessions"
)

// CheckRollover ends the cycle when 7 days have elapsed. Called
// opportunistically; EndCycle is the manual trigger.
func (e *Engine) CheckRollover() {
	e.mu.Lock()
	due := cycle.Due(e.cycleStart, e.clock.Now())
	e.mu.Unlock()
	if due {
		e.EndCycle()
	}
}

// EndCycle closes the current competition period: scores both users,
// declares a winner, evaluates cycle achievements, archives the record,
// resets weekly counters, and voids open duels. Lifetime counters and the
// session ledger are untouched.
func (e *Engine) EndCycle() {
	unlock := e.lockAll()
	defer unlock()

	now := e.clock.Now()
	e.mu.Lock()
	start := e.cycleStart
	e.mu.Unlock()

	users := e.cfg.Users
	if len(users) != 2 {
		log.Printf("[Engine] EndCycle needs exactly two users, have %d\n", len(users))
		return
	}

	results := make(map[string]cycle.Result, 2)
	cycleSessions := make(map[string][]sessions.Session, 2)
	for _, u := range users {
		inCycle := e.ledger.CompletedSince(u, start)
		cycleSessions[u] = inCycle

		// Sessions are priced with their position in the user's full
		// completed history, then only those inside the cycle count.
		all := e.ledger.CompletedForUser(u)
		points := 0
		for i := range all {
			if all[i].CompletedAt != nil && !all[i].CompletedAt.Before(start) {
				points += scoring.PriceFinal(all, i, e.cfg.Catalog)
			}
		}

		e.mu.Lock()
		st := e.stats[u]
		results[u] = cycle.Result{
			Points:        points + st.BonusPoints,
			TopTierCount:  st.WeeklyTopTier,
			Completions:   st.WeeklyCompleted,
			LongestStreak: st.LongestStreak,
		}
		e.mu.Unlock()
	}

	winner := cycle.Winner(users[0], users[1], results[users[0]], results[users[1]])

	for _, u := range users {
		e.mu.Lock()
		snapshot := achievements.CycleStats{
			IsWinner:      u == winner,
			WeeklyTopTier: e.stats[u].WeeklyTopTier,
			Completions:   e.stats[u].WeeklyCompleted,
			DistinctDays:  cycle.DistinctDays(cycleSessions[u]),
		}
		e.mu.Unlock()
		e.grantAchievements(u, achievements.EvaluateCycle(snapshot))
	}

	// Achievement counts archived after the cycle's own grants.
	points := make(map[string]int, 2)
	for _, u := range users {
		e.mu.Lock()
		res := results[u]
		res.AchievementCount = len(e.stats[u].Achievements)
		results[u] = res
		e.mu.Unlock()
		points[u] = res.Points
	}

	record := cycle.Record{Start: start, End: now, Results: results, Winner: winner}

	e.mu.Lock()
	e.history = append(e.history, record)
	e.cycleStart = now
	e.winner = winner
	for _, u := range users {
		e.stats[u].ResetWeekly()
	}
	e.mu.Unlock()

	// Open duels are void at the boundary, not forfeited.
	e.duels.Clear()

	if e.db != nil {
		if err := e.db.RecordCycle(record); err != nil {
			log.Printf("[DB] RecordCycle error: %v\n", err)
		}
	}

	e.bus.Publish(events.Event{
		Type:   events.CycleComplete,
		Winner: winner,
		Points: points,
	})
	e.persist()
}

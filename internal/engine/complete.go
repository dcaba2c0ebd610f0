package engine

import (
	"fmt"
	"log"

	"chicfocus/internal/achievements"
	"chicfocus/internal/cycle"
	"chicfocus/internal/effects"
	"chicfocus/internal/events"
	"chicfocus/internal/scoring"
	"chicfocus/internal/sessions"
)

// onTimerExpired is the scheduler's completion signal. A break expiry just
// returns the user to idle; a session expiry runs the whole completion
// pipeline: streak, scoring, mystery egg, duel, achievements, break.
func (e *Engine) onTimerExpired(user string, isBreak bool) {
	if !e.validUser(user) {
		log.Printf("[Engine] Expiry for unknown user %q ignored\n", user)
		return
	}

	if isBreak {
		e.bus.Publish(events.Event{Type: events.SessionDone, User: user})
		return
	}

	e.completeSession(user)

	// Rollover happens outside the user lock: it needs both users.
	e.mu.Lock()
	due := cycle.Due(e.cycleStart, e.clock.Now())
	e.mu.Unlock()
	if due {
		e.EndCycle()
	}
}

func (e *Engine) completeSession(user string) {
	mu := e.userLock(user)
	mu.Lock()
	defer mu.Unlock()

	s, ok := e.ledger.ActiveSnapshot(user)
	if !ok {
		// Reset won the race; the countdown's session is already gone.
		log.Printf("[Engine] Expiry for %s with no active session, ignoring\n", user)
		return
	}

	now := e.clock.Now()
	final, _ := e.ledger.Mutate(user, s.ID, func(s *sessions.Session) {
		if n := len(s.Pauses); n > 0 && s.Pauses[n-1].End == nil {
			s.Pauses[n-1].End = &now
		}
		s.Completed = true
		s.CompletedAt = &now
	})

	topTier := final.Tier == e.cfg.Catalog.Top()
	e.mu.Lock()
	e.stats[user].RecordCompletion(topTier)
	e.mu.Unlock()

	completed := e.ledger.CompletedForUser(user)
	points := scoring.PriceFinal(completed, len(completed)-1, e.cfg.Catalog)

	e.bus.Publish(events.Event{Type: events.SessionCompleted, User: user})

	e.checkMysteryEgg(user, now.Local().Format("2006-01-02"))
	if final.DuelID != "" {
		if out := e.duels.RecordCompletion(final.DuelID, user, now); out != nil {
			e.publishDuelOutcome(out)
		}
	}
	e.evaluateCompletionAchievements(user, completed)

	if e.takePendingEffect(user, effects.SkipBreak) == effects.SkipBreak {
		e.publishEffectUsed(user, effects.SkipBreak, "Break skipped")
		e.bus.Publish(events.Event{Type: events.BreakSkipped, User: user})
	} else {
		e.sched.Start(user, e.cfg.BreakSecs, true)
		e.bus.Publish(events.Event{Type: events.BreakStarted, User: user})
	}

	e.archiveSession(final, points)
	e.persist()
}

// checkMysteryEgg rolls the once-daily random effect on the user's first
// completion of the given local day.
func (e *Engine) checkMysteryEgg(user, day string) {
	e.mu.Lock()
	if e.stats[user].LastEggDay == day {
		e.mu.Unlock()
		return
	}
	e.stats[user].LastEggDay = day
	e.mu.Unlock()

	eff := e.dispenser.Roll()
	e.bus.Publish(events.Event{
		Type:    events.MysteryEggActivated,
		User:    user,
		Effect:  string(eff.Kind),
		Message: eff.Description,
	})

	if !eff.Immediate {
		e.mu.Lock()
		// Overwrites any unconsumed pending effect; retriggering does not
		// queue.
		e.stats[user].PendingEffect = string(eff.Kind)
		e.mu.Unlock()
		return
	}

	partner := e.partnerOf(user)
	switch eff.Kind {
	case effects.BonusPoint:
		e.mu.Lock()
		e.stats[user].BonusPoints++
		e.mu.Unlock()
		e.publishEffectUsed(user, effects.BonusPoint, "+1 bonus point")
	case effects.MirrorMode:
		if last := e.ledger.LastCompleted(partner); last != nil {
			e.publishEffectUsed(user, effects.MirrorMode,
				fmt.Sprintf("%s last completed %q at tier %d", partner, last.Task, last.Tier))
		} else {
			e.mu.Lock()
			e.stats[user].BonusPoints++
			e.mu.Unlock()
			e.publishEffectUsed(user, effects.MirrorMode, "Partner has nothing to mirror, +1 bonus point")
		}
	case effects.ThemeSwap:
		e.mu.Lock()
		e.stats[user].UnlockTheme(partner)
		e.mu.Unlock()
		e.publishEffectUsed(user, effects.ThemeSwap, fmt.Sprintf("Unlocked %s's theme", partner))
	}
}

func (e *Engine) evaluateCompletionAchievements(user string, completed []sessions.Session) {
	lastThreeTop := len(completed) >= 3
	for i := len(completed) - 3; lastThreeTop && i < len(completed); i++ {
		if i >= 0 && completed[i].Tier != e.cfg.Catalog.Top() {
			lastThreeTop = false
		}
	}

	e.mu.Lock()
	snapshot := achievements.CompletionStats{
		WeeklyCompleted:  e.stats[user].WeeklyCompleted,
		LifetimeTopTier:  e.stats[user].LifetimeTopTier,
		LastThreeTopTier: lastThreeTop,
	}
	e.mu.Unlock()

	e.grantAchievements(user, achievements.EvaluateCompletion(snapshot))
}

// grantAchievements filters earned achievements against the user's set,
// unlocking themes and archiving as it goes.
func (e *Engine) grantAchievements(user string, earned []achievements.Achievement) {
	var granted []string
	e.mu.Lock()
	for _, a := range earned {
		if e.stats[user].Grant(string(a.ID)) {
			granted = append(granted, string(a.ID))
			if a.Theme != "" {
				e.stats[user].UnlockTheme(a.Theme)
			}
		}
	}
	e.mu.Unlock()

	if len(granted) == 0 {
		return
	}
	if e.db != nil {
		for _, id := range granted {
			if err := e.db.AwardAchievement(user, id); err != nil {
				log.Printf("[DB] AwardAchievement error: %v\n", err)
			}
		}
	}
	e.bus.Publish(events.Event{
		Type:         events.AchievementsEarned,
		User:         user,
		Achievements: granted,
	})
}

package engine

import (
	"fmt"

	"github.com/google/uuid"

	"chicfocus/internal/duels"
	"chicfocus/internal/effects"
	"chicfocus/internal/events"
	"chicfocus/internal/sessions"
)

// StartSession begins a new focus session and returns its duration in
// seconds. Pending tier-upgrade, double-points, and dual-challenge effects
// are consumed here.
func (e *Engine) StartSession(user, task string, tierID int) (int, error) {
	if !e.validUser(user) {
		return 0, ErrInvalidUser
	}
	if task == "" {
		return 0, ErrMissingField
	}
	if _, ok := e.cfg.Catalog.Get(tierID); !ok {
		return 0, ErrInvalidTier
	}

	mu := e.userLock(user)
	mu.Lock()
	defer mu.Unlock()

	if e.ledger.Active(user) != nil {
		return 0, ErrSessionActive
	}

	now := e.clock.Now()
	if e.ledger.StartedOn(user, now) >= e.cfg.DailyLimit {
		return 0, ErrDailyLimit
	}

	// A paused break left behind by the last session is abandoned here;
	// otherwise the stale entry would block pausing the new session.
	e.mu.Lock()
	delete(e.paused, user)
	e.mu.Unlock()

	waiveDuelWindow := false
	switch e.takePendingEffect(user, effects.TierUpgrade, effects.DualChallenge) {
	case effects.TierUpgrade:
		if tierID < e.cfg.Catalog.Top() {
			tierID++
		}
		e.publishEffectUsed(user, effects.TierUpgrade, fmt.Sprintf("Session upgraded to tier %d", tierID))
	case effects.DualChallenge:
		waiveDuelWindow = true
		e.publishEffectUsed(user, effects.DualChallenge, "Duel pairing window waived for this session")
	}

	s := &sessions.Session{
		ID:        uuid.New().String(),
		User:      user,
		Task:      task,
		Tier:      tierID,
		StartedAt: now,
	}
	if e.takePendingEffect(user, effects.DoublePoints) == effects.DoublePoints {
		s.DoublePoints = true
		e.publishEffectUsed(user, effects.DoublePoints, "This session scores double")
	}
	e.ledger.Append(s)

	// Duel matching reads the partner's session as a point-in-time
	// snapshot; duel IDs land on both records under the ledger lock.
	partner := e.partnerOf(user)
	var partnerActive *sessions.Session
	if ps, ok := e.ledger.ActiveSnapshot(partner); ok {
		partnerActive = &ps
	}
	if d := e.duels.Match(s, partnerActive, now, waiveDuelWindow); d != nil {
		e.ledger.Mutate(user, s.ID, func(s *sessions.Session) { s.DuelID = d.ID })
		e.ledger.Mutate(partner, partnerActive.ID, func(s *sessions.Session) { s.DuelID = d.ID })
		e.bus.Publish(events.Event{
			Type:    events.DuelStarted,
			User:    user,
			Partner: partner,
			Tier:    d.Tier,
		})
	}

	tier, _ := e.cfg.Catalog.Get(tierID)
	duration := tier.Minutes * 60
	e.sched.Start(user, duration, false)

	e.bus.Publish(events.Event{
		Type: events.SessionStarted,
		User: user,
		Task: task,
		Tier: tierID,
	})

	e.persist()
	return duration, nil
}

// PauseSession stops the user's countdown, recording a pause interval on the
// active session. Pausing a running break stops just the clock.
func (e *Engine) PauseSession(user string) error {
	if !e.validUser(user) {
		return ErrInvalidUser
	}

	mu := e.userLock(user)
	mu.Lock()
	defer mu.Unlock()

	e.mu.Lock()
	_, alreadyPaused := e.paused[user]
	e.mu.Unlock()
	if alreadyPaused {
		return ErrAlreadyPaused
	}

	remaining, ok := e.sched.Stop(user)
	if !ok {
		return ErrNoActiveSession
	}

	isBreak := true
	if s, ok := e.ledger.ActiveSnapshot(user); ok {
		isBreak = false
		e.ledger.Mutate(user, s.ID, func(s *sessions.Session) {
			s.Pauses = append(s.Pauses, sessions.PauseInterval{Start: e.clock.Now()})
		})
	}

	e.mu.Lock()
	e.paused[user] = pausedState{remaining: remaining, isBreak: isBreak}
	e.mu.Unlock()

	e.bus.Publish(events.Event{Type: events.TimerPaused, User: user, IsBreak: isBreak})
	e.persist()
	return nil
}

// ResumeSession restarts the countdown for the time that was left when the
// user paused.
func (e *Engine) ResumeSession(user string) error {
	if !e.validUser(user) {
		return ErrInvalidUser
	}

	mu := e.userLock(user)
	mu.Lock()
	defer mu.Unlock()

	e.mu.Lock()
	st, ok := e.paused[user]
	if ok {
		delete(e.paused, user)
	}
	e.mu.Unlock()
	if !ok {
		return ErrNotPaused
	}

	if s, ok := e.ledger.ActiveSnapshot(user); ok {
		e.ledger.Mutate(user, s.ID, func(s *sessions.Session) {
			if n := len(s.Pauses); n > 0 && s.Pauses[n-1].End == nil {
				end := e.clock.Now()
				s.Pauses[n-1].End = &end
			}
		})
	}

	e.sched.Start(user, st.remaining, st.isBreak)
	e.bus.Publish(events.Event{Type: events.TimerResumed, User: user, IsBreak: st.isBreak})
	e.persist()
	return nil
}

// ResetSession aborts the user's session. The streak zeroes unless a pending
// combo-extender soaks the reset; an open duel is forfeited to the partner.
func (e *Engine) ResetSession(user string) error {
	if !e.validUser(user) {
		return ErrInvalidUser
	}

	mu := e.userLock(user)
	mu.Lock()
	defer mu.Unlock()

	s, ok := e.ledger.ActiveSnapshot(user)
	if !ok {
		return ErrNoActiveSession
	}

	now := e.clock.Now()
	e.sched.Stop(user)
	e.mu.Lock()
	delete(e.paused, user)
	e.mu.Unlock()

	final, _ := e.ledger.Mutate(user, s.ID, func(s *sessions.Session) {
		if n := len(s.Pauses); n > 0 && s.Pauses[n-1].End == nil {
			s.Pauses[n-1].End = &now
		}
		s.Aborted = true
		s.AbortedAt = &now
	})

	if e.takePendingEffect(user, effects.ComboExtender) == effects.ComboExtender {
		e.publishEffectUsed(user, effects.ComboExtender, "Streak preserved through the reset")
	} else {
		e.mu.Lock()
		e.stats[user].ResetStreak()
		e.mu.Unlock()
	}

	if final.DuelID != "" {
		if out := e.duels.Forfeit(final.DuelID, user); out != nil {
			e.publishDuelOutcome(out)
		}
	}

	e.bus.Publish(events.Event{Type: events.TimerReset, User: user})
	e.archiveSession(final, 0)
	e.persist()
	return nil
}

// takePendingEffect consumes and returns the user's pending effect when it
// is one of the wanted kinds; otherwise the pending effect is left alone.
func (e *Engine) takePendingEffect(user string, wanted ...effects.Kind) effects.Kind {
	e.mu.Lock()
	defer e.mu.Unlock()
	pending := effects.Kind(e.stats[user].PendingEffect)
	for _, k := range wanted {
		if pending == k {
			e.stats[user].PendingEffect = ""
			return k
		}
	}
	return ""
}

func (e *Engine) publishEffectUsed(user string, kind effects.Kind, msg string) {
	e.bus.Publish(events.Event{
		Type:    events.EffectUsed,
		User:    user,
		Effect:  string(kind),
		Message: msg,
	})
}

func (e *Engine) publishDuelOutcome(out *duels.Outcome) {
	t := events.DuelComplete
	if out.Forfeit {
		t = events.DuelForfeit
	}
	e.bus.Publish(events.Event{
		Type:   t,
		Winner: out.Winner,
		Loser:  out.Loser,
		Tier:   out.Tier,
	})
}

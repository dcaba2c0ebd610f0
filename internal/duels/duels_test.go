package duels

import (
	"testing"
	"time"

	"chicfocus/internal/sessions"
)

func activeSession(user string, tier int, started time.Time) *sessions.Session {
	return &sessions.Session{
		ID:        user + "-" + started.String(),
		User:      user,
		Task:      "task",
		Tier:      tier,
		StartedAt: started,
	}
}

func TestMatch_SameTierWithinWindow(t *testing.T) {
	s := NewStore()
	now := time.Now()
	partner := activeSession("4keni", 2, now.Add(-60*time.Second))
	starting := activeSession("luu", 2, now)

	d := s.Match(starting, partner, now, false)
	if d == nil {
		t.Fatal("Match() should create a duel")
	}
	if d.Users != [2]string{"luu", "4keni"} || d.Tier != 2 {
		t.Errorf("duel = %+v, want luu vs 4keni at tier 2", d)
	}
	if s.OpenCount() != 1 {
		t.Errorf("OpenCount() = %d, want 1", s.OpenCount())
	}
}

func TestMatch_RejectsOutsideWindow(t *testing.T) {
	s := NewStore()
	now := time.Now()
	partner := activeSession("4keni", 2, now.Add(-121*time.Second))
	starting := activeSession("luu", 2, now)

	if s.Match(starting, partner, now, false) != nil {
		t.Error("Match() should not pair starts more than 120s apart")
	}
}

func TestMatch_WaivedWindow(t *testing.T) {
	s := NewStore()
	now := time.Now()
	partner := activeSession("4keni", 2, now.Add(-30*time.Minute))
	starting := activeSession("luu", 2, now)

	if s.Match(starting, partner, now, true) == nil {
		t.Error("Match() with waived window should pair any active same-tier session")
	}
}

func TestMatch_RejectsDifferentTier(t *testing.T) {
	s := NewStore()
	now := time.Now()
	partner := activeSession("4keni", 1, now)
	starting := activeSession("luu", 2, now)

	if s.Match(starting, partner, now, false) != nil {
		t.Error("Match() should not pair different tiers")
	}
}

func TestMatch_RejectsTerminalOrMissingPartner(t *testing.T) {
	s := NewStore()
	now := time.Now()
	starting := activeSession("luu", 2, now)

	if s.Match(starting, nil, now, false) != nil {
		t.Error("Match() with no partner session should be nil")
	}

	done := activeSession("4keni", 2, now)
	done.Completed = true
	if s.Match(starting, done, now, false) != nil {
		t.Error("Match() should ignore a completed partner session")
	}
}

func TestMatch_RejectsAlreadyDueling(t *testing.T) {
	s := NewStore()
	now := time.Now()
	partner := activeSession("4keni", 2, now)
	partner.DuelID = "existing"
	starting := activeSession("luu", 2, now)

	if s.Match(starting, partner, now, false) != nil {
		t.Error("Match() should not pair a session already in a duel")
	}
}

func TestRecordCompletion_EarlierStampWins(t *testing.T) {
	s := NewStore()
	now := time.Now()
	partner := activeSession("4keni", 2, now)
	starting := activeSession("luu", 2, now)
	d := s.Match(starting, partner, now, false)

	if out := s.RecordCompletion(d.ID, "4keni", now.Add(30*time.Minute)); out != nil {
		t.Fatal("duel should still be pending after one completion")
	}

	out := s.RecordCompletion(d.ID, "luu", now.Add(31*time.Minute))
	if out == nil {
		t.Fatal("duel should resolve after both completions")
	}
	if out.Winner != "4keni" || out.Loser != "luu" {
		t.Errorf("outcome = %+v, want 4keni over luu", out)
	}
	if out.Forfeit {
		t.Error("natural resolution should not be a forfeit")
	}
	if s.OpenCount() != 0 {
		t.Error("resolved duel should be removed")
	}
}

func TestRecordCompletion_EqualStampsFirstRecordedWins(t *testing.T) {
	s := NewStore()
	now := time.Now()
	partner := activeSession("4keni", 2, now)
	starting := activeSession("luu", 2, now)
	d := s.Match(starting, partner, now, false)

	at := now.Add(30 * time.Minute)
	if s.RecordCompletion(d.ID, "4keni", at) != nil {
		t.Fatal("duel should still be pending after one completion")
	}
	out := s.RecordCompletion(d.ID, "luu", at)
	if out == nil {
		t.Fatal("duel should resolve after both completions")
	}
	if out.Winner != "4keni" || out.Loser != "luu" {
		t.Errorf("outcome = %+v, want the first recorded completion to win", out)
	}
}

func TestForfeit(t *testing.T) {
	s := NewStore()
	now := time.Now()
	partner := activeSession("4keni", 3, now)
	starting := activeSession("luu", 3, now)
	d := s.Match(starting, partner, now, false)

	out := s.Forfeit(d.ID, "luu")
	if out == nil {
		t.Fatal("Forfeit() should settle the duel")
	}
	if out.Winner != "4keni" || out.Loser != "luu" || !out.Forfeit {
		t.Errorf("outcome = %+v, want forfeit win for 4keni", out)
	}
	if s.OpenCount() != 0 {
		t.Error("forfeited duel should be removed")
	}

	if s.Forfeit(d.ID, "luu") != nil {
		t.Error("second Forfeit() on the same duel should be nil")
	}
}

func TestClear_VoidsOpenDuels(t *testing.T) {
	s := NewStore()
	now := time.Now()
	d := s.Match(activeSession("luu", 2, now), activeSession("4keni", 2, now), now, false)

	s.Clear()
	if s.OpenCount() != 0 {
		t.Error("Clear() should void open duels")
	}
	if s.RecordCompletion(d.ID, "luu", now) != nil {
		t.Error("voided duel should not resolve")
	}
}

package duels

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"chicfocus/internal/sessions"
)

// PairingWindow is how close two same-tier starts must be to race.
const PairingWindow = 120 * time.Second

// Duel races two same-tier sessions started within the pairing window.
// The record lives only while the duel is open; resolution deletes it.
type Duel struct {
	ID        string
	Users     [2]string
	Tier      int
	StartedAt time.Time
	Completed map[string]time.Time

	// firstDone is the participant whose completion was recorded first,
	// the tie-breaker when both stamps carry the same instant.
	firstDone string
}

// Outcome is the settled result of a duel.
type Outcome struct {
	Winner  string
	Loser   string
	Tier    int
	Forfeit bool
}

type Store struct {
	mu     sync.Mutex
	duels  map[string]*Duel
	window time.Duration
}

func NewStore() *Store {
	return NewStoreWithWindow(PairingWindow)
}

func NewStoreWithWindow(window time.Duration) *Store {
	return &Store{
		duels:  make(map[string]*Duel),
		window: window,
	}
}

// Match pairs a just-started session against the partner's active one. The
// partner session must share the tier and have started within the pairing
// window, unless waiveWindow is set (dual-challenge effect). Returns nil
// when no duel forms; the caller annotates both sessions with the duel ID.
func (s *Store) Match(starting, partner *sessions.Session, now time.Time, waiveWindow bool) *Duel {
	if partner == nil || partner.Terminal() {
		return nil
	}
	if partner.Tier != starting.Tier {
		return nil
	}
	if partner.DuelID != "" {
		return nil
	}
	if !waiveWindow && now.Sub(partner.StartedAt) > s.window {
		return nil
	}

	d := &Duel{
		ID:        uuid.New().String(),
		Users:     [2]string{starting.User, partner.User},
		Tier:      starting.Tier,
		StartedAt: now,
		Completed: make(map[string]time.Time),
	}

	s.mu.Lock()
	s.duels[d.ID] = d
	s.mu.Unlock()
	return d
}

// Get returns the open duel with the given ID, or nil.
func (s *Store) Get(id string) *Duel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duels[id]
}

// RecordCompletion stamps one participant's completion time. When both
// participants have a stamp the duel resolves: the earlier stamp wins, an
// equal pair goes to whichever completion was recorded first, and the record
// is removed. Returns the outcome, or nil while still pending.
func (s *Store) RecordCompletion(duelID, user string, at time.Time) *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.duels[duelID]
	if !ok {
		return nil
	}
	if len(d.Completed) == 0 {
		d.firstDone = user
	}
	d.Completed[user] = at
	if len(d.Completed) < 2 {
		return nil
	}

	a, b := d.Users[0], d.Users[1]
	winner, loser := a, b
	switch {
	case d.Completed[b].Before(d.Completed[a]):
		winner, loser = b, a
	case d.Completed[a].Equal(d.Completed[b]) && d.firstDone == b:
		winner, loser = b, a
	}
	delete(s.duels, duelID)
	return &Outcome{Winner: winner, Loser: loser, Tier: d.Tier}
}

// Forfeit settles an open duel against the aborting participant and removes
// the record. Returns nil if the duel is already gone.
func (s *Store) Forfeit(duelID, aborting string) *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.duels[duelID]
	if !ok {
		return nil
	}
	winner := d.Users[0]
	if winner == aborting {
		winner = d.Users[1]
	}
	delete(s.duels, duelID)
	return &Outcome{Winner: winner, Loser: aborting, Tier: d.Tier, Forfeit: true}
}

// Clear voids all open duels without declaring winners (cycle rollover).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duels = make(map[string]*Duel)
}

// OpenCount reports how many duels are currently unresolved.
func (s *Store) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.duels)
}

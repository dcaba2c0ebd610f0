package sessions

import (
	"sync"
	"time"
)

// Ledger is the append-only per-user session record. It is the source of
// truth for historical and point data; a user has at most one non-terminal
// session at any instant.
type Ledger struct {
	mu       sync.Mutex
	sessions map[string][]*Session
}

func NewLedger() *Ledger {
	return &Ledger{
		sessions: make(map[string][]*Session),
	}
}

func (l *Ledger) Append(s *Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions[s.User] = append(l.sessions[s.User], s)
}

// Active returns the user's current non-terminal session, or nil.
func (l *Ledger) Active(user string) *Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	list := l.sessions[user]
	for i := len(list) - 1; i >= 0; i-- {
		if !list[i].Terminal() {
			return list[i]
		}
	}
	return nil
}

// ListUser returns the user's full session history in chronological order.
func (l *Ledger) ListUser(user string) []*Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	list := l.sessions[user]
	out := make([]*Session, len(list))
	copy(out, list)
	return out
}

// SnapshotUser returns deep copies of the user's history, safe to marshal
// while other users keep mutating theirs.
func (l *Ledger) SnapshotUser(user string) []*Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	list := l.sessions[user]
	out := make([]*Session, len(list))
	for i, s := range list {
		c := s.Clone()
		out[i] = &c
	}
	return out
}

// ActiveSnapshot returns a copy of the user's current non-terminal session.
func (l *Ledger) ActiveSnapshot(user string) (Session, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	list := l.sessions[user]
	for i := len(list) - 1; i >= 0; i-- {
		if !list[i].Terminal() {
			return list[i].Clone(), true
		}
	}
	return Session{}, false
}

// Mutate applies fn to the user's session with the given ID under the ledger
// lock and returns a copy of the updated record. Every write to a session
// after Append goes through here.
func (l *Ledger) Mutate(user, id string, fn func(*Session)) (Session, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.sessions[user] {
		if s.ID == id {
			fn(s)
			return s.Clone(), true
		}
	}
	return Session{}, false
}

// CompletedForUser returns the user's completed sessions in chronological
// order. Each caller gets a snapshot copy of the values so scoring can work
// on a stable window.
func (l *Ledger) CompletedForUser(user string) []Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Session
	for _, s := range l.sessions[user] {
		if s.Completed {
			out = append(out, *s)
		}
	}
	return out
}

// StartedOn counts sessions the user started on the given local day.
func (l *Ledger) StartedOn(user string, day time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	y, m, d := day.Date()
	count := 0
	for _, s := range l.sessions[user] {
		sy, sm, sd := s.StartedAt.Local().Date()
		if sy == y && sm == m && sd == d {
			count++
		}
	}
	return count
}

// CompletedSince returns the user's sessions completed at or after t,
// chronological.
func (l *Ledger) CompletedSince(user string, t time.Time) []Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Session
	for _, s := range l.sessions[user] {
		if s.Completed && s.CompletedAt != nil && !s.CompletedAt.Before(t) {
			out = append(out, *s)
		}
	}
	return out
}

// LastCompleted returns the user's most recent completed session, or nil.
func (l *Ledger) LastCompleted(user string) *Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	list := l.sessions[user]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Completed {
			copy := *list[i]
			return &copy
		}
	}
	return nil
}

// Replace swaps in a previously persisted history for the user.
func (l *Ledger) Replace(user string, list []*Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions[user] = list
}

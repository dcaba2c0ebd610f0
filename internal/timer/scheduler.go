package timer

import (
	"sync"
	"time"

	"chicfocus/internal/events"
)

// ExpiryFunc is invoked when a countdown reaches zero naturally.
type ExpiryFunc func(user string, isBreak bool)

// Scheduler drives one logical countdown per user. Starting a countdown for
// a user is last-writer-wins: any prior countdown for that user is cancelled
// outright, and a cancelled countdown never fires ticks or completion again.
type Scheduler struct {
	mu         sync.Mutex
	clock      Clock
	bus        *events.Bus
	onExpired  ExpiryFunc
	countdowns map[string]*countdown
}

type countdown struct {
	user      string
	remaining int
	isBreak   bool
	stop      chan struct{}
	stopped   bool
}

func NewScheduler(clock Clock, bus *events.Bus) *Scheduler {
	return &Scheduler{
		clock:      clock,
		bus:        bus,
		countdowns: make(map[string]*countdown),
	}
}

// SetExpiryFunc wires the completion signal. Must be called before Start.
func (s *Scheduler) SetExpiryFunc(fn ExpiryFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpired = fn
}

// Start begins a countdown of the given length, replacing any countdown the
// user already has.
func (s *Scheduler) Start(user string, seconds int, isBreak bool) {
	s.mu.Lock()
	if prev, ok := s.countdowns[user]; ok {
		prev.stopped = true
		close(prev.stop)
	}
	cd := &countdown{
		user:      user,
		remaining: seconds,
		isBreak:   isBreak,
		stop:      make(chan struct{}),
	}
	s.countdowns[user] = cd
	s.mu.Unlock()

	s.bus.PublishTick(events.Event{
		Type:      events.TimerTick,
		User:      user,
		Remaining: seconds,
		IsBreak:   isBreak,
	})

	// The ticker is created before the goroutine starts so a fake clock
	// advanced immediately after Start still reaches this countdown.
	ticker := s.clock.NewTicker(1 * time.Second)
	go s.run(cd, ticker)
}

func (s *Scheduler) run(cd *countdown, ticker Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			s.mu.Lock()
			if cd.stopped {
				s.mu.Unlock()
				return
			}
			cd.remaining--
			remaining := cd.remaining
			expired := remaining <= 0
			if expired {
				// Retire the countdown before releasing the lock so a
				// concurrent Start cannot race the completion signal.
				cd.stopped = true
				if s.countdowns[cd.user] == cd {
					delete(s.countdowns, cd.user)
				}
			}
			fn := s.onExpired
			s.mu.Unlock()

			s.bus.PublishTick(events.Event{
				Type:      events.TimerTick,
				User:      cd.user,
				Remaining: remaining,
				IsBreak:   cd.isBreak,
			})

			if expired {
				if fn != nil {
					fn(cd.user, cd.isBreak)
				}
				return
			}

		case <-cd.stop:
			return
		}
	}
}

// Stop cancels the user's countdown and returns the seconds that were left.
// The second return is false when no countdown was running.
func (s *Scheduler) Stop(user string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cd, ok := s.countdowns[user]
	if !ok {
		return 0, false
	}
	cd.stopped = true
	close(cd.stop)
	delete(s.countdowns, user)
	return cd.remaining, true
}

// Remaining reports the seconds left on the user's countdown, if any.
func (s *Scheduler) Remaining(user string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cd, ok := s.countdowns[user]
	if !ok {
		return 0, false
	}
	return cd.remaining, true
}

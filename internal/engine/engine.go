package engine

import (
	"errors"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"chicfocus/internal/cycle"
	"chicfocus/internal/db"
	"chicfocus/internal/duels"
	"chicfocus/internal/effects"
	"chicfocus/internal/events"
	"chicfocus/internal/sessions"
	"chicfocus/internal/stats"
	"chicfocus/internal/store"
	"chicfocus/internal/tiers"
	"chicfocus/internal/timer"
)

// Error strings double as the wire error codes.
var (
	ErrInvalidUser     = errors.New("invalid_user")
	ErrInvalidTier     = errors.New("invalid_tier")
	ErrMissingField    = errors.New("missing_field")
	ErrDailyLimit      = errors.New("daily_limit_reached")
	ErrSessionActive   = errors.New("session_active")
	ErrNoActiveSession = errors.New("no_active_session")
	ErrAlreadyPaused   = errors.New("already_paused")
	ErrNotPaused       = errors.New("not_paused")
)

type Config struct {
	Users      []string // exactly two participants
	Catalog    tiers.Catalog
	BreakSecs  int
	DailyLimit int
	DuelWindow time.Duration
}

func DefaultConfig(users []string) Config {
	return Config{
		Users:      users,
		Catalog:    tiers.DefaultCatalog(),
		BreakSecs:  300,
		DailyLimit: 5,
		DuelWindow: duels.PairingWindow,
	}
}

type pausedState struct {
	remaining int
	isBreak   bool
}

// Engine owns all focus-session state: the ledger, per-user stats, open
// duels, the current cycle, and the countdown scheduler. Transitions for one
// user serialize on that user's mutex; the engine mutex guards the shared
// maps for short reads and writes. Ticks bypass both.
type Engine struct {
	cfg       Config
	clock     timer.Clock
	sched     *timer.Scheduler
	bus       *events.Bus
	ledger    *sessions.Ledger
	duels     *duels.Store
	dispenser *effects.Dispenser
	store     *store.Store // nil means no persistence
	db        *db.DB       // nil means no archive database

	// Archive receives terminal sessions for batched database writes.
	// May be nil.
	Archive chan<- db.SessionRecord

	mu         sync.Mutex
	userMu     map[string]*sync.Mutex
	stats      map[string]*stats.UserStats
	paused     map[string]pausedState
	cycleStart time.Time
	winner     string
	history    []cycle.Record
}

// New assembles an engine, loading any persisted document. st and database
// may be nil (tests, archive-less deployments).
func New(cfg Config, clock timer.Clock, bus *events.Bus, st *store.Store, database *db.DB, src rand.Source) (*Engine, error) {
	e := &Engine{
		cfg:       cfg,
		clock:     clock,
		sched:     timer.NewScheduler(clock, bus),
		bus:       bus,
		ledger:    sessions.NewLedger(),
		duels:     duels.NewStoreWithWindow(cfg.DuelWindow),
		dispenser: effects.NewDispenser(src),
		store:     st,
		db:        database,
		userMu:    make(map[string]*sync.Mutex, len(cfg.Users)),
		stats:     make(map[string]*stats.UserStats, len(cfg.Users)),
		paused:    make(map[string]pausedState),
	}
	for _, u := range cfg.Users {
		e.userMu[u] = &sync.Mutex{}
		e.stats[u] = &stats.UserStats{}
	}
	e.cycleStart = clock.Now()

	if st != nil {
		doc, err := st.Load(cfg.Users, clock.Now())
		if err != nil {
			return nil, err
		}
		e.cycleStart = doc.CycleStart
		e.winner = doc.Winner
		e.history = doc.History
		for _, u := range cfg.Users {
			rec := doc.Users[u]
			e.ledger.Replace(u, rec.Sessions)
			statsCopy := rec.Stats
			e.stats[u] = &statsCopy
		}
	}

	e.sched.SetExpiryFunc(e.onTimerExpired)
	return e, nil
}

func (e *Engine) validUser(user string) bool {
	_, ok := e.userMu[user]
	return ok
}

// partnerOf returns the other participant.
func (e *Engine) partnerOf(user string) string {
	for _, u := range e.cfg.Users {
		if u != user {
			return u
		}
	}
	return ""
}

func (e *Engine) userLock(user string) *sync.Mutex {
	return e.userMu[user]
}

// lockAll takes every user lock in a fixed order (cycle rollover).
func (e *Engine) lockAll() func() {
	names := make([]string, 0, len(e.userMu))
	for u := range e.userMu {
		names = append(names, u)
	}
	sort.Strings(names)
	for _, u := range names {
		e.userMu[u].Lock()
	}
	return func() {
		for i := len(names) - 1; i >= 0; i-- {
			e.userMu[names[i]].Unlock()
		}
	}
}

// persist rewrites the whole document. Failures are logged, never fatal:
// in-memory state stays authoritative for the running process.
func (e *Engine) persist() {
	if e.store == nil {
		return
	}
	e.mu.Lock()
	doc := &store.Document{
		Users:      make(map[string]*store.UserRecord, len(e.cfg.Users)),
		CycleStart: e.cycleStart,
		Winner:     e.winner,
		History:    e.history,
	}
	for _, u := range e.cfg.Users {
		statsCopy := *e.stats[u]
		doc.Users[u] = &store.UserRecord{
			Sessions: e.ledger.SnapshotUser(u),
			Stats:    statsCopy,
		}
	}
	e.mu.Unlock()

	if err := e.store.Save(doc); err != nil {
		log.Printf("[Engine] Persist error: %v\n", err)
	}
}

// archiveSession hands a terminal session to the batch writer, dropping the
// record if the buffer is full.
func (e *Engine) archiveSession(s sessions.Session, points int) {
	if e.Archive == nil {
		return
	}
	rec := db.SessionRecord{
		ID:          s.ID,
		User:        s.User,
		Task:        s.Task,
		Tier:        s.Tier,
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
		AbortedAt:   s.AbortedAt,
		PausedMs:    s.PausedTotal().Milliseconds(),
		Points:      points,
	}
	if s.DuelID != "" {
		duelID := s.DuelID
		rec.DuelID = &duelID
	}
	select {
	case e.Archive <- rec:
	default:
		log.Println("[Engine] Archive buffer full, dropping session record")
	}
}

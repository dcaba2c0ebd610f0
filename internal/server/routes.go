package server

import (
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"chicfocus/internal/broadcast"
	"chicfocus/internal/config"
	"chicfocus/internal/db"
	"chicfocus/internal/duels"
	"chicfocus/internal/engine"
	"chicfocus/internal/events"
	"chicfocus/internal/store"
	"chicfocus/internal/timer"
	"chicfocus/internal/wshub"
)

// Handler builds the route table. Split out so tests can mount the same mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /session/start", s.handleStartSession)
	mux.HandleFunc("POST /session/pause", s.handlePauseSession)
	mux.HandleFunc("POST /session/resume", s.handleResumeSession)
	mux.HandleFunc("POST /session/reset", s.handleResetSession)
	mux.HandleFunc("POST /cycle/end", s.handleEndCycle)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /achievements/{user}", s.handleUserAchievements)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func Run() error {
	appCfg := config.Load()

	if dir := filepath.Dir(appCfg.DataFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	st := store.New(appCfg.DataFile)

	engCfg := engine.DefaultConfig(appCfg.Users)
	engCfg.BreakSecs = appCfg.BreakSecs
	engCfg.DailyLimit = appCfg.DailyLimit
	if appCfg.DuelWindowMS > 0 {
		engCfg.DuelWindow = time.Duration(appCfg.DuelWindowMS) * time.Millisecond
	} else {
		engCfg.DuelWindow = duels.PairingWindow
	}

	// Optional database connection
	var database *db.DB
	if appCfg.DatabaseURL != "" {
		conn, err := db.Connect(appCfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running without database)\n", err)
		} else {
			if err := conn.Migrate(); err != nil {
				log.Printf("[DB] Migration failed: %v\n", err)
			}
			for _, u := range appCfg.Users {
				if err := conn.UpsertUser(u); err != nil {
					log.Printf("[DB] UpsertUser error: %v\n", err)
				}
			}
			database = conn
			log.Println("[DB] Database connected and migrations applied")
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running without database")
	}

	bus := events.NewBus()
	eng, err := engine.New(engCfg, timer.NewClock(), bus, st, database, rand.NewSource(time.Now().UnixNano()))
	if err != nil {
		return err
	}

	if database != nil {
		buffer := make(chan db.SessionRecord, 1000)
		eng.Archive = buffer
		go sessionBatchWriter(database, buffer)
	}

	bc := broadcast.NewBroadcaster(bus)
	hub := wshub.NewHub()
	go hub.Forward(bc.Subscribe())

	srv := &Server{
		Engine:      eng,
		Broadcaster: bc,
		Hub:         hub,
		DB:          database,
	}

	// Cycle rollover does not wait for a completion to notice the week
	// ended.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			eng.CheckRollover()
		}
	}()

	addr := "0.0.0.0:" + appCfg.Port
	fmt.Printf("Server listening on http://localhost:%s\n", appCfg.Port)
	return http.ListenAndServe(addr, srv.Handler())
}

// sessionBatchWriter drains the archive buffer into the database in batches.
func sessionBatchWriter(database *db.DB, buffer chan db.SessionRecord) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	batch := make([]db.SessionRecord, 0, 50)

	for {
		select {
		case rec := <-buffer:
			batch = append(batch, rec)
			if len(batch) >= 50 {
				if err := database.BatchRecordSessions(batch); err != nil {
					log.Printf("[DB] BatchRecordSessions error: %v\n", err)
				}
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				if err := database.BatchRecordSessions(batch); err != nil {
					log.Printf("[DB] BatchRecordSessions error: %v\n", err)
				}
				batch = batch[:0]
			}
		}
	}
}

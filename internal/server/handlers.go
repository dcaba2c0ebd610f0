package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"chicfocus/internal/broadcast"
	"chicfocus/internal/db"
	"chicfocus/internal/engine"
	"chicfocus/internal/events"
	"chicfocus/internal/wshub"
)

type Server struct {
	Engine      *engine.Engine
	Broadcaster *broadcast.Broadcaster
	Hub         *wshub.Hub
	DB          *db.DB // nil if no database configured
}

type sessionRequest struct {
	User string `json:"user"`
	Task string `json:"task,omitempty"`
	Tier int    `json:"tier,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Encode error: %v\n", err)
	}
}

// writeError maps engine sentinels to HTTP statuses. The error string is the
// wire code.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, engine.ErrDailyLimit):
		status = http.StatusTooManyRequests
	case errors.Is(err, engine.ErrSessionActive),
		errors.Is(err, engine.ErrAlreadyPaused),
		errors.Is(err, engine.ErrNotPaused):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrNoActiveSession):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request"})
		return false
	}
	return true
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}
	duration, err := s.Engine.StartSession(req.User, req.Task, req.Tier)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "duration": duration})
}

func (s *Server) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.Engine.PauseSession(req.User); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.Engine.ResumeSession(req.User); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.Engine.ResetSession(req.User); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEndCycle(w http.ResponseWriter, r *http.Request) {
	s.Engine.EndCycle()
	snap := s.Engine.Snapshot()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "winner": snap.LastWinner})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		rows, err := s.DB.CycleHistory(20)
		if err == nil {
			writeJSON(w, http.StatusOK, rows)
			return
		}
		log.Printf("[DB] CycleHistory error: %v\n", err)
	}
	writeJSON(w, http.StatusOK, s.Engine.Snapshot().History)
}

func (s *Server) handleUserAchievements(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")
	if s.DB != nil {
		ids, err := s.DB.GetUserAchievements(user)
		if err == nil {
			writeJSON(w, http.StatusOK, ids)
			return
		}
		log.Printf("[DB] GetUserAchievements error: %v\n", err)
	}
	view, ok := s.Engine.Snapshot().Users[user]
	if !ok {
		writeError(w, engine.ErrInvalidUser)
		return
	}
	writeJSON(w, http.StatusOK, view.Achievements)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.Broadcaster.Subscribe()
	defer s.Broadcaster.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("[Server] Marshal error: %v\n", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\n", ev.Type)
			for _, line := range strings.Split(string(data), "\n") {
				fmt.Fprintf(w, "data: %s\n", line)
			}
			fmt.Fprint(w, "\n")
			flusher.Flush()
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[WS] Accept error: %v\n", err)
		return
	}

	client := &wshub.Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, 64),
	}
	s.Hub.Register(client)
	defer s.Hub.Unregister(client.ID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go client.WritePump(ctx)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var cmd wshub.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			log.Printf("[WS] Bad command: %v\n", err)
			continue
		}
		s.dispatch(client, cmd)
	}
}

// dispatch applies one inbound client command to the engine. Failures go
// back to the sending client only; successes reach everyone through the
// event stream.
func (s *Server) dispatch(client *wshub.Client, cmd wshub.Command) {
	var err error
	switch cmd.Type {
	case "register":
		client.User = cmd.User
	case "start_session", "pause", "resume", "reset":
		// A registered connection may only act for its own user.
		if client.User != "" && cmd.User != client.User {
			err = fmt.Errorf("not_owner")
		}
	}
	if err == nil {
		err = s.apply(cmd)
	}
	if err == nil {
		return
	}
	data, merr := json.Marshal(events.Event{Type: events.Error, User: cmd.User, Message: err.Error()})
	if merr != nil {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

// apply executes one command against the engine.
func (s *Server) apply(cmd wshub.Command) error {
	var err error
	switch cmd.Type {
	case "register":
	case "start_session":
		_, err = s.Engine.StartSession(cmd.User, cmd.Task, cmd.Tier)
	case "pause":
		err = s.Engine.PauseSession(cmd.User)
	case "resume":
		err = s.Engine.ResumeSession(cmd.User)
	case "reset":
		err = s.Engine.ResetSession(cmd.User)
	case "end_cycle":
		s.Engine.EndCycle()
	default:
		err = fmt.Errorf("unknown_command")
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			status = "db_error"
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"%s","error":"%s"}`, status, err.Error())
			return
		}
	}
	fmt.Fprintf(w, `{"status":"%s"}`, status)
}

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"chicfocus/internal/cycle"
	"chicfocus/internal/sessions"
	"chicfocus/internal/stats"
)

// UserRecord is one user's persisted slice of the document.
type UserRecord struct {
	Sessions []*sessions.Session `json:"sessions"`
	Stats    stats.UserStats     `json:"stats"`
}

// Document is the whole persisted state. Every mutation rewrites it in full;
// there is no incremental log.
type Document struct {
	Users      map[string]*UserRecord `json:"users"`
	CycleStart time.Time              `json:"cycle_start"`
	Winner     string                 `json:"winner,omitempty"`
	History    []cycle.Record         `json:"history,omitempty"`
}

func NewDocument(users []string, now time.Time) *Document {
	doc := &Document{
		Users:      make(map[string]*UserRecord, len(users)),
		CycleStart: now,
	}
	for _, u := range users {
		doc.Users[u] = &UserRecord{}
	}
	return doc
}

// Store reads and writes the document at a fixed path.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the document. A missing file yields a fresh document. A corrupt
// file is not repaired: it is preserved under a backup name and a fresh
// document is returned.
func (s *Store) Load(users []string, now time.Time) (*Document, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewDocument(users, now), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		backup := fmt.Sprintf("%s.corrupt.%d", s.path, now.Unix())
		if renameErr := os.Rename(s.path, backup); renameErr != nil {
			return nil, fmt.Errorf("backing up corrupt document: %w", renameErr)
		}
		log.Printf("[Store] Corrupt document moved to %s, starting fresh\n", backup)
		return NewDocument(users, now), nil
	}

	// Users added to the config after the document was written still get
	// a record.
	if doc.Users == nil {
		doc.Users = make(map[string]*UserRecord, len(users))
	}
	for _, u := range users {
		if doc.Users[u] == nil {
			doc.Users[u] = &UserRecord{}
		}
	}
	if doc.CycleStart.IsZero() {
		doc.CycleStart = now
	}
	return &doc, nil
}

// Save writes the full document atomically: temp file in the same directory,
// then rename over the target, so a crash never leaves a truncated file.
func (s *Store) Save(doc *Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensuring data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "chicfocus-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing document: %w", err)
	}
	return nil
}

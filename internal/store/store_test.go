package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chicfocus/internal/sessions"
)

var testUsers = []string{"luu", "4keni"}

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "chicfocus.json")
	return New(path), path
}

func TestLoad_MissingFile(t *testing.T) {
	s, _ := tempStore(t)
	now := time.Now()

	doc, err := s.Load(testUsers, now)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(doc.Users) != 2 {
		t.Errorf("fresh document has %d users, want 2", len(doc.Users))
	}
	if !doc.CycleStart.Equal(now) {
		t.Errorf("CycleStart = %v, want %v", doc.CycleStart, now)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s, _ := tempStore(t)
	now := time.Now()

	doc := NewDocument(testUsers, now)
	completedAt := now.Add(15 * time.Minute)
	doc.Users["luu"].Sessions = append(doc.Users["luu"].Sessions, &sessions.Session{
		ID:          "s1",
		User:        "luu",
		Task:        "thesis",
		Tier:        2,
		StartedAt:   now,
		Completed:   true,
		CompletedAt: &completedAt,
	})
	doc.Users["luu"].Stats.Streak = 3
	doc.Winner = "luu"

	if err := s.Save(doc); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := s.Load(testUsers, time.Now())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(loaded.Users["luu"].Sessions) != 1 {
		t.Fatalf("loaded %d sessions, want 1", len(loaded.Users["luu"].Sessions))
	}
	if loaded.Users["luu"].Sessions[0].Task != "thesis" {
		t.Errorf("session task = %q, want thesis", loaded.Users["luu"].Sessions[0].Task)
	}
	if loaded.Users["luu"].Stats.Streak != 3 {
		t.Errorf("streak = %d, want 3", loaded.Users["luu"].Stats.Streak)
	}
	if loaded.Winner != "luu" {
		t.Errorf("winner = %q, want luu", loaded.Winner)
	}
}

func TestLoad_CorruptFileBackedUp(t *testing.T) {
	s, path := tempStore(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	doc, err := s.Load(testUsers, now)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(doc.Users["luu"].Sessions) != 0 {
		t.Error("corrupt load should yield a fresh document")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range entries {
		if strings.Contains(e.Name(), ".corrupt.") {
			found = true
		}
	}
	if !found {
		t.Error("corrupt file should be preserved under a backup name")
	}
}

func TestSave_AtomicReplace(t *testing.T) {
	s, path := tempStore(t)
	now := time.Now()

	if err := s.Save(NewDocument(testUsers, now)); err != nil {
		t.Fatalf("first Save() error: %v", err)
	}
	doc := NewDocument(testUsers, now)
	doc.Winner = "4keni"
	if err := s.Save(doc); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("data dir holds %v, want only the document", names)
	}

	loaded, err := s.Load(testUsers, now)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Winner != "4keni" {
		t.Errorf("winner = %q, want 4keni", loaded.Winner)
	}
}

func TestLoad_AddsMissingUsers(t *testing.T) {
	s, _ := tempStore(t)
	now := time.Now()
	if err := s.Save(NewDocument([]string{"luu"}, now)); err != nil {
		t.Fatal(err)
	}

	doc, err := s.Load(testUsers, now)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if doc.Users["4keni"] == nil {
		t.Error("newly configured user should get a record")
	}
}

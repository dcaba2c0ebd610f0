package db

import (
	"fmt"
	"time"
)

// SessionRecord is the archived form of a terminal session.
type SessionRecord struct {
	ID          string
	User        string
	Task        string
	Tier        int
	StartedAt   time.Time
	CompletedAt *time.Time
	AbortedAt   *time.Time
	PausedMs    int64
	DuelID      *string
	Points      int
}

func (d *DB) UpsertUser(name string) error {
	_, err := d.conn.Exec(`
		INSERT INTO users (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
	`, name)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

func (d *DB) RecordSession(rec SessionRecord) error {
	_, err := d.conn.Exec(`
		INSERT INTO focus_sessions (id, user_name, task_name, tier, started_at, completed_at, aborted_at, paused_ms, duel_id, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, rec.User, rec.Task, rec.Tier, rec.StartedAt, rec.CompletedAt, rec.AbortedAt, rec.PausedMs, rec.DuelID, rec.Points)
	if err != nil {
		return fmt.Errorf("recording session: %w", err)
	}
	return nil
}

func (d *DB) BatchRecordSessions(recs []SessionRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO focus_sessions (id, user_name, task_name, tier, started_at, completed_at, aborted_at, paused_ms, duel_id, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.Exec(rec.ID, rec.User, rec.Task, rec.Tier, rec.StartedAt, rec.CompletedAt, rec.AbortedAt, rec.PausedMs, rec.DuelID, rec.Points); err != nil {
			return fmt.Errorf("recording session in batch: %w", err)
		}
	}

	return tx.Commit()
}

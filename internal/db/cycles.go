package db

import (
	"fmt"
	"time"

	"chicfocus/internal/cycle"
)

func (d *DB) RecordCycle(rec cycle.Record) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for user, res := range rec.Results {
		_, err := tx.Exec(`
			INSERT INTO cycle_results (cycle_start, cycle_end, user_name, points, top_tier_count, completions, longest_streak, winner)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, rec.Start, rec.End, user, res.Points, res.TopTierCount, res.Completions, res.LongestStreak, rec.Winner)
		if err != nil {
			return fmt.Errorf("recording cycle result: %w", err)
		}
	}

	return tx.Commit()
}

func (d *DB) AwardAchievement(user, achievementID string) error {
	_, err := d.conn.Exec(`
		INSERT INTO user_achievements (user_name, achievement_id)
		VALUES ($1, $2)
		ON CONFLICT (user_name, achievement_id) DO NOTHING
	`, user, achievementID)
	if err != nil {
		return fmt.Errorf("awarding achievement: %w", err)
	}
	return nil
}

func (d *DB) GetUserAchievements(user string) ([]string, error) {
	rows, err := d.conn.Query(`
		SELECT achievement_id FROM user_achievements WHERE user_name = $1 ORDER BY awarded_at
	`, user)
	if err != nil {
		return nil, fmt.Errorf("getting achievements: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CycleHistory returns archived per-user results, newest first.
func (d *DB) CycleHistory(limit int) ([]CycleResultRow, error) {
	rows, err := d.conn.Query(`
		SELECT cycle_start, cycle_end, user_name, points, top_tier_count, completions, longest_streak, winner
		FROM cycle_results ORDER BY cycle_end DESC, user_name LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing cycle history: %w", err)
	}
	defer rows.Close()

	var out []CycleResultRow
	for rows.Next() {
		var r CycleResultRow
		if err := rows.Scan(&r.CycleStart, &r.CycleEnd, &r.User, &r.Points, &r.TopTierCount, &r.Completions, &r.LongestStreak, &r.Winner); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

type CycleResultRow struct {
	CycleStart    time.Time
	CycleEnd      time.Time
	User          string
	Points        int
	TopTierCount  int
	Completions   int
	LongestStreak int
	Winner        string
}

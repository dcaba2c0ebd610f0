package cycle

import (
	"testing"
	"time"

	"chicfocus/internal/sessions"
)

func TestDue(t *testing.T) {
	start := time.Now()
	if Due(start, start.Add(6*24*time.Hour)) {
		t.Error("cycle should not be due after 6 days")
	}
	if !Due(start, start.Add(7*24*time.Hour)) {
		t.Error("cycle should be due after exactly 7 days")
	}
}

func TestWinner_ByPoints(t *testing.T) {
	got := Winner("luu", "4keni", Result{Points: 10}, Result{Points: 7})
	if got != "luu" {
		t.Errorf("Winner() = %q, want luu", got)
	}
}

func TestWinner_TopTierTiebreak(t *testing.T) {
	got := Winner("luu", "4keni", Result{Points: 10, TopTierCount: 1}, Result{Points: 10, TopTierCount: 3})
	if got != "4keni" {
		t.Errorf("Winner() = %q, want 4keni on top-tier tiebreak", got)
	}
}

func TestWinner_Tie(t *testing.T) {
	got := Winner("luu", "4keni", Result{Points: 10, TopTierCount: 2}, Result{Points: 10, TopTierCount: 2})
	if got != TieWinner {
		t.Errorf("Winner() = %q, want %q", got, TieWinner)
	}
}

func TestDistinctDays(t *testing.T) {
	day1 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	day1later := day1.Add(5 * time.Hour)
	day2 := day1.AddDate(0, 0, 1)

	completed := []sessions.Session{
		{Completed: true, CompletedAt: &day1},
		{Completed: true, CompletedAt: &day1later},
		{Completed: true, CompletedAt: &day2},
	}
	if got := DistinctDays(completed); got != 2 {
		t.Errorf("DistinctDays() = %d, want 2", got)
	}
}

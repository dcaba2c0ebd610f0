package sessions

import "time"

// PauseInterval is one pause on an active session. End is nil while the
// session is still paused.
type PauseInterval struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// Session is one timed focus attempt by one user. A session is terminal once
// Completed or Aborted is set; the two flags are mutually exclusive.
type Session struct {
	ID           string          `json:"id"`
	User         string          `json:"user"`
	Task         string          `json:"task_name"`
	Tier         int             `json:"tier"`
	StartedAt    time.Time       `json:"timestamp"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	AbortedAt    *time.Time      `json:"aborted_at,omitempty"`
	Pauses       []PauseInterval `json:"pauses,omitempty"`
	DuelID       string          `json:"duel_id,omitempty"`
	Completed    bool            `json:"completed"`
	Aborted      bool            `json:"aborted"`
	DoublePoints bool            `json:"double_points,omitempty"`
}

// Clone returns a copy detached from the ledger's live record. The pause
// slice is duplicated; timestamps behind pointers are never rewritten, so
// those pointers are shared.
func (s *Session) Clone() Session {
	out := *s
	if len(s.Pauses) > 0 {
		out.Pauses = make([]PauseInterval, len(s.Pauses))
		copy(out.Pauses, s.Pauses)
	}
	return out
}

// Terminal reports whether the session has ended, either way.
func (s *Session) Terminal() bool {
	return s.Completed || s.Aborted
}

// PausedTotal sums all closed pause intervals.
func (s *Session) PausedTotal() time.Duration {
	var total time.Duration
	for _, p := range s.Pauses {
		if p.End != nil {
			total += p.End.Sub(p.Start)
		}
	}
	return total
}

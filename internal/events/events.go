package events

// Type names match the wire events delivered to clients.
type Type string

const (
	TimerTick           Type = "timer_tick"
	TimerPaused         Type = "timer_paused"
	TimerResumed        Type = "timer_resumed"
	TimerReset          Type = "timer_reset"
	SessionStarted      Type = "session_started"
	SessionCompleted    Type = "session_completed"
	SessionDone         Type = "session_done"
	BreakStarted        Type = "break_started"
	BreakSkipped        Type = "break_skipped"
	MysteryEggActivated Type = "mystery_egg_activated"
	EffectUsed          Type = "effect_used"
	AchievementsEarned  Type = "achievements_earned"
	DuelStarted         Type = "duel_started"
	DuelComplete        Type = "duel_complete"
	DuelForfeit         Type = "duel_forfeit"
	CycleComplete       Type = "cycle_complete"
	Error               Type = "error"
)

// Event is the single flat outbound event shape. Fields are populated per
// type and omitted from JSON when empty.
type Event struct {
	Type         Type           `json:"t"`
	User         string         `json:"user,omitempty"`
	Partner      string         `json:"partner,omitempty"`
	Task         string         `json:"task,omitempty"`
	Tier         int            `json:"tier,omitempty"`
	Remaining    int            `json:"remaining,omitempty"`
	IsBreak      bool           `json:"is_break,omitempty"`
	Effect       string         `json:"effect,omitempty"`
	Message      string         `json:"message,omitempty"`
	Achievements []string       `json:"achievements,omitempty"`
	Winner       string         `json:"winner,omitempty"`
	Loser        string         `json:"loser,omitempty"`
	Points       map[string]int `json:"points,omitempty"`
}

// Bus carries engine events to the delivery layers on two channels. Outbound
// holds the events clients must not miss (completions, duels, eggs, cycle
// results); Ticks holds the once-a-second countdown noise, which is
// disposable. Keeping the tick flood on its own channel means a burst of
// ticks can never crowd a completion out of the bus.
type Bus struct {
	Outbound chan Event
	Ticks    chan Event
}

func NewBus() *Bus {
	return &Bus{
		Outbound: make(chan Event, 256),
		Ticks:    make(chan Event, 64),
	}
}

// Publish enqueues an event without blocking. When the buffer is full the
// oldest queued event is evicted to make room, so a slow consumer loses the
// stalest events first and the newest always lands.
func (b *Bus) Publish(ev Event) {
	for {
		select {
		case b.Outbound <- ev:
			return
		default:
			select {
			case <-b.Outbound:
			default:
			}
		}
	}
}

// PublishTick enqueues a countdown tick, dropped outright when full.
func (b *Bus) PublishTick(ev Event) {
	select {
	case b.Ticks <- ev:
	default:
	}
}

package broadcast

import (
	"chicfocus/internal/events"
	"sync"
)

// Broadcaster fans bus events out to subscribed clients (SSE connections and
// the websocket hub). Slow clients are skipped rather than blocking the rest.
type Broadcaster struct {
	Mu      sync.Mutex
	Clients map[chan events.Event]bool
}

func NewBroadcaster(bus *events.Bus) *Broadcaster {
	b := &Broadcaster{
		Clients: make(map[chan events.Event]bool),
	}
	go func() {
		for {
			select {
			case ev, ok := <-bus.Outbound:
				if !ok {
					return
				}
				b.Broadcast(ev)
			case ev := <-bus.Ticks:
				b.Broadcast(ev)
			}
		}
	}()
	return b
}

func (b *Broadcaster) Subscribe() chan events.Event {
	ch := make(chan events.Event, 32)
	b.Mu.Lock()
	b.Clients[ch] = true
	b.Mu.Unlock()
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan events.Event) {
	b.Mu.Lock()
	delete(b.Clients, ch)
	b.Mu.Unlock()
	close(ch)
}

func (b *Broadcaster) Broadcast(ev events.Event) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	for ch := range b.Clients {
		select {
		case ch <- ev:
		default:
			// skip clients with full data channels
		}
	}
}

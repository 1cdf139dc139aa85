package server

import (
	"encoding/json"
	"sync"
)

// TourEvent is the payload published to a tour's observers. State is nil
// on "ended" events since the tour no longer exists.
type TourEvent struct {
	Type       string     `json:"type"`
	TourID     string     `json:"tour_id"`
	FirstVisit bool       `json:"first_visit,omitempty"`
	State      *TourState `json:"state,omitempty"`
}

// Broker is an in-process pub/sub for tour events, keyed by tour ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the given tour.
func (b *Broker) Subscribe(tourID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[tourID] == nil {
		b.subs[tourID] = make(map[chan []byte]struct{})
	}
	b.subs[tourID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(tourID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[tourID], ch)
	if len(b.subs[tourID]) == 0 {
		delete(b.subs, tourID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given tour.
func (b *Broker) Publish(tourID string, event TourEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[tourID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

func (b *Broker) subscribers(tourID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[tourID])
}

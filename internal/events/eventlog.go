// Package events provides the append-only audit log for the sorting server:
// every tree reload, learned identity and served sort is traceable here.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a server event.
type EventType string

const (
	EventTypeTreeLoaded         EventType = "TREE_LOADED"
	EventTypeItemLearned        EventType = "ITEM_LEARNED"
	EventTypeIdentityDiscovered EventType = "IDENTITY_DISCOVERED"
	EventTypeInventorySorted    EventType = "INVENTORY_SORTED"
)

// TreeLoadedPayload describes a completed hierarchy load.
type TreeLoadedPayload struct {
	Source     string `json:"source"`
	Categories int    `json:"categories"`
	Items      int    `json:"items"`
	Aliases    int    `json:"aliases"`
}

// ItemLearnedPayload describes a synthetic entry registered for a
// previously unknown identity.
type ItemLearnedPayload struct {
	Name    string `json:"name"`
	TypeID  int    `json:"type_id"`
	Variant int    `json:"variant"`
	Order   int    `json:"order"`
}

// IdentityDiscoveredPayload describes a concrete identity reported by the
// external registry for an alias key.
type IdentityDiscoveredPayload struct {
	Key     string `json:"key"`
	TypeID  int    `json:"type_id"`
	Variant int    `json:"variant"`
}

// InventorySortedPayload describes a served sort request.
type InventorySortedPayload struct {
	Stacks int `json:"stacks"`
	Moved  int `json:"moved"`
}

// Event is an immutable record of something the server did.
type Event struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"` // who triggered it: a client ID, "LOADER", "REGISTRY", "TREE"
	Payload   interface{} `json:"payload"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event Event) error
}

// EventLog is the in-memory append-only log, optionally written through to
// a persister.
type EventLog struct {
	mu        sync.RWMutex
	events    []Event
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]Event, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event Event) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = append(el.events, event)

	if el.persister != nil {
		// Write through asynchronously; the in-memory log is the
		// source of truth for this process.
		go func(e Event) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// Record builds an event with a fresh ID and current timestamp and appends it.
func (el *EventLog) Record(eventType EventType, source string, payload interface{}) Event {
	event := Event{
		ID:        GenerateEventID(),
		Timestamp: time.Now(),
		Type:      eventType,
		Source:    source,
		Payload:   payload,
	}
	el.Append(event)
	return event
}

// GetByType returns all events of a specific type.
func (el *EventLog) GetByType(eventType EventType) []Event {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []Event
	for _, e := range el.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

// GetBySource returns all events triggered by a specific source.
func (el *EventLog) GetBySource(source string) []Event {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []Event
	for _, e := range el.events {
		if e.Source == source {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns the full history of events.
func (el *EventLog) Replay() []Event {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.events
}

// Len returns the number of events appended so far.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}

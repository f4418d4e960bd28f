// Package events publishes prediction outcomes to NATS and serves prediction
// requests over NATS request/reply.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/boat-oracle/internal/models"
)

// Event is the envelope of every published outcome
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Kind       string          `json:"kind"`
	Race       models.RaceInfo `json:"race"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    interface{}     `json:"payload"`
}

// NewEvent wraps a payload for publishing
func NewEvent(kind string, race models.RaceInfo, payload interface{}) Event {
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		Race:       race,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Reply is the body answered to a request
type Reply struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Publisher sends outcomes to subscribers
type Publisher interface {
	Publish(subject string, data interface{}) error
	Close()
}

// Noop discards every event. It is used when publishing is disabled.
type Noop struct{}

// Publish does nothing
func (Noop) Publish(string, interface{}) error { return nil }

// Close does nothing
func (Noop) Close() {}

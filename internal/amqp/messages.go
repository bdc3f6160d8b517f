package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RoutingSelectionChanged is the message type carried in the AMQP Type field.
const RoutingSelectionChanged = "selection.changed"

var ErrInvalidMessage = errors.New("invalid selection message")

// SelectionChangedMessage describes one applied selection event. It carries
// the outcome of the dispatch, not the dataset, so consumers can store it as is.
type SelectionChangedMessage struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	Event        string    `json:"event"`
	All          bool      `json:"all"`
	Keys         []string  `json:"keys"`
	EntityCount  int       `json:"entity_count"`
	TotalSavings float64   `json:"total_savings"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewSelectionChangedMessage stamps a fresh id and the current time
func NewSelectionChangedMessage(sessionID, event string, all bool, keys []string, entityCount int, totalSavings float64) *SelectionChangedMessage {
	if keys == nil {
		keys = []string{}
	}
	return &SelectionChangedMessage{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		Event:        event,
		All:          all,
		Keys:         keys,
		EntityCount:  entityCount,
		TotalSavings: totalSavings,
		Timestamp:    time.Now().UTC(),
	}
}

// Validate rejects messages a consumer cannot store
func (m *SelectionChangedMessage) Validate() error {
	if m.ID == "" || m.SessionID == "" || m.Event == "" {
		return ErrInvalidMessage
	}
	if m.Timestamp.IsZero() {
		return ErrInvalidMessage
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *SelectionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SelectionChangedMessageFromJSON decodes and validates a message body
func SelectionChangedMessageFromJSON(data []byte) (*SelectionChangedMessage, error) {
	var msg SelectionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

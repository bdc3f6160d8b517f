package services

import (
	"context"
	"fmt"

	"savingsdash/internal/aggregate"
	"savingsdash/internal/amqp"
	"savingsdash/internal/dashboard"
	"savingsdash/internal/log"
)

// Publisher sends selection analytics messages to the broker
type Publisher interface {
	PublishSelectionChanged(ctx context.Context, msg *amqp.SelectionChangedMessage) error
}

// SelectionPublisher turns applied dashboard events into analytics messages.
// A nil publisher disables analytics.
type SelectionPublisher struct {
	publisher Publisher
	logger    *log.Logger
}

func NewSelectionPublisher(publisher Publisher, logger *log.Logger) *SelectionPublisher {
	if logger == nil {
		logger = log.Discard()
	}
	return &SelectionPublisher{
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentAMQP),
	}
}

// Enabled reports whether messages are actually sent
func (s *SelectionPublisher) Enabled() bool {
	return s != nil && s.publisher != nil
}

// SelectionChanged publishes the outcome of one event. Failures are logged
// and never reach the caller: the dashboard response does not depend on them.
func (s *SelectionPublisher) SelectionChanged(ctx context.Context, sessionID, event string, view dashboard.View) {
	if !s.Enabled() {
		return
	}
	msg := NewMessage(sessionID, event, view)
	if err := s.publisher.PublishSelectionChanged(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish selection message",
			log.FieldOperation, log.OpPublish,
			log.FieldSessionID, sessionID,
			log.FieldEvent, event,
			log.FieldError, err.Error())
	}
}

// NewMessage builds the analytics message for a view. The total is rounded
// to cents so consumers do not see float noise.
func NewMessage(sessionID, event string, view dashboard.View) *amqp.SelectionChangedMessage {
	return amqp.NewSelectionChangedMessage(
		sessionID,
		event,
		view.Selection.All,
		view.Selection.Keys,
		len(view.Entities),
		aggregate.Round2(view.Summary.TotalSavings),
	)
}

// Close releases the broker connection when the publisher owns one
func (s *SelectionPublisher) Close() error {
	if !s.Enabled() {
		return nil
	}
	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}

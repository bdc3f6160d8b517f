package worker

import (
	"context"
	"fmt"

	"savingsdash/internal/amqp"
	"savingsdash/internal/log"
	"savingsdash/internal/storage"
)

// EventRecorder stores selection analytics events
type EventRecorder interface {
	RecordSelectionEvent(ctx context.Context, e storage.SelectionEvent) (bool, error)
}

// Consumer delivers selection messages to a handler until ctx is done
type Consumer interface {
	ConsumeSelectionChanged(ctx context.Context, handler amqp.SelectionHandler) error
}

// AnalyticsWorker persists selection.changed messages
type AnalyticsWorker struct {
	store  EventRecorder
	logger *log.Logger
}

func NewAnalyticsWorker(store EventRecorder, logger *log.Logger) *AnalyticsWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &AnalyticsWorker{
		store:  store,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleSelectionMessage stores one message. Redelivered messages are
// recognized by id and acknowledged without a second row.
func (w *AnalyticsWorker) HandleSelectionMessage(ctx context.Context, msg *amqp.SelectionChangedMessage) error {
	stored, err := w.store.RecordSelectionEvent(ctx, storage.SelectionEvent{
		ID:           msg.ID,
		SessionID:    msg.SessionID,
		Event:        msg.Event,
		All:          msg.All,
		Keys:         msg.Keys,
		EntityCount:  msg.EntityCount,
		TotalSavings: msg.TotalSavings,
		OccurredAt:   msg.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("record selection event %s: %w", msg.ID, err)
	}

	if !stored {
		w.logger.DebugContext(ctx, "Duplicate selection message ignored",
			"id", msg.ID,
			log.FieldSessionID, msg.SessionID)
		return nil
	}

	w.logger.InfoContext(ctx, "Recorded selection event",
		log.FieldOperation, log.OpConsume,
		log.FieldSessionID, msg.SessionID,
		log.FieldEvent, msg.Event,
		log.FieldEntities, msg.EntityCount)
	return nil
}

// Run consumes messages until ctx is cancelled
func (w *AnalyticsWorker) Run(ctx context.Context, consumer Consumer) error {
	w.logger.InfoContext(ctx, "Analytics worker started", log.FieldOperation, log.OpStartup)
	err := consumer.ConsumeSelectionChanged(ctx, w.HandleSelectionMessage)
	if ctx.Err() != nil {
		w.logger.InfoContext(ctx, "Analytics worker stopped", log.FieldOperation, log.OpShutdown)
		return nil
	}
	return err
}

// Package sources defines where a dashboard session gets its raw dataset.
package sources

import (
	"context"

	"savingsdash/internal/dataset"
	"savingsdash/internal/log"
)

// RawDataset is the pair of JSON lists a host page would embed: the company
// statistics and the monthly timeline.
type RawDataset struct {
	Entities []byte
	Timeline []byte
}

// Ports for upstream adapters.
type (
	DatasetReader interface {
		ReadDataset(ctx context.Context) (RawDataset, error)
	}
)

// Open reads the dataset and builds a store. A failing reader degrades to an
// empty store so the dashboard still renders.
func Open(ctx context.Context, r DatasetReader, logger *log.Logger) *dataset.Store {
	if logger == nil {
		logger = log.Discard()
	}
	raw, err := r.ReadDataset(ctx)
	if err != nil {
		logger.WithComponent(log.ComponentBackend).ErrorContext(ctx, "Failed to read dataset, using empty dataset",
			log.FieldOperation, log.OpRead,
			log.FieldError, err.Error())
		return dataset.Empty()
	}
	return dataset.Load(raw.Entities, raw.Timeline, logger)
}

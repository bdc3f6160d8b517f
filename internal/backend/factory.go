package backend

import (
	"context"
	"fmt"

	"savingsdash/internal/log"
	"savingsdash/internal/sources/file"
	"savingsdash/internal/sources/google"
	"savingsdash/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case FileBackend:
		return f.createFileBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Reader:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, google.Settings{
		SpreadsheetID:  config.GoogleSpreadsheetID,
		CompaniesSheet: config.GoogleCompaniesSheet,
		TimelineSheet:  config.GoogleTimelineSheet,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"companies_sheet", config.GoogleCompaniesSheet,
		"timeline_sheet", config.GoogleTimelineSheet)

	return &BackendResult{Reader: cli}, nil
}

func (f *DefaultFactory) createFileBackend(config Config) (*BackendResult, error) {
	store := file.New(config.DataDirectory)

	f.logger.Info("Initialized file backend", "data_directory", store.Dir())

	return &BackendResult{Reader: store}, nil
}

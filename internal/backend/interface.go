package backend

import (
	"context"

	"savingsdash/internal/sources"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Pinger is implemented by backends with a live connection to check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendResult contains the dataset reader and optional cleanup function
type BackendResult struct {
	Reader  sources.DatasetReader
	Cleanup CleanupFunc
}

// Ready checks the backend connection when it has one.
func (r *BackendResult) Ready(ctx context.Context) error {
	if p, ok := r.Reader.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close runs the cleanup function if any.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a dataset reader based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID  string
	GoogleCompaniesSheet string
	GoogleTimelineSheet  string

	// File backend specific
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

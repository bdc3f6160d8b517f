// Package file reads the dataset from two JSON files in a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"savingsdash/internal/sources"
)

const (
	EntitiesFile = "companies.json"
	TimelineFile = "timeline.json"
)

var emptyList = []byte("[]")

type Store struct {
	dir string
}

var _ sources.DatasetReader = (*Store)(nil)

// New reads from dir. A missing file reads as an empty list.
func New(dir string) *Store {
	if dir == "" {
		dir = "data"
	}
	return &Store{dir: dir}
}

// Dir is the directory the store reads from.
func (s *Store) Dir() string { return s.dir }

func (s *Store) ReadDataset(ctx context.Context) (sources.RawDataset, error) {
	if err := ctx.Err(); err != nil {
		return sources.RawDataset{}, err
	}
	entities, err := readList(filepath.Join(s.dir, EntitiesFile))
	if err != nil {
		return sources.RawDataset{}, err
	}
	timeline, err := readList(filepath.Join(s.dir, TimelineFile))
	if err != nil {
		return sources.RawDataset{}, err
	}
	return sources.RawDataset{Entities: entities, Timeline: timeline}, nil
}

func readList(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return emptyList, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return b, nil
}

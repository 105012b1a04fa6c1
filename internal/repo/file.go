package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/tripwhizz/tripsync/internal/atomicfile"
)

// FileStore keeps a small JSON object on disk. Keys other than
// SelectionKey written by other tools are preserved on Set.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file is created on the
// first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(_ context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return "", false, fmt.Errorf("repo.FileStore.Get: %w", err)
	}
	id, ok := values[SelectionKey].(string)
	return id, ok, nil
}

func (s *FileStore) Set(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return fmt.Errorf("repo.FileStore.Set: %w", err)
	}
	values[SelectionKey] = id
	if err := atomicfile.WriteJSON(s.path, values, 0o644); err != nil {
		return fmt.Errorf("repo.FileStore.Set: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// load reads the file. A missing or corrupt file reads as empty, so a
// damaged store costs the saved selection and nothing else.
func (s *FileStore) load() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err != nil {
		slog.Warn("repo: corrupt selection file, ignoring", "path", s.path, "err", err)
		return map[string]any{}, nil
	}
	return values, nil
}

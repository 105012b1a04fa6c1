// Package auth supplies the backend token to the API client. A token comes
// either from configuration (Static) or from a token file that tripctl login
// writes and tripsyncd watches (FileStore).
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tripwhizz/tripsync/internal/atomicfile"
)

// Static is a fixed token. The empty string means "not signed in".
type Static string

// Token implements apiclient.TokenProvider.
func (s Static) Token() (string, bool) { return string(s), s != "" }

// Credentials is the on-disk token file.
type Credentials struct {
	Token   string    `json:"token"`
	UserID  int64     `json:"user_id,omitempty"`
	Email   string    `json:"email,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

// FileStore holds the token from a JSON credentials file and reloads it when
// the file changes on disk.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	creds   Credentials
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileStore loads path (a missing file means signed out).
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultPath is the credentials file under the user's config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "tripsync", "credentials.json")
}

// Path returns the credentials file location.
func (s *FileStore) Path() string { return s.path }

// Token implements apiclient.TokenProvider.
func (s *FileStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Token, s.creds.Token != ""
}

// Credentials returns the currently loaded credentials.
func (s *FileStore) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Reload re-reads the credentials file.
func (s *FileStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.set(Credentials{})
			return nil
		}
		return fmt.Errorf("auth.FileStore.Reload: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("auth.FileStore.Reload: parse %s: %w", s.path, err)
	}
	s.set(creds)
	slog.Debug("auth: reloaded credentials", "path", s.path, "signed_in", creds.Token != "")
	return nil
}

// Save writes creds to disk (mode 0600) and makes them current.
func (s *FileStore) Save(creds Credentials) error {
	if creds.SavedAt.IsZero() {
		creds.SavedAt = time.Now().UTC()
	}
	if err := atomicfile.WriteJSON(s.path, creds, 0o600); err != nil {
		return fmt.Errorf("auth.FileStore.Save: %w", err)
	}
	s.set(creds)
	return nil
}

// Clear removes the credentials file (sign out).
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("auth.FileStore.Clear: %w", err)
	}
	s.set(Credentials{})
	return nil
}

func (s *FileStore) set(c Credentials) {
	s.mu.Lock()
	s.creds = c
	s.mu.Unlock()
}

// Watch starts reloading the file whenever it is written, created or
// removed. onChange, when non-nil, runs after each successful reload.
// The parent directory is watched so atomic replaces are seen.
func (s *FileStore) Watch(onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("auth.FileStore.Watch: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		watcher.Close()
		return fmt.Errorf("auth.FileStore.Watch: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("auth.FileStore.Watch: add %s: %w", dir, err)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.watchLoop(watcher, onChange)
	return nil
}

func (s *FileStore) watchLoop(w *fsnotify.Watcher, onChange func()) {
	defer close(s.done)
	target := filepath.Clean(s.path)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Reload(); err != nil {
				slog.Warn("auth: failed to reload credentials", "err", err)
				continue
			}
			if onChange != nil {
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Warn("auth: watcher error", "err", err)
		}
	}
}

// Close stops the watcher, if any, and waits for its goroutine to exit.
func (s *FileStore) Close() error {
	s.mu.Lock()
	w, done := s.watcher, s.done
	s.watcher = nil
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	err := w.Close()
	<-done
	return err
}

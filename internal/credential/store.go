// Package credential holds the bearer token used for every task API call.
//
// The client never inspects the token. It only cares whether one is present;
// expiry is discovered when the server rejects it.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// Store holds the current bearer token.
type Store interface {
	// Get returns the token and true, or "" and false when logged out.
	Get() (string, bool)

	// Set replaces the token.
	Set(token string) error

	// Clear removes the token. Clearing an empty store is not an error.
	Clear() error
}

// FileStore persists the token as an oauth2.Token JSON document, so it survives
// process restarts until Clear is called or the file is removed.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore returns a store backed by the file at path.
// The file is created on the first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Get implements Store. An unreadable or corrupt file counts as absent.
func (s *FileStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return "", false
	}
	if tok.AccessToken == "" {
		return "", false
	}
	return tok.AccessToken, true
}

// Set implements Store. The file is written with mode 0600.
func (s *FileStore) Set(token string) error {
	if token == "" {
		return errors.New("empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	data, err := json.MarshalIndent(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore keeps the token in memory only.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns a store holding token ("" for logged out).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

// Get implements Store.
func (s *MemoryStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set implements Store.
func (s *MemoryStore) Set(token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// Bearer returns the token from s as an oauth2.Token ready to be attached to
// a request, or nil when s is empty.
func Bearer(s Store) *oauth2.Token {
	tok, ok := s.Get()
	if !ok {
		return nil
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}
}

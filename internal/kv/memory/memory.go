package memory

import (
	"context"
	"sync"

	"budgetboard/internal/kv"
)

// Store keeps values in process memory. Contents do not outlive the process.
type Store struct {
	mu       sync.Mutex
	values   map[string]string
	readErr  error
	writeErr error
	writes   int
}

var _ kv.Store = (*Store)(nil)

func New() *Store {
	return &Store{values: map[string]string{}}
}

// NewWith returns a store pre-populated with seed.
func NewWith(seed map[string]string) *Store {
	s := New()
	for k, v := range seed {
		s.values[k] = v
	}
	return s
}

// Get returns the value stored under key.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return "", false, s.readErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	if s.writeErr != nil {
		return s.writeErr
	}
	s.values[key] = value
	return nil
}

// FailReads makes every Get return err until called again with nil.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// FailWrites makes every Set return err until called again with nil.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Writes returns how many Set calls were attempted, failed ones included.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

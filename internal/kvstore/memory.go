package kvstore

import (
	"sync"

	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// Memory implements Store with an in-process map. Used in tests and as
// a stand-in when no durable substrate is available.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool

	// FailWith, when set, makes every operation return that error.
	// Lets tests exercise substrate-failure paths.
	FailWith error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns the value for key, or ErrKeyNotFound if absent.
func (s *Memory) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(); err != nil {
		return nil, err
	}

	value, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Put stores value under key.
func (s *Memory) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(); err != nil {
		return err
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

// Delete removes key. Absent keys are not an error.
func (s *Memory) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(); err != nil {
		return err
	}

	delete(s.data, key)
	return nil
}

// Close marks the store closed; later operations fail with AccessDenied.
func (s *Memory) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Len returns the number of stored keys.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *Memory) check() error {
	if s.FailWith != nil {
		return s.FailWith
	}
	if s.closed {
		return kerrors.Wrap(kerrors.ErrAccessDenied, "store is closed")
	}
	return nil
}

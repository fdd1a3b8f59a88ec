package core

import (
	"sync"

	"github.com/google/uuid"
)

// PayloadStore maps timer ids to their opaque payloads. A payload exists
// exactly as long as its owning timer does.
type PayloadStore struct {
	mu   sync.Mutex
	data map[uuid.UUID]string
}

// NewPayloadStore creates an empty payload store.
func NewPayloadStore() *PayloadStore {
	return &PayloadStore{
		data: make(map[uuid.UUID]string),
	}
}

// Put associates a payload with a timer id, replacing any previous value.
func (s *PayloadStore) Put(id uuid.UUID, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = payload
}

// Take removes and returns the payload for the given id.
func (s *PayloadStore) Take(id uuid.UUID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.data[id]
	if ok {
		delete(s.data, id)
	}
	return payload, ok
}

// Get returns the payload for the given id without removing it.
func (s *PayloadStore) Get(id uuid.UUID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.data[id]
	return payload, ok
}

// Len returns the number of stored payloads.
func (s *PayloadStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

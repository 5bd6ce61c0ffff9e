// Package topics remembers the last thing each caller asked to see.
//
// The store is process-local and volatile: a topic lives until it is
// overwritten or the process restarts. There is no eviction and no history.
package topics

import (
	"sync"
	"time"
)

// Record is the remembered topic for one caller.
type Record struct {
	CallerID  string    `json:"caller_id"`
	Topic     string    `json:"topic"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store maps caller identifiers to their latest raw topic.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		records: make(map[string]Record),
		now:     time.Now,
	}
}

// Get returns the topic remembered for callerID.
func (s *Store) Get(callerID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[callerID]
	return rec.Topic, ok
}

// Set overwrites the topic for callerID. Latest write wins.
func (s *Store) Set(callerID, topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[callerID] = Record{
		CallerID:  callerID,
		Topic:     topic,
		UpdatedAt: s.now().UTC(),
	}
}

// Lookup returns the full record for callerID.
func (s *Store) Lookup(callerID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[callerID]
	return rec, ok
}

// Len returns the number of callers with a remembered topic.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

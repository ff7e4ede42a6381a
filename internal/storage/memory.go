// Package storage provides the persistence backends behind the note store.
// Every backend implements notes.Backend: load a user's whole record, save it
// back write-through. Backends report a corrupted record as an absent user
// (logged) so one bad record never takes the process down.
package storage

import (
	"context"
	"sync"

	"github.com/kuitang/chat-notes/internal/notes"
)

// Memory keeps records in a process-local map. Used for tests and for
// running without durable storage.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*notes.UserRecord
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*notes.UserRecord)}
}

// LoadUser returns a copy of the user's record, or (nil, nil) when absent.
func (m *Memory) LoadUser(_ context.Context, userID string) (*notes.UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[userID].Clone(), nil
}

// SaveUser stores a copy of the record.
func (m *Memory) SaveUser(_ context.Context, userID string, rec *notes.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[userID] = rec.Clone()
	return nil
}

// Close implements the backend lifecycle; nothing to release.
func (m *Memory) Close() error { return nil }

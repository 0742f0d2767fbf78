package credstore

import (
	"context"
	"sync"
)

// Memory is an in-process [Store]. It is safe for concurrent use and loses
// its contents when the process exits.
type Memory struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]string, 2),
	}
}

// Read implements [Store].
func (m *Memory) Read(ctx context.Context) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	userJSON := []byte(m.entries[KeyUser])
	token := m.entries[KeyToken]
	if !validRecord(userJSON, token) {
		return Record{}, false, nil
	}
	return Record{UserJSON: userJSON, Token: token}, true, nil
}

// Write implements [Store].
func (m *Memory) Write(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[KeyUser] = string(rec.UserJSON)
	m.entries[KeyToken] = rec.Token
	return nil
}

// Clear implements [Store].
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, KeyUser)
	delete(m.entries, KeyToken)
	return nil
}

// SetEntry writes a single raw entry, bypassing the paired-write rule. Test
// hook for exercising partial-record reads.
func (m *Memory) SetEntry(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

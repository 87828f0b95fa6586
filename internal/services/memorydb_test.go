package services

import (
	"sync"
	"time"

	"github.com/amaumene/filmdocs/internal/database"
)

type memoryDB struct {
	mu     sync.Mutex
	bodies map[string]*database.CachedBody
}

func (m *memoryDB) GetCachedBody(key string) (*database.CachedBody, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bodies[key], nil
}

func (m *memoryDB) StoreBody(body *database.CachedBody) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bodies == nil {
		m.bodies = make(map[string]*database.CachedBody)
	}
	m.bodies[body.Key] = body
	return nil
}

func (m *memoryDB) DeleteOlderThan(time.Duration) (int, error) { return 0, nil }

func (m *memoryDB) Close() error { return nil }

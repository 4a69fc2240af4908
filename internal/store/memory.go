package store

import (
	"context"
	"errors"
	"sync"

	"github.com/spigell/cv-screener/internal/screening"
)

// Memory keeps sessions for the lifetime of the process. With a positive
// capacity the oldest session is evicted first.
type Memory struct {
	mu       sync.RWMutex
	capacity int
	sessions map[string]*screening.Session
	order    []string
	newID    func() string
}

func NewMemory(capacity int) *Memory {
	if capacity < 0 {
		capacity = 0
	}
	return &Memory{
		capacity: capacity,
		sessions: make(map[string]*screening.Session),
		newID:    newID,
	}
}

func (m *Memory) Kind() string { return KindMemory }

func (m *Memory) Put(_ context.Context, s *screening.Session) (string, error) {
	if s == nil {
		return "", errors.New("nil session")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var id string
	for {
		id = m.newID()
		if _, taken := m.sessions[id]; !taken {
			break
		}
	}

	s.ID = id
	stored := *s
	m.sessions[id] = &stored
	m.order = append(m.order, id)

	for m.capacity > 0 && len(m.order) > m.capacity {
		delete(m.sessions, m.order[0])
		m.order = m.order[1:]
	}

	return id, nil
}

func (m *Memory) Get(_ context.Context, id string) (*screening.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *s
	return &out, nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

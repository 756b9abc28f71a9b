package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plushbot/internal/catalog"
	"plushbot/internal/llm"
)

// сессии без активности дольше TTL выметаются
const (
	defaultTTL           = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// Manager — in-memory реестр сессий. Ничего не переживает рестарт
// процесса: завершение сессии просто выбрасывает её состояние.
type Manager struct {
	catalog   *catalog.Catalog
	completer llm.Completer
	logger    *zap.Logger
	ttl       time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager создаёт реестр
func NewManager(cat *catalog.Catalog, completer llm.Completer, logger *zap.Logger) *Manager {
	return &Manager{
		catalog:   cat,
		completer: completer,
		logger:    logger,
		ttl:       defaultTTL,
		sessions:  make(map[uuid.UUID]*Session),
	}
}

// Create открывает сессию с приветствием
func (m *Manager) Create() *Session {
	s := NewSession(m.catalog, m.completer, m.logger)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s
}

// Get возвращает живую сессию и продлевает её TTL
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch()
	return s, nil
}

// Delete завершает сессию
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len количество живых сессий
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep удаляет сессии без активности с deadline и возвращает число
// удалённых
func (m *Manager) Sweep(deadline time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince(deadline) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper запускает фоновую очистку до отмены контекста
func (m *Manager) StartSweeper(ctx context.Context) {
	go func() {
		t := time.NewTicker(defaultSweepInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := m.Sweep(time.Now().UTC().Add(-m.ttl)); n > 0 {
					m.logger.Info("idle sessions removed", zap.Int("count", n))
				}
			}
		}
	}()
}

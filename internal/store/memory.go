// internal/store/memory.go
//
// In-memory registry of live game sessions.
// The registry owns the session lifecycle: create → use → dispose.
//
// Characteristics:
//   - Stores game.Handle values keyed by session ID, together with their owner.
//   - Concurrency-safe via RWMutex (lookups touch lastAccess under the write lock).
//   - Idle sessions are disposed by a background sweeper (Start/Stop).
//   - State is lost when the process restarts; completed runs are persisted separately.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/game"
)

// ErrNotFound is returned for unknown sessions and missing rows.
var ErrNotFound = errors.New("not found")

// Owner identifies who plays a session: a signed-in user or an anonymous cookie.
type Owner struct {
	UserID string `json:"userId,omitempty"`
	AnonID string `json:"-"`
}

// Key is the stable identifier used for access checks and daily attempts.
func (o Owner) Key() string {
	if o.UserID != "" {
		return "u:" + o.UserID
	}
	return "a:" + o.AnonID
}

// Live is one registered session.
type Live struct {
	Handle game.Handle
	Owner  Owner
	// Daily is the date key when the session is a daily challenge attempt.
	Daily string
}

// SessionStore defines the registry interface used by the HTTP layer.
type SessionStore interface {
	// Save registers or replaces a session.
	Save(ctx context.Context, l Live) error

	// Get returns the session and refreshes its idle timer.
	Get(ctx context.Context, id string) (Live, error)

	// Delete disposes the session and forgets it.
	Delete(ctx context.Context, id string) error
}

type liveEntry struct {
	Live
	lastAccess time.Time
}

// Memory is the map-backed SessionStore.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*liveEntry
	idleTTL  time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemory returns an empty registry; idleTTL <= 0 disables sweeping.
func NewMemory(idleTTL time.Duration) *Memory {
	return &Memory{
		sessions: make(map[string]*liveEntry),
		idleTTL:  idleTTL,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

func (m *Memory) Save(_ context.Context, l Live) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := l.Handle.ID()
	if old, ok := m.sessions[id]; ok && old.Handle != l.Handle {
		old.Handle.Dispose()
	}
	m.sessions[id] = &liveEntry{Live: l, lastAccess: m.now()}
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (Live, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return Live{}, ErrNotFound
	}
	e.lastAccess = m.now()
	return e.Live, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	e.Handle.Dispose()
	return nil
}

// Len reports the number of live sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep disposes sessions idle for longer than the TTL and returns how many went.
func (m *Memory) Sweep() int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTTL)
	var stale []game.Handle
	m.mu.Lock()
	for id, e := range m.sessions {
		if e.lastAccess.Before(cutoff) {
			stale = append(stale, e.Handle)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, h := range stale {
		h.Dispose()
	}
	if len(stale) > 0 {
		log.Info().Int("disposed", len(stale)).Msg("swept idle sessions")
	}
	return len(stale)
}

// Start runs Sweep every interval in a goroutine until Stop.
func (m *Memory) Start(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Stop ends the sweeper and disposes every remaining session.
func (m *Memory) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*liveEntry)
	m.mu.Unlock()
	for _, e := range all {
		e.Handle.Dispose()
	}
}

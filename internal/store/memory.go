// internal/store/memory.go
//
// In-memory registry of live game rooms.
//
// Characteristics:
//   - Stores *play.Room objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Rooms idle longer than the TTL are closed and dropped by Sweep/Run.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/doanchu/internal/play"
)

// ErrNotFound is returned by Get for unknown or evicted games.
var ErrNotFound = errors.New("store: game not found")

// Store defines the registry used by the HTTP layer.
type Store interface {
	// Put registers a room under its ID.
	Put(r *play.Room)

	// Get retrieves a room by ID.
	// Returns ErrNotFound if the game is missing.
	Get(id string) (*play.Room, error)

	// Delete closes and removes a room. Unknown IDs are ignored.
	Delete(id string)
}

// Memory is a map-based Store with idle eviction.
type Memory struct {
	mu    sync.RWMutex          // guards rooms
	rooms map[string]*play.Room // keyed by Room.ID()
}

// NewMemory constructs an empty registry.
func NewMemory() *Memory {
	return &Memory{rooms: make(map[string]*play.Room)}
}

// Put adds or replaces the room in the map.
func (m *Memory) Put(r *play.Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.ID()] = r
}

// Get looks up a room by ID.
func (m *Memory) Get(id string) (*play.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

// Delete closes the room and drops it.
func (m *Memory) Delete(id string) {
	m.mu.Lock()
	r, ok := m.rooms[id]
	delete(m.rooms, id)
	m.mu.Unlock()
	if ok {
		r.Close()
	}
}

// Len returns the number of live rooms.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Sweep closes and removes rooms whose last command is older than ttl.
// It returns the number of evicted rooms.
func (m *Memory) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	var stale []*play.Room
	for id, r := range m.rooms {
		if r.LastSeen().Before(cutoff) {
			stale = append(stale, r)
			delete(m.rooms, id)
		}
	}
	m.mu.Unlock()

	for _, r := range stale {
		r.Close()
		log.Debug().Str("gameId", r.ID()).Msg("evicted idle game")
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done, then closes all rooms.
func (m *Memory) Run(ctx context.Context, every, ttl time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-t.C:
			if n := m.Sweep(ttl); n > 0 {
				log.Info().Int("evicted", n).Int("live", m.Len()).Msg("swept idle games")
			}
		}
	}
}

func (m *Memory) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.rooms {
		r.Close()
		delete(m.rooms, id)
	}
}

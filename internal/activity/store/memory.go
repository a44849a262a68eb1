package store

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/exportviz/internal/activity/entity"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkgerror"
)

// InMemoryStore keeps one snapshot per session in process memory.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]entity.Snapshot
	ttl      time.Duration
	now      func() time.Time
}

// NewInMemoryStore returns a store whose snapshots expire ttl after their
// last write. A non-positive ttl keeps snapshots forever.
func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]entity.Snapshot),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Save replaces the snapshot of snap.SessionID wholesale.
func (s *InMemoryStore) Save(ctx context.Context, snap entity.Snapshot) error {
	if snap.SessionID == "" {
		return pkgerror.NewBusiness("session id is required", pkgerror.CodeInvalidInput)
	}

	snap.Blob = bytes.Clone(snap.Blob)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[snap.SessionID] = snap

	return nil
}

func (s *InMemoryStore) Load(ctx context.Context, sessionID string) (entity.Snapshot, error) {
	s.mu.RLock()
	snap, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return entity.Snapshot{}, pkgerror.ErrNotFound
	}

	if expired(snap.UpdatedAt, s.ttl, s.now()) {
		return entity.Snapshot{}, pkgerror.ErrExpired
	}

	snap.Blob = bytes.Clone(snap.Blob)
	return snap, nil
}

// Sweep drops every expired snapshot and reports how many were removed.
func (s *InMemoryStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, snap := range s.sessions {
		if expired(snap.UpdatedAt, s.ttl, now) {
			delete(s.sessions, id)
			removed++
		}
	}

	return removed, nil
}

func (s *InMemoryStore) Close() error {
	return nil
}

func expired(updatedAt int64, ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(time.Unix(updatedAt, 0)) > ttl
}

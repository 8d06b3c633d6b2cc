package memory

import (
	"context"
	"sync"

	"github.com/spartan077/Taxi-Share/internal/admin/domain"
)

// StatusRepo — in-memory ride_status
type StatusRepo struct {
	mu    sync.RWMutex
	items map[string]domain.RideStatus
}

func NewStatusRepo() *StatusRepo {
	return &StatusRepo{items: make(map[string]domain.RideStatus)}
}

func (r *StatusRepo) Get(_ context.Context, groupID string) (*domain.RideStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[groupID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *StatusRepo) Upsert(_ context.Context, s *domain.RideStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[s.GroupID] = *s
	return nil
}

func (r *StatusRepo) ListAll(_ context.Context) (map[string]*domain.RideStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*domain.RideStatus, len(r.items))
	for id, s := range r.items {
		out[id] = &s
	}
	return out, nil
}

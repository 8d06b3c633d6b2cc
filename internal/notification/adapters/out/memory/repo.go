package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/spartan077/Taxi-Share/internal/notification/domain"
)

// Repo — in-memory notifications (capacity.store=memory и тесты)
type Repo struct {
	mu    sync.RWMutex
	items []*domain.Notification
}

func NewRepo() *Repo { return &Repo{} }

func (r *Repo) Insert(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *n
	r.items = append(r.items, &c)
	return nil
}

func (r *Repo) ListForUser(_ context.Context, userID string, limit int) ([]*domain.Notification, error) {
	return r.list(func(n *domain.Notification) bool { return n.UserID == userID }, limit), nil
}

func (r *Repo) ListAll(_ context.Context, limit int) ([]*domain.Notification, error) {
	return r.list(func(*domain.Notification) bool { return true }, limit), nil
}

func (r *Repo) list(match func(*domain.Notification) bool, limit int) []*domain.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Notification, 0)
	for _, n := range r.items {
		if match(n) {
			c := *n
			out = append(out, &c)
		}
	}
	slices.SortStableFunc(out, func(a, b *domain.Notification) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *Repo) UnreadCount(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, item := range r.items {
		if item.UserID == userID && !item.Read {
			n++
		}
	}
	return n, nil
}

func (r *Repo) MarkRead(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id && (userID == "" || item.UserID == userID) {
			item.Read = true
			return nil
		}
	}
	return domain.ErrNotFound
}

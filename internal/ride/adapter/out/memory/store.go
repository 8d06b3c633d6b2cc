// Package memory — in-memory хранилище запросов, групп и тарифов.
// Используется при capacity.store=memory и в тестах use cases.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/spartan077/Taxi-Share/internal/model"
	"github.com/spartan077/Taxi-Share/internal/ride/domain"
)

type Store struct {
	mu       sync.RWMutex
	requests map[string]*domain.RideRequest
	groups   map[string]*domain.RideGroup
	pricing  map[string]*domain.Pricing
}

func NewStore() *Store {
	return &Store{
		requests: make(map[string]*domain.RideRequest),
		groups:   make(map[string]*domain.RideGroup),
		pricing:  make(map[string]*domain.Pricing),
	}
}

// Requests, Groups и Pricing разделяют одну блокировку и одно состояние
func (s *Store) Requests() *RequestRepo { return &RequestRepo{s} }
func (s *Store) Groups() *GroupRepo     { return &GroupRepo{s} }
func (s *Store) Pricing() *PricingRepo  { return &PricingRepo{s} }

// SeedPricing кладет тарифы (dev и тесты)
func (s *Store) SeedPricing(rows ...*domain.Pricing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range rows {
		c := *p
		s.pricing[p.ID] = &c
	}
}

// ---- requests ----

type RequestRepo struct{ s *Store }

func (r *RequestRepo) Create(_ context.Context, req *domain.RideRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *req
	r.s.requests[req.ID] = &c
	return nil
}

func (r *RequestRepo) FindByID(_ context.Context, requestID string) (*domain.RideRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	req, ok := r.s.requests[requestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *req
	return &c, nil
}

func (r *RequestRepo) CancelPending(_ context.Context, requestID string, updatedAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[requestID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if req.Status != model.RequestStatusPending {
		return false, nil
	}
	req.Status = model.RequestStatusCancelled
	req.UpdatedAt = updatedAt
	for _, g := range r.s.groups {
		if g.RideRequestID == requestID {
			g.Version++
			g.UpdatedAt = updatedAt
		}
	}
	return true, nil
}

// Delete не удаляет запрос, на который еще ссылается группа (как FK в Postgres)
func (r *RequestRepo) Delete(_ context.Context, requestID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[requestID]; !ok {
		return domain.ErrNotFound
	}
	for _, g := range r.s.groups {
		if g.RideRequestID == requestID {
			return domain.StoreError("delete ride request", errReferenced)
		}
	}
	delete(r.s.requests, requestID)
	return nil
}

func (r *RequestRepo) List(_ context.Context) ([]*domain.RideRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.RideRequest, 0, len(r.s.requests))
	for _, req := range r.s.requests {
		c := *req
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *domain.RideRequest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// ---- groups ----

type GroupRepo struct{ s *Store }

func (r *GroupRepo) Create(_ context.Context, g *domain.RideGroup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[g.RideRequestID]; !ok {
		return domain.StoreError("insert ride group", errMissingRequest)
	}
	for _, existing := range r.s.groups {
		if existing.RideRequestID == g.RideRequestID {
			return domain.StoreError("insert ride group", errDuplicateGroup)
		}
	}
	r.s.groups[g.ID] = g.Clone()
	return nil
}

func (r *GroupRepo) FindByID(_ context.Context, groupID string) (*domain.RideGroup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.groups[groupID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return g.Clone(), nil
}

func (r *GroupRepo) FindByRequestID(_ context.Context, requestID string) (*domain.RideGroup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, g := range r.s.groups {
		if g.RideRequestID == requestID {
			return g.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *GroupRepo) UpdateIfVersion(_ context.Context, g *domain.RideGroup, expected int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.groups[g.ID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if stored.Version != expected {
		return false, nil
	}
	g.Version = expected + 1
	r.s.groups[g.ID] = g.Clone()
	return true, nil
}

func (r *GroupRepo) Delete(_ context.Context, groupID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.groups[groupID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.groups, groupID)
	return nil
}

func (r *GroupRepo) List(_ context.Context) ([]*domain.RideGroup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.RideGroup, 0, len(r.s.groups))
	for _, g := range r.s.groups {
		out = append(out, g.Clone())
	}
	slices.SortFunc(out, func(a, b *domain.RideGroup) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// ---- pricing ----

type PricingRepo struct{ s *Store }

func (r *PricingRepo) FindByID(_ context.Context, pricingID string) (*domain.Pricing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.pricing[pricingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *PricingRepo) ListByRoute(_ context.Context, routeName string) ([]*domain.Pricing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Pricing
	for _, p := range r.s.pricing {
		if p.RouteName == routeName {
			c := *p
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Pricing) int {
		if c := cmp.Compare(a.FinalPrice, b.FinalPrice); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *PricingRepo) List(_ context.Context) ([]*domain.Pricing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Pricing, 0, len(r.s.pricing))
	for _, p := range r.s.pricing {
		c := *p
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *domain.Pricing) int {
		if c := cmp.Compare(a.RouteName, b.RouteName); c != 0 {
			return c
		}
		return cmp.Compare(a.CarType, b.CarType)
	})
	return out, nil
}

func (r *PricingRepo) Update(_ context.Context, p *domain.Pricing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.pricing[p.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *p
	r.s.pricing[p.ID] = &c
	return nil
}

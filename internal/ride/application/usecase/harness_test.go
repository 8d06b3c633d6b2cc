package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spartan077/Taxi-Share/internal/model"
	"github.com/spartan077/Taxi-Share/internal/ride/adapter/out/memory"
	"github.com/spartan077/Taxi-Share/internal/ride/application/ports/in"
	"github.com/spartan077/Taxi-Share/internal/ride/application/ports/out"
	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/config"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/stretchr/testify/require"
)

var (
	creator = auth.Viewer{UserID: "creator", Role: model.RoleUser, Gender: model.GenderFemale}
	admin   = auth.Viewer{UserID: "admin", Role: model.RoleAdmin}
)

func user(id string) auth.Viewer {
	return auth.Viewer{UserID: id, Role: model.RoleUser, Gender: model.GenderFemale}
}

type sent struct {
	recipient, message, category string
}

type recordingSink struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (s *recordingSink) Notify(_ context.Context, recipientID, message, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sent{recipientID, message, category})
	return nil
}

func (s *recordingSink) recipients(category string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, n := range s.sent {
		if n.category == category {
			out = append(out, n.recipient)
		}
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.GroupEvent
	err    error
}

func (p *recordingPublisher) PublishGroupEvent(_ context.Context, e domain.GroupEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := map[string]int{}
	for _, e := range p.events {
		out[e.EventType]++
	}
	return out
}

func (p *recordingPublisher) last(eventType string) (domain.GroupEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].EventType == eventType {
			return p.events[i], true
		}
	}
	return domain.GroupEvent{}, false
}

// flakyGroups позволяет подменить отдельные методы GroupRepository
type flakyGroups struct {
	out.GroupRepository
	updates     atomic.Int32
	alwaysStale bool
	deleteErr   error
	findErr     error
	createErr   error
}

func (f *flakyGroups) Create(ctx context.Context, g *domain.RideGroup) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.GroupRepository.Create(ctx, g)
}

func (f *flakyGroups) UpdateIfVersion(ctx context.Context, g *domain.RideGroup, expected int64) (bool, error) {
	f.updates.Add(1)
	if f.alwaysStale {
		return false, nil
	}
	return f.GroupRepository.UpdateIfVersion(ctx, g, expected)
}

func (f *flakyGroups) Delete(ctx context.Context, groupID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.GroupRepository.Delete(ctx, groupID)
}

func (f *flakyGroups) FindByRequestID(ctx context.Context, requestID string) (*domain.RideGroup, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.GroupRepository.FindByRequestID(ctx, requestID)
}

type flakyRequests struct {
	out.RequestRepository
	deleteErr error
	readDelay time.Duration
	// afterRead срабатывает один раз: после чтения, до возврата результата
	afterRead atomic.Pointer[func()]
}

func (f *flakyRequests) FindByID(ctx context.Context, requestID string) (*domain.RideRequest, error) {
	req, err := f.RequestRepository.FindByID(ctx, requestID)
	if hook := f.afterRead.Swap(nil); hook != nil {
		(*hook)()
	}
	if f.readDelay > 0 {
		time.Sleep(f.readDelay)
	}
	return req, err
}

func (f *flakyRequests) Delete(ctx context.Context, requestID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.RequestRepository.Delete(ctx, requestID)
}

type harness struct {
	store    *memory.Store
	groups   *flakyGroups
	requests *flakyRequests
	sink     *recordingSink
	pub      *recordingPublisher
	mgr      *CapacityManager
}

var errBoom = errors.New("boom")

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore()
	store.SeedPricing(
		&domain.Pricing{ID: "sedan", RouteName: "pune_to_mumbai", CarName: "Dzire", CarType: "sedan", BasePrice: 3000, Discount: 500, FinalPrice: 2500, MaxPassengers: 4},
		&domain.Pricing{ID: "suv", RouteName: "pune_to_mumbai", CarName: "Innova", CarType: "suv", BasePrice: 4200, Discount: 600, FinalPrice: 3600, MaxPassengers: 6},
		&domain.Pricing{ID: "goa-sedan", RouteName: "pune_to_goa", CarName: "Dzire", CarType: "sedan", FinalPrice: 9000, MaxPassengers: 4},
	)

	h := &harness{
		store:    store,
		groups:   &flakyGroups{GroupRepository: store.Groups()},
		requests: &flakyRequests{RequestRepository: store.Requests()},
		sink:     &recordingSink{},
		pub:      &recordingPublisher{},
	}
	cfg := config.CapacityConfig{MaxAttempts: 3, RetryBackoffMs: 1, NotifyTimeoutMs: 1000}
	h.mgr = NewCapacityManager(h.requests, h.groups, store.Pricing(), h.sink, h.pub, cfg, logger.Nop())
	t.Cleanup(h.mgr.Wait)
	return h
}

func (h *harness) createRide(t *testing.T, owner auth.Viewer, pricingID string, seats int) *in.CreateRideOutput {
	t.Helper()
	res, err := h.mgr.CreateRide(context.Background(), owner, in.CreateRideInput{
		Source:        "Pune",
		Destination:   "Mumbai",
		TimeSlot:      time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC),
		SeatsRequired: seats,
		PricingID:     pricingID,
	})
	require.NoError(t, err)
	return res
}

func (h *harness) group(t *testing.T, requestID string) *domain.RideGroup {
	t.Helper()
	g, err := h.store.Groups().FindByRequestID(context.Background(), requestID)
	require.NoError(t, err)
	return g
}

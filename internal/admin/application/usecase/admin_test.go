package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/spartan077/Taxi-Share/internal/admin/adapters/out/memory"
	"github.com/spartan077/Taxi-Share/internal/admin/application/ports/in"
	"github.com/spartan077/Taxi-Share/internal/admin/domain"
	"github.com/spartan077/Taxi-Share/internal/model"
	ridememory "github.com/spartan077/Taxi-Share/internal/ride/adapter/out/memory"
	ridein "github.com/spartan077/Taxi-Share/internal/ride/application/ports/in"
	rideusecase "github.com/spartan077/Taxi-Share/internal/ride/application/usecase"
	ridedomain "github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/config"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin = auth.Viewer{UserID: "admin-1", Role: model.RoleAdmin}
	rider = auth.Viewer{UserID: "u1", Role: model.RoleUser, Gender: model.GenderFemale}
)

type fixture struct {
	store    *ridememory.Store
	statuses *memory.StatusRepo
	mgr      *rideusecase.CapacityManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := ridememory.NewStore()
	store.SeedPricing(
		&ridedomain.Pricing{ID: "sedan", RouteName: "pune_to_mumbai", CarName: "Dzire", CarType: "sedan", BasePrice: 3000, Discount: 500, FinalPrice: 2500, MaxPassengers: 4},
		&ridedomain.Pricing{ID: "goa-suv", RouteName: "pune_to_goa", CarName: "Innova", CarType: "suv", FinalPrice: 9000, MaxPassengers: 6},
	)
	mgr := rideusecase.NewCapacityManager(store.Requests(), store.Groups(), store.Pricing(), nil, nil,
		config.CapacityConfig{MaxAttempts: 3, RetryBackoffMs: 1, NotifyTimeoutMs: 1000}, logger.Nop())
	t.Cleanup(mgr.Wait)
	return &fixture{store: store, statuses: memory.NewStatusRepo(), mgr: mgr}
}

func (f *fixture) createRide(t *testing.T, owner auth.Viewer, pricingID, dst string) *ridein.CreateRideOutput {
	t.Helper()
	out, err := f.mgr.CreateRide(context.Background(), owner, ridein.CreateRideInput{
		Source:        "Pune",
		Destination:   dst,
		TimeSlot:      time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC),
		SeatsRequired: 1,
		PricingID:     pricingID,
	})
	require.NoError(t, err)
	return out
}

func ptr[T any](v T) *T { return &v }

func TestPricingManager(t *testing.T) {
	f := newFixture(t)
	svc := NewPricingManagerService(f.store.Pricing(), logger.Nop())
	ctx := context.Background()

	rows, err := svc.ListPricing(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "pune_to_goa", rows[0].RouteName)

	updated, err := svc.UpdatePricing(ctx, admin, "sedan", in.PricingUpdate{
		FinalPrice:    ptr(2800.0),
		MaxPassengers: ptr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, 2800.0, updated.FinalPrice)
	assert.Equal(t, 3, updated.MaxPassengers)
	assert.Equal(t, "Dzire", updated.CarName)
	assert.False(t, updated.UpdatedAt.IsZero())

	stored, err := f.store.Pricing().FindByID(ctx, "sedan")
	require.NoError(t, err)
	assert.Equal(t, 2800.0, stored.FinalPrice)
}

func TestPricingManager_Rejections(t *testing.T) {
	f := newFixture(t)
	svc := NewPricingManagerService(f.store.Pricing(), logger.Nop())
	ctx := context.Background()

	_, err := svc.UpdatePricing(ctx, rider, "sedan", in.PricingUpdate{FinalPrice: ptr(1.0)})
	assert.ErrorIs(t, err, ridedomain.ErrForbidden)

	_, err = svc.UpdatePricing(ctx, admin, "sedan", in.PricingUpdate{MaxPassengers: ptr(0)})
	assert.ErrorIs(t, err, ridedomain.ErrInvalidInput)

	_, err = svc.UpdatePricing(ctx, admin, "sedan", in.PricingUpdate{Discount: ptr(-5.0)})
	assert.ErrorIs(t, err, ridedomain.ErrInvalidInput)

	_, err = svc.UpdatePricing(ctx, admin, "missing", in.PricingUpdate{FinalPrice: ptr(1.0)})
	assert.ErrorIs(t, err, ridedomain.ErrNotFound)

	stored, err := f.store.Pricing().FindByID(ctx, "sedan")
	require.NoError(t, err)
	assert.Equal(t, 4, stored.MaxPassengers)
}

func TestRideStatus(t *testing.T) {
	f := newFixture(t)
	svc := NewRideStatusService(f.statuses, f.store.Groups(), logger.Nop())
	ctx := context.Background()
	ride := f.createRide(t, rider, "sedan", "Mumbai")

	s, err := svc.UpdateStatus(ctx, admin, ride.Group.ID, domain.StatusUpdate{FirstCall: ptr(true)})
	require.NoError(t, err)
	assert.True(t, s.FirstCall)
	assert.Equal(t, admin.UserID, s.UpdatedBy)

	s, err = svc.UpdateStatus(ctx, admin, ride.Group.ID, domain.StatusUpdate{Payment: ptr(true)})
	require.NoError(t, err)
	assert.True(t, s.FirstCall, "flags not in the update are kept")
	assert.True(t, s.Payment)

	stored, err := f.statuses.Get(ctx, ride.Group.ID)
	require.NoError(t, err)
	assert.Equal(t, s, stored)
}

func TestRideStatus_Rejections(t *testing.T) {
	f := newFixture(t)
	svc := NewRideStatusService(f.statuses, f.store.Groups(), logger.Nop())
	ctx := context.Background()
	ride := f.createRide(t, rider, "sedan", "Mumbai")

	_, err := svc.UpdateStatus(ctx, rider, ride.Group.ID, domain.StatusUpdate{FirstCall: ptr(true)})
	assert.ErrorIs(t, err, ridedomain.ErrForbidden)

	_, err = svc.UpdateStatus(ctx, admin, ride.Group.ID, domain.StatusUpdate{})
	assert.ErrorIs(t, err, ridedomain.ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrEmptyUpdate)

	_, err = svc.UpdateStatus(ctx, admin, "no-such-group", domain.StatusUpdate{FirstCall: ptr(true)})
	assert.ErrorIs(t, err, ridedomain.ErrNotFound)

	all, err := f.statuses.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := f.createRide(t, rider, "sedan", "Mumbai")
	newer := f.createRide(t, auth.Viewer{UserID: "u9", Role: model.RoleUser, Gender: model.GenderMale}, "goa-suv", "Goa")

	_, err := f.mgr.Join(ctx, auth.Viewer{UserID: "u2", Role: model.RoleUser, Gender: model.GenderFemale}, older.Request.ID)
	require.NoError(t, err)

	statuses := NewRideStatusService(f.statuses, f.store.Groups(), logger.Nop())
	_, err = statuses.UpdateStatus(ctx, admin, older.Group.ID, domain.StatusUpdate{FollowUp: ptr(true)})
	require.NoError(t, err)

	svc := NewOverviewService(f.store.Requests(), f.store.Groups(), f.statuses, logger.Nop())
	items, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byGroup := map[string]in.GroupOverview{}
	for _, it := range items {
		byGroup[it.Group.ID] = it
	}

	o := byGroup[older.Group.ID]
	assert.Equal(t, []string{"u1", "u2"}, o.EffectiveMembers)
	assert.Equal(t, 2, o.RemainingCapacity)
	assert.Equal(t, 625, o.PricePerPerson)
	require.NotNil(t, o.Status)
	assert.True(t, o.Status.FollowUp)

	n := byGroup[newer.Group.ID]
	assert.Equal(t, []string{"u9"}, n.EffectiveMembers)
	assert.Equal(t, 1500, n.PricePerPerson)
	assert.Nil(t, n.Status)
}

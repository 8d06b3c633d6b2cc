package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/spartan077/Taxi-Share/internal/model"
	"github.com/spartan077/Taxi-Share/internal/ride/adapter/out/memory"
	"github.com/spartan077/Taxi-Share/internal/ride/application/ports/in"
	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedListing(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	base := time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC)

	add := func(id, owner, dest, pref string, created time.Time, total, seats int, members ...string) {
		req := &domain.RideRequest{
			ID: id, UserID: owner, Source: "Pune", Destination: dest,
			TimeSlot: created.Add(24 * time.Hour), SeatsRequired: seats,
			GenderPreference: pref, Status: model.RequestStatusPending,
			CarDetails: domain.CarDetails{FinalPrice: 2400, MaxPassengers: total},
			CreatedAt:  created,
		}
		require.NoError(t, store.Requests().Create(ctx, req))
		g, err := domain.NewGroup("grp-"+id, req, total, created)
		require.NoError(t, err)
		for _, m := range members {
			g, err = g.Join(owner, m, created)
			require.NoError(t, err)
		}
		require.NoError(t, store.Groups().Create(ctx, g))
	}

	add("open", "alice", "Mumbai", model.GenderPrefAny, base, 4, 1, "bob")
	add("full", "carol", "Mumbai", model.GenderPrefAny, base.Add(time.Hour), 2, 1, "dave")
	add("ladies", "erin", "Goa", model.GenderPrefFemaleOnly, base.Add(2*time.Hour), 4, 1)
	return store
}

func viewIDs(views []in.RequestView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Request.ID)
	}
	return out
}

func TestListRequests_VisibilityAndOrder(t *testing.T) {
	store := seedListing(t)
	svc := NewListRequestsService(store.Requests(), store.Groups(), time.UTC, logger.Nop())
	ctx := context.Background()

	stranger := auth.Viewer{UserID: "zed", Role: model.RoleUser, Gender: model.GenderFemale}
	views, err := svc.ListRequests(ctx, stranger, domain.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ladies", "open"}, viewIDs(views))

	for _, who := range []auth.Viewer{
		{UserID: "carol", Role: model.RoleUser},
		{UserID: "dave", Role: model.RoleUser},
		{UserID: "root", Role: model.RoleAdmin},
	} {
		views, err := svc.ListRequests(ctx, who, domain.Filter{})
		require.NoError(t, err)
		assert.Contains(t, viewIDs(views), "full", who.UserID)
	}

	views, err = svc.ListRequests(ctx, auth.Viewer{UserID: "dave", Role: model.RoleUser, Gender: model.GenderMale}, domain.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"full", "open"}, viewIDs(views))
}

func TestListRequests_DecoratesView(t *testing.T) {
	store := seedListing(t)
	svc := NewListRequestsService(store.Requests(), store.Groups(), time.UTC, logger.Nop())

	views, err := svc.ListRequests(context.Background(), auth.Viewer{UserID: "bob", Role: model.RoleUser}, domain.Filter{Destination: "mumbai"})
	require.NoError(t, err)
	require.Equal(t, []string{"open"}, viewIDs(views))

	v := views[0]
	assert.True(t, v.IsMember)
	assert.False(t, v.IsCreator)
	assert.False(t, v.IsFull)
	assert.Equal(t, 2, v.RemainingCapacity)
	assert.Equal(t, 600, v.PricePerPerson)
	assert.Equal(t, []string{"alice", "bob"}, v.EffectiveMembers)
}

func TestListRequests_Filters(t *testing.T) {
	store := seedListing(t)
	svc := NewListRequestsService(store.Requests(), store.Groups(), time.UTC, logger.Nop())
	ctx := context.Background()
	viewer := auth.Viewer{UserID: "root", Role: model.RoleAdmin, Gender: model.GenderFemale}

	views, err := svc.ListRequests(ctx, viewer, domain.Filter{FemaleOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"ladies"}, viewIDs(views))

	views, err = svc.ListRequests(ctx, viewer, domain.Filter{Date: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Len(t, views, 3)

	views, err = svc.ListRequests(ctx, viewer, domain.Filter{Date: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Empty(t, views)

	views, err = svc.ListRequests(ctx, viewer, domain.Filter{Source: "Nashik"})
	require.NoError(t, err)
	assert.Empty(t, views)
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/spartan077/Taxi-Share/internal/notification/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo_ListNewestFirstAndUnread(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, r.Insert(ctx, &domain.Notification{ID: id, UserID: "u1", CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}
	require.NoError(t, r.Insert(ctx, &domain.Notification{ID: "other", UserID: "u2", CreatedAt: base}))

	items, err := r.ListForUser(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "n3", items[0].ID)
	assert.Equal(t, "n2", items[1].ID)

	all, err := r.ListAll(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	require.NoError(t, r.MarkRead(ctx, "n1", "u1"))
	assert.ErrorIs(t, r.MarkRead(ctx, "n2", "u2"), domain.ErrNotFound)
	require.NoError(t, r.MarkRead(ctx, "other", ""))

	n, err := r.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRepo_ReturnsCopies(t *testing.T) {
	r := NewRepo()
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, &domain.Notification{ID: "n1", UserID: "u1"}))

	items, err := r.ListForUser(ctx, "u1", 0)
	require.NoError(t, err)
	items[0].Read = true

	n, err := r.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

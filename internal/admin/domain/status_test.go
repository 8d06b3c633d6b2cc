package domain

import (
	"testing"
	"time"

	"github.com/spartan077/Taxi-Share/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusUpdateFromFlags(t *testing.T) {
	u, err := StatusUpdateFromFlags(map[string]bool{
		model.StatusFlagFirstCall: true,
		model.StatusFlagPayment:   false,
	})
	require.NoError(t, err)
	require.NotNil(t, u.FirstCall)
	require.NotNil(t, u.Payment)
	assert.True(t, *u.FirstCall)
	assert.False(t, *u.Payment)
	assert.Nil(t, u.FollowUp)
	assert.False(t, u.IsEmpty())

	_, err = StatusUpdateFromFlags(map[string]bool{"paid_in_full": true})
	assert.ErrorIs(t, err, ErrUnknownFlag)

	empty, err := StatusUpdateFromFlags(nil)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}

func TestStatusUpdate_Apply(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	yes, no := true, false

	first := StatusUpdate{FirstCall: &yes}.Apply(nil, "g1", "admin-1", now)
	assert.Equal(t, &RideStatus{GroupID: "g1", FirstCall: true, UpdatedBy: "admin-1", UpdatedAt: now}, first)

	second := StatusUpdate{FollowUp: &yes, FirstCall: &no}.Apply(first, "g1", "admin-2", now.Add(time.Hour))
	assert.False(t, second.FirstCall)
	assert.True(t, second.FollowUp)
	assert.Equal(t, "admin-2", second.UpdatedBy)
	assert.True(t, first.FirstCall, "previous state is not modified")
}

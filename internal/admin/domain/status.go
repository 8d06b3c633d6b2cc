package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/spartan077/Taxi-Share/internal/model"
)

var (
	ErrUnknownFlag = errors.New("unknown status flag")
	ErrEmptyUpdate = errors.New("status update has no flags")
)

// RideStatus — операционные отметки админа по группе
type RideStatus struct {
	GroupID        string    `json:"ride_group_id" db:"ride_group_id"`
	FirstCall      bool      `json:"first_call" db:"first_call"`
	FollowUp       bool      `json:"follow_up" db:"follow_up"`
	Payment        bool      `json:"payment" db:"payment"`
	AdvancePayment bool      `json:"advance_payment" db:"advance_payment"`
	UpdatedBy      string    `json:"updated_by" db:"updated_by"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// StatusUpdate — частичное обновление: nil флаг не меняется
type StatusUpdate struct {
	FirstCall      *bool `json:"first_call,omitempty"`
	FollowUp       *bool `json:"follow_up,omitempty"`
	Payment        *bool `json:"payment,omitempty"`
	AdvancePayment *bool `json:"advance_payment,omitempty"`
}

// StatusUpdateFromFlags строит обновление из пар flag → value
func StatusUpdateFromFlags(flags map[string]bool) (StatusUpdate, error) {
	var u StatusUpdate
	for name, v := range flags {
		switch name {
		case model.StatusFlagFirstCall:
			u.FirstCall = &v
		case model.StatusFlagFollowUp:
			u.FollowUp = &v
		case model.StatusFlagPayment:
			u.Payment = &v
		case model.StatusFlagAdvancePayment:
			u.AdvancePayment = &v
		default:
			return StatusUpdate{}, fmt.Errorf("%w: %q", ErrUnknownFlag, name)
		}
	}
	return u, nil
}

func (u StatusUpdate) IsEmpty() bool {
	return u.FirstCall == nil && u.FollowUp == nil && u.Payment == nil && u.AdvancePayment == nil
}

// Apply возвращает новое состояние; s может быть nil (отметок еще нет)
func (u StatusUpdate) Apply(s *RideStatus, groupID, adminID string, now time.Time) *RideStatus {
	next := RideStatus{GroupID: groupID}
	if s != nil {
		next = *s
	}
	if u.FirstCall != nil {
		next.FirstCall = *u.FirstCall
	}
	if u.FollowUp != nil {
		next.FollowUp = *u.FollowUp
	}
	if u.Payment != nil {
		next.Payment = *u.Payment
	}
	if u.AdvancePayment != nil {
		next.AdvancePayment = *u.AdvancePayment
	}
	next.UpdatedBy = adminID
	next.UpdatedAt = now
	return &next
}

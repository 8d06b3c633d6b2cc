package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/spartan077/Taxi-Share/internal/admin/application/ports/out"
	"github.com/spartan077/Taxi-Share/internal/admin/domain"
	rideout "github.com/spartan077/Taxi-Share/internal/ride/application/ports/out"
	ridedomain "github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"
)

// RideStatusService реализует RideStatusUseCase
type RideStatusService struct {
	statuses out.StatusRepository
	groups   rideout.GroupRepository
	log      *logger.Logger
	now      func() time.Time
}

func NewRideStatusService(statuses out.StatusRepository, groups rideout.GroupRepository, log *logger.Logger) *RideStatusService {
	return &RideStatusService{
		statuses: statuses,
		groups:   groups,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// UpdateStatus: read-modify-write без CAS, последний админ побеждает
func (s *RideStatusService) UpdateStatus(ctx context.Context, admin auth.Viewer, groupID string, u domain.StatusUpdate) (*domain.RideStatus, error) {
	if !admin.IsAdmin() {
		return nil, ridedomain.ErrForbidden
	}
	if u.IsEmpty() {
		return nil, fmt.Errorf("%w: %w", ridedomain.ErrInvalidInput, domain.ErrEmptyUpdate)
	}
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		return nil, err
	}

	current, err := s.statuses.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	next := u.Apply(current, groupID, admin.UserID, s.now())
	if err := s.statuses.Upsert(ctx, next); err != nil {
		return nil, err
	}

	s.log.Info(logger.Entry{
		Action:  "ride_status_updated",
		Message: groupID,
		GroupID: groupID,
		Additional: map[string]any{
			"updated_by":      admin.UserID,
			"first_call":      next.FirstCall,
			"follow_up":       next.FollowUp,
			"payment":         next.Payment,
			"advance_payment": next.AdvancePayment,
		},
	})
	return next, nil
}

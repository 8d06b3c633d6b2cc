package usecase

import (
	"context"
	"time"

	"github.com/spartan077/Taxi-Share/internal/admin/application/ports/in"
	rideout "github.com/spartan077/Taxi-Share/internal/ride/application/ports/out"
	ridedomain "github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"
)

// PricingManagerService реализует PricingManagerUseCase
type PricingManagerService struct {
	pricing rideout.PricingRepository
	log     *logger.Logger
	now     func() time.Time
}

func NewPricingManagerService(pricing rideout.PricingRepository, log *logger.Logger) *PricingManagerService {
	return &PricingManagerService{
		pricing: pricing,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *PricingManagerService) ListPricing(ctx context.Context) ([]*ridedomain.Pricing, error) {
	return s.pricing.List(ctx)
}

// UpdatePricing применяет изменения и валидирует результат целиком.
// Уже созданные запросы хранят копию car_details и не меняются.
func (s *PricingManagerService) UpdatePricing(ctx context.Context, admin auth.Viewer, pricingID string, u in.PricingUpdate) (*ridedomain.Pricing, error) {
	if !admin.IsAdmin() {
		return nil, ridedomain.ErrForbidden
	}
	p, err := s.pricing.FindByID(ctx, pricingID)
	if err != nil {
		return nil, err
	}

	next := *p
	if u.CarName != nil {
		next.CarName = *u.CarName
	}
	if u.CarType != nil {
		next.CarType = *u.CarType
	}
	if u.BasePrice != nil {
		next.BasePrice = *u.BasePrice
	}
	if u.Discount != nil {
		next.Discount = *u.Discount
	}
	if u.FinalPrice != nil {
		next.FinalPrice = *u.FinalPrice
	}
	if u.MaxPassengers != nil {
		next.MaxPassengers = *u.MaxPassengers
	}
	if u.DistanceKm != nil {
		next.DistanceKm = *u.DistanceKm
	}
	if u.TollIncluded != nil {
		next.TollIncluded = *u.TollIncluded
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()

	if err := s.pricing.Update(ctx, &next); err != nil {
		return nil, err
	}

	s.log.Info(logger.Entry{
		Action:  "pricing_updated",
		Message: next.RouteName,
		Additional: map[string]any{
			"pricing_id":     next.ID,
			"admin_id":       admin.UserID,
			"final_price":    next.FinalPrice,
			"max_passengers": next.MaxPassengers,
		},
	})
	return &next, nil
}

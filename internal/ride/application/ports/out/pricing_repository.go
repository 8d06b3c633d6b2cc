package out

import (
	"context"

	"github.com/spartan077/Taxi-Share/internal/ride/domain"
)

// PricingRepository — тарифы taxi_pricing (route × car)
type PricingRepository interface {
	FindByID(ctx context.Context, pricingID string) (*domain.Pricing, error)

	// ListByRoute — автомобили маршрута, дешевые первыми
	ListByRoute(ctx context.Context, routeName string) ([]*domain.Pricing, error)

	// List — все тарифы, по маршруту
	List(ctx context.Context) ([]*domain.Pricing, error)

	Update(ctx context.Context, p *domain.Pricing) error
}

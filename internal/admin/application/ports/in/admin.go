package in

import (
	"context"

	"github.com/spartan077/Taxi-Share/internal/admin/domain"
	ridedomain "github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
)

// PricingUpdate — частичное изменение тарифа; nil поле не меняется
type PricingUpdate struct {
	CarName       *string  `json:"car_name,omitempty"`
	CarType       *string  `json:"car_type,omitempty"`
	BasePrice     *float64 `json:"base_price,omitempty"`
	Discount      *float64 `json:"discount,omitempty"`
	FinalPrice    *float64 `json:"final_price,omitempty"`
	MaxPassengers *int     `json:"max_passengers,omitempty"`
	DistanceKm    *float64 `json:"distance_km,omitempty"`
	TollIncluded  *bool    `json:"toll_included,omitempty"`
}

// PricingManagerUseCase — тарифы для админки
type PricingManagerUseCase interface {
	ListPricing(ctx context.Context) ([]*ridedomain.Pricing, error)
	UpdatePricing(ctx context.Context, admin auth.Viewer, pricingID string, update PricingUpdate) (*ridedomain.Pricing, error)
}

// RideStatusUseCase — отметки first_call / follow_up / payment / advance_payment
type RideStatusUseCase interface {
	UpdateStatus(ctx context.Context, admin auth.Viewer, groupID string, update domain.StatusUpdate) (*domain.RideStatus, error)
}

// GroupOverview — строка админского списка групп
type GroupOverview struct {
	Group             *ridedomain.RideGroup   `json:"group"`
	Request           *ridedomain.RideRequest `json:"request"`
	EffectiveMembers  []string                `json:"effective_members"`
	RemainingCapacity int                     `json:"remaining_capacity"`
	PricePerPerson    int                     `json:"price_per_person"`
	Status            *domain.RideStatus      `json:"status,omitempty"`
}

// OverviewUseCase — все группы, новые первыми
type OverviewUseCase interface {
	Overview(ctx context.Context) ([]GroupOverview, error)
}

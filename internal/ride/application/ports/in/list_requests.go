package in

import (
	"context"

	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
)

// RequestView — запрос с группой и производными полями для списка
type RequestView struct {
	Request           *domain.RideRequest `json:"request"`
	Group             *domain.RideGroup   `json:"group,omitempty"`
	EffectiveMembers  []string            `json:"effective_members"`
	RemainingCapacity int                 `json:"remaining_capacity"`
	PricePerPerson    int                 `json:"price_per_person"`
	IsCreator         bool                `json:"is_creator"`
	IsMember          bool                `json:"is_member"`
	IsFull            bool                `json:"is_full"`
}

// ListRequestsUseCase — список запросов с учетом фильтров и видимости
type ListRequestsUseCase interface {
	ListRequests(ctx context.Context, viewer auth.Viewer, filter domain.Filter) ([]RequestView, error)
}

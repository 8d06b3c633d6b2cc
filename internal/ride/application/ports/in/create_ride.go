package in

import (
	"context"
	"time"

	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
)

// CreateRideInput — входные данные для создания запроса и его группы
type CreateRideInput struct {
	Source           string    `json:"source"`
	Destination      string    `json:"destination"`
	TimeSlot         time.Time `json:"time_slot"`
	SeatsRequired    int       `json:"seats_required"`
	GenderPreference string    `json:"gender_preference"`
	PricingID        string    `json:"pricing_id"` // выбранный автомобиль
}

// CreateRideOutput — созданные запрос и группа
type CreateRideOutput struct {
	Request        *domain.RideRequest `json:"request"`
	Group          *domain.RideGroup   `json:"group"`
	PricePerPerson int                 `json:"price_per_person"`
}

// CreateRideUseCase — создание запроса вместе с группой
type CreateRideUseCase interface {
	CreateRide(ctx context.Context, viewer auth.Viewer, input CreateRideInput) (*CreateRideOutput, error)
}

// CarOption — автомобиль маршрута с ценой на человека
type CarOption struct {
	*domain.Pricing
	PricePerPerson    int  `json:"price_per_person"`
	BasePerPerson     int  `json:"base_per_person"`
	SavingsPerPerson  int  `json:"savings_per_person"`
	RemainingForOther int  `json:"remaining_for_others"`
	Selectable        bool `json:"selectable"`
}

// ListCarsUseCase — выбор автомобиля для маршрута
type ListCarsUseCase interface {
	ListCars(ctx context.Context, source, destination string, seatsRequired int) ([]CarOption, error)
}

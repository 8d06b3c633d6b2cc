package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/spartan077/Taxi-Share/internal/model"
)

// CarDetails — снимок выбранной строки taxi_pricing на момент создания запроса
type CarDetails struct {
	PricingID     string  `json:"pricing_id"`
	CarName       string  `json:"car_name"`
	CarType       string  `json:"car_type"`
	BasePrice     float64 `json:"base_price"`
	Discount      float64 `json:"discount"`
	FinalPrice    float64 `json:"final_price"`
	MaxPassengers int     `json:"max_passengers"`
	DistanceKm    float64 `json:"distance_km"`
	TollIncluded  bool    `json:"toll_included"`
	RouteName     string  `json:"route_name"`
}

// RideRequest — опубликованное намерение пользователя поехать по маршруту
type RideRequest struct {
	ID               string     `json:"id" db:"id"`
	UserID           string     `json:"user_id" db:"user_id"`
	Source           string     `json:"source" db:"source"`
	Destination      string     `json:"destination" db:"destination"`
	TimeSlot         time.Time  `json:"time_slot" db:"time_slot"`
	SeatsRequired    int        `json:"seats_required" db:"seats_required"`
	GenderPreference string     `json:"gender_preference" db:"gender_preference"`
	Status           string     `json:"status" db:"status"`
	SelectedCar      string     `json:"selected_car" db:"selected_car"`
	CarDetails       CarDetails `json:"car_details" db:"car_details"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Validate проверяет поля нового запроса
func (r *RideRequest) Validate() error {
	switch {
	case r.UserID == "":
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	case strings.TrimSpace(r.Source) == "":
		return fmt.Errorf("%w: source is required", ErrInvalidInput)
	case strings.TrimSpace(r.Destination) == "":
		return fmt.Errorf("%w: destination is required", ErrInvalidInput)
	case r.TimeSlot.IsZero():
		return fmt.Errorf("%w: time_slot is required", ErrInvalidInput)
	case r.SeatsRequired <= 0:
		return fmt.Errorf("%w: seats_required must be positive", ErrInvalidInput)
	}
	switch r.GenderPreference {
	case model.GenderPrefAny, model.GenderPrefFemaleOnly:
	default:
		return fmt.Errorf("%w: unknown gender_preference %q", ErrInvalidInput, r.GenderPreference)
	}
	return nil
}

func (r *RideRequest) IsCancelled() bool { return r.Status == model.RequestStatusCancelled }

func (r *RideRequest) IsFemaleOnly() bool { return r.GenderPreference == model.GenderPrefFemaleOnly }

// Cancel — единственный переход статуса: pending → cancelled
func (r *RideRequest) Cancel(now time.Time) error {
	if r.IsCancelled() {
		return ErrAlreadyCancelled
	}
	r.Status = model.RequestStatusCancelled
	r.UpdatedAt = now
	return nil
}

// RouteName строит ключ маршрута taxi_pricing: "pune_to_mumbai"
func RouteName(source, destination string) string {
	name := strings.ToLower(strings.TrimSpace(source)) + "_to_" + strings.ToLower(strings.TrimSpace(destination))
	return strings.ReplaceAll(name, " ", "_")
}

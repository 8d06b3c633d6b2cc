package domain

import (
	"fmt"
	"math"
	"time"
)

// Pricing — строка тарифа: маршрут × автомобиль
type Pricing struct {
	ID            string    `json:"id" db:"id"`
	RouteName     string    `json:"route_name" db:"route_name"`
	CarName       string    `json:"car_name" db:"car_name"`
	CarType       string    `json:"car_type" db:"car_type"`
	BasePrice     float64   `json:"base_price" db:"base_price"`
	Discount      float64   `json:"discount" db:"discount"`
	FinalPrice    float64   `json:"final_price" db:"final_price"`
	MaxPassengers int       `json:"max_passengers" db:"max_passengers"`
	DistanceKm    float64   `json:"distance_km" db:"distance_km"`
	TollIncluded  bool      `json:"toll_included" db:"toll_included"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Validate проверяет значения, которые редактирует админ
func (p *Pricing) Validate() error {
	switch {
	case p.BasePrice < 0 || p.Discount < 0 || p.FinalPrice < 0:
		return fmt.Errorf("%w: prices must be non-negative", ErrInvalidInput)
	case p.MaxPassengers <= 0:
		return fmt.Errorf("%w: max_passengers must be positive", ErrInvalidInput)
	case p.CarName == "" || p.CarType == "":
		return fmt.Errorf("%w: car_name and car_type are required", ErrInvalidInput)
	}
	return nil
}

// CarDetails копирует тариф в запрос
func (p *Pricing) CarDetails() CarDetails {
	return CarDetails{
		PricingID:     p.ID,
		CarName:       p.CarName,
		CarType:       p.CarType,
		BasePrice:     p.BasePrice,
		Discount:      p.Discount,
		FinalPrice:    p.FinalPrice,
		MaxPassengers: p.MaxPassengers,
		DistanceKm:    p.DistanceKm,
		TollIncluded:  p.TollIncluded,
		RouteName:     p.RouteName,
	}
}

// PerPerson делит сумму на вместимость с округлением до целого
func PerPerson(amount float64, maxPassengers int) int {
	if maxPassengers <= 0 {
		return int(math.Round(amount))
	}
	return int(math.Round(amount / float64(maxPassengers)))
}

// PricePerPerson — цена на человека для выбранного автомобиля
func PricePerPerson(car CarDetails) int {
	return PerPerson(car.FinalPrice, car.MaxPassengers)
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/spartan077/Taxi-Share/internal/model"
	"github.com/spartan077/Taxi-Share/internal/ride/application/ports/in"
	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"
)

// CreateRide сохраняет запрос с выбранным автомобилем и создает его группу.
// total_capacity берется из max_passengers тарифа.
func (m *CapacityManager) CreateRide(ctx context.Context, viewer auth.Viewer, input in.CreateRideInput) (*in.CreateRideOutput, error) {
	if input.PricingID == "" {
		return nil, fmt.Errorf("%w: pricing_id is required", domain.ErrInvalidInput)
	}
	pref := input.GenderPreference
	if pref == "" {
		pref = model.GenderPrefAny
	}

	now := m.now()
	req := &domain.RideRequest{
		ID:               m.newID(),
		UserID:           viewer.UserID,
		Source:           strings.TrimSpace(input.Source),
		Destination:      strings.TrimSpace(input.Destination),
		TimeSlot:         input.TimeSlot,
		SeatsRequired:    input.SeatsRequired,
		GenderPreference: pref,
		Status:           model.RequestStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.IsFemaleOnly() && viewer.IsMale() {
		return nil, domain.ErrGenderRestricted
	}

	price, err := m.pricing.FindByID(ctx, input.PricingID)
	if err != nil {
		return nil, err
	}
	if price.RouteName != domain.RouteName(req.Source, req.Destination) {
		return nil, fmt.Errorf("%w: car %s is not priced for route %s", domain.ErrInvalidInput, price.ID, domain.RouteName(req.Source, req.Destination))
	}
	if req.SeatsRequired > price.MaxPassengers {
		m.record("create", domain.ErrInvalidCapacity)
		return nil, fmt.Errorf("%w: %s holds %d passengers", domain.ErrInvalidCapacity, price.CarName, price.MaxPassengers)
	}
	req.SelectedCar = price.CarName
	req.CarDetails = price.CarDetails()

	if err := m.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	g, err := m.CreateGroup(ctx, req, price.MaxPassengers)
	if err != nil {
		// без группы запрос бесполезен
		if delErr := m.requests.Delete(ctx, req.ID); delErr != nil {
			m.log.Error(logger.Entry{
				Action:    "compensate_request_delete_failed",
				Message:   delErr.Error(),
				RequestID: req.ID,
				Error:     &logger.ErrObj{Msg: delErr.Error()},
			})
		}
		return nil, err
	}

	m.log.WithContext(req.ID, g.ID).Info(logger.Entry{
		Action:  "ride_request_created",
		Message: fmt.Sprintf("%s to %s", req.Source, req.Destination),
		Additional: map[string]any{
			"user_id":        req.UserID,
			"car":            req.SelectedCar,
			"seats_required": req.SeatsRequired,
		},
	})

	return &in.CreateRideOutput{
		Request:        req,
		Group:          g,
		PricePerPerson: domain.PricePerPerson(req.CarDetails),
	}, nil
}

// ListCars — автомобили маршрута, дешевые первыми
func (m *CapacityManager) ListCars(ctx context.Context, source, destination string, seatsRequired int) ([]in.CarOption, error) {
	if strings.TrimSpace(source) == "" || strings.TrimSpace(destination) == "" {
		return nil, fmt.Errorf("%w: source and destination are required", domain.ErrInvalidInput)
	}
	rows, err := m.pricing.ListByRoute(ctx, domain.RouteName(source, destination))
	if err != nil {
		return nil, err
	}
	options := make([]in.CarOption, 0, len(rows))
	for _, p := range rows {
		options = append(options, in.CarOption{
			Pricing:           p,
			PricePerPerson:    domain.PerPerson(p.FinalPrice, p.MaxPassengers),
			BasePerPerson:     domain.PerPerson(p.BasePrice, p.MaxPassengers),
			SavingsPerPerson:  domain.PerPerson(p.Discount, p.MaxPassengers),
			RemainingForOther: max(p.MaxPassengers-seatsRequired, 0),
			Selectable:        seatsRequired <= p.MaxPassengers,
		})
	}
	return options, nil
}

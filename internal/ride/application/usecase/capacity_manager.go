package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spartan077/Taxi-Share/internal/model"
	"github.com/spartan077/Taxi-Share/internal/ride/application/ports/out"
	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/config"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/google/uuid"
)

// CapacityManager — все мутации состава и счетчиков RideGroup.
//
// Каждая мутация: прочитать группу → проверить в domain → записать через
// UpdateIfVersion. Проигранный CAS повторяется до MaxAttempts раз, затем
// ErrConflict. Уведомления и события уходят в фоне и не влияют на результат.
type CapacityManager struct {
	requests  out.RequestRepository
	groups    out.GroupRepository
	pricing   out.PricingRepository
	notifier  out.NotificationSink
	publisher out.EventPublisher
	cfg       config.CapacityConfig
	log       *logger.Logger

	now     func() time.Time
	newID   func() string
	pending sync.WaitGroup
}

// NewCapacityManager создает менеджер вместимости
func NewCapacityManager(
	requests out.RequestRepository,
	groups out.GroupRepository,
	pricing out.PricingRepository,
	notifier out.NotificationSink,
	publisher out.EventPublisher,
	cfg config.CapacityConfig,
	log *logger.Logger,
) *CapacityManager {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &CapacityManager{
		requests:  requests,
		groups:    groups,
		pricing:   pricing,
		notifier:  notifier,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Wait блокируется, пока не завершатся фоновые уведомления и события
func (m *CapacityManager) Wait() {
	m.pending.Wait()
}

// CreateGroup создает группу для уже сохраненного запроса
func (m *CapacityManager) CreateGroup(ctx context.Context, req *domain.RideRequest, maxPassengers int) (*domain.RideGroup, error) {
	g, err := domain.NewGroup(m.newID(), req, maxPassengers, m.now())
	if err != nil {
		m.record("create", err)
		return nil, err
	}
	if err := m.groups.Create(ctx, g); err != nil {
		m.record("create", err)
		return nil, err
	}
	m.record("create", nil)

	m.log.WithContext(req.ID, g.ID).Info(logger.Entry{
		Action:  "group_created",
		Message: fmt.Sprintf("%d seats, %d remaining", g.TotalCapacity, g.RemainingCapacity),
	})
	m.publish(g, model.EventGroupCreated, func(e *domain.GroupEvent) { e.ActorID = req.UserID })
	return g, nil
}

// Join добавляет зрителя в группу запроса
func (m *CapacityManager) Join(ctx context.Context, viewer auth.Viewer, requestID string) (*domain.RideGroup, error) {
	req, g, err := m.mutate(ctx, "join", requestID, func(req *domain.RideRequest, g *domain.RideGroup) (*domain.RideGroup, error) {
		if err := domain.CanJoin(req, viewer); err != nil {
			return nil, err
		}
		return g.Join(req.UserID, viewer.UserID, m.now())
	})
	if err != nil {
		return nil, err
	}

	m.notify(req.UserID, fmt.Sprintf("A new member joined your ride from %s to %s", req.Source, req.Destination), model.NotifyMemberJoined)
	m.publish(g, model.EventMemberJoined, func(e *domain.GroupEvent) {
		e.UserID = viewer.UserID
		e.ActorID = viewer.UserID
	})
	return g, nil
}

// Leave — добровольный выход участника
func (m *CapacityManager) Leave(ctx context.Context, viewer auth.Viewer, requestID string) (*domain.RideGroup, error) {
	req, g, err := m.remove(ctx, "leave", requestID, viewer.UserID, viewer.UserID, model.RemovalReasonSelf)
	if err != nil {
		return nil, err
	}
	m.notify(req.UserID, fmt.Sprintf("A member left your ride from %s to %s", req.Source, req.Destination), model.NotifyMemberLeft)
	return g, nil
}

// RemoveMember — админ исключает участника
func (m *CapacityManager) RemoveMember(ctx context.Context, admin auth.Viewer, requestID, userID string) (*domain.RideGroup, error) {
	if !admin.IsAdmin() {
		m.record("remove", domain.ErrForbidden)
		return nil, domain.ErrForbidden
	}
	req, g, err := m.remove(ctx, "remove", requestID, userID, admin.UserID, model.RemovalReasonAdmin)
	if err != nil {
		return nil, err
	}
	m.notify(userID, fmt.Sprintf("You have been removed from the ride %s to %s", req.Source, req.Destination), model.NotifyRemovedFromRide)
	return g, nil
}

func (m *CapacityManager) remove(ctx context.Context, op, requestID, userID, actorID, reason string) (*domain.RideRequest, *domain.RideGroup, error) {
	req, g, err := m.mutate(ctx, op, requestID, func(_ *domain.RideRequest, g *domain.RideGroup) (*domain.RideGroup, error) {
		return g.Leave(userID, m.now())
	})
	if err != nil {
		return nil, nil, err
	}
	m.publish(g, model.EventMemberRemoved, func(e *domain.GroupEvent) {
		e.UserID = userID
		e.ActorID = actorID
		e.Reason = reason
	})
	return req, g, nil
}

// Resize — админский override: оба значения записываются как есть.
// Дальнейшие Join/Leave считают уже от них.
func (m *CapacityManager) Resize(ctx context.Context, admin auth.Viewer, requestID string, newTotal, newRemaining int) (*domain.RideGroup, error) {
	if !admin.IsAdmin() {
		m.record("resize", domain.ErrForbidden)
		return nil, domain.ErrForbidden
	}

	var before domain.RideGroup
	req, g, err := m.mutate(ctx, "resize", requestID, func(_ *domain.RideRequest, g *domain.RideGroup) (*domain.RideGroup, error) {
		before = *g
		return g.Resize(newTotal, newRemaining, m.now())
	})
	if err != nil {
		return nil, err
	}

	capacityOverrides.Inc()
	m.log.WithContext(req.ID, g.ID).Warn(logger.Entry{
		Action:  "capacity_override",
		Message: "administrator overwrote group capacity",
		Additional: map[string]any{
			"admin_id":            admin.UserID,
			"old_total":           before.TotalCapacity,
			"old_remaining":       before.RemainingCapacity,
			"new_total":           g.TotalCapacity,
			"new_remaining":       g.RemainingCapacity,
			"members":             len(g.Members),
			"derived_from_roster": g.IsDerived(req.SeatsRequired),
		},
	})
	m.publish(g, model.EventGroupResized, func(e *domain.GroupEvent) { e.ActorID = admin.UserID })
	return g, nil
}

const defaultNotifyTimeout = 5 * time.Second

type mutation func(req *domain.RideRequest, g *domain.RideGroup) (*domain.RideGroup, error)

// mutate выполняет read-validate-write с CAS по version
func (m *CapacityManager) mutate(ctx context.Context, op, requestID string, fn mutation) (*domain.RideRequest, *domain.RideGroup, error) {
	log := m.log.WithContext(requestID, "")

	for attempt := 1; attempt <= m.cfg.MaxAttempts; attempt++ {
		// группа читается первой: отмена запроса сдвигает ее version,
		// поэтому устаревший статус запроса не переживет CAS
		g, err := m.groups.FindByRequestID(ctx, requestID)
		if err != nil {
			m.record(op, err)
			return nil, nil, err
		}
		req, err := m.requests.FindByID(ctx, requestID)
		if err != nil {
			m.record(op, err)
			return nil, nil, err
		}

		next, err := fn(req, g)
		if err != nil {
			m.record(op, err)
			log.Debug(logger.Entry{Action: op + "_rejected", Message: err.Error(), GroupID: g.ID})
			return nil, nil, err
		}

		ok, err := m.groups.UpdateIfVersion(ctx, next, g.Version)
		if err != nil {
			m.record(op, err)
			return nil, nil, err
		}
		if ok {
			m.record(op, nil)
			log.Info(logger.Entry{
				Action:  "group_" + op,
				Message: fmt.Sprintf("%d/%d seats remaining", next.RemainingCapacity, next.TotalCapacity),
				GroupID: next.ID,
				Additional: map[string]any{
					"members": len(next.Members),
					"version": next.Version,
					"attempt": attempt,
				},
			})
			return req, next, nil
		}

		casConflicts.WithLabelValues(op).Inc()
		log.Debug(logger.Entry{
			Action:  "group_cas_conflict",
			Message: op,
			GroupID: g.ID,
			Additional: map[string]any{
				"attempt":          attempt,
				"expected_version": g.Version,
			},
		})
		if attempt < m.cfg.MaxAttempts {
			if err := sleepCtx(ctx, m.cfg.RetryBackoff()*time.Duration(attempt)); err != nil {
				m.record(op, err)
				return nil, nil, err
			}
		}
	}

	m.record(op, domain.ErrConflict)
	log.Warn(logger.Entry{
		Action:  "group_conflict",
		Message: fmt.Sprintf("%s gave up after %d attempts", op, m.cfg.MaxAttempts),
	})
	return nil, nil, fmt.Errorf("%s: %w", op, domain.ErrConflict)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// background запускает побочный эффект после коммита.
// Контекст отвязан от запроса: клиент мог уже отключиться.
func (m *CapacityManager) background(fn func(ctx context.Context)) {
	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		timeout := m.cfg.NotifyTimeout()
		if timeout <= 0 {
			timeout = defaultNotifyTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		fn(ctx)
	}()
}

func (m *CapacityManager) notify(recipientID, message, category string) {
	if m.notifier == nil || recipientID == "" {
		return
	}
	m.background(func(ctx context.Context) {
		if err := m.notifier.Notify(ctx, recipientID, message, category); err != nil {
			sideEffectFailures.WithLabelValues("notification").Inc()
			m.log.Error(logger.Entry{
				Action:  "notification_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
				Additional: map[string]any{
					"recipient_id": recipientID,
					"category":     category,
				},
			})
		}
	})
}

func (m *CapacityManager) publish(g *domain.RideGroup, eventType string, decorate func(e *domain.GroupEvent)) {
	if m.publisher == nil {
		return
	}
	event := domain.NewGroupEvent(m.newID(), eventType, g, m.now())
	if decorate != nil {
		decorate(&event)
	}
	m.background(func(ctx context.Context) {
		if err := m.publisher.PublishGroupEvent(ctx, event); err != nil {
			sideEffectFailures.WithLabelValues("event").Inc()
			m.log.Error(logger.Entry{
				Action:    "group_event_publish_failed",
				Message:   err.Error(),
				RequestID: event.RideRequestID,
				GroupID:   event.GroupID,
				Error:     &logger.ErrObj{Msg: err.Error()},
				Additional: map[string]any{
					"event_type": eventType,
				},
			})
		}
	})
}

func (m *CapacityManager) record(op string, err error) {
	capacityOps.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrGroupFull):
		return "group_full"
	case errors.Is(err, domain.ErrAlreadyMember):
		return "already_member"
	case errors.Is(err, domain.ErrNotAMember):
		return "not_a_member"
	case errors.Is(err, domain.ErrInvalidCapacity):
		return "invalid_capacity"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}

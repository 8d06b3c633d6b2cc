package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/spartan077/Taxi-Share/internal/model"
	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/auth"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"
)

// Cancel переводит запрос в cancelled. Состав и счетчики группы не меняются,
// но version группы растет: Join, прочитавший запрос до отмены, проиграет CAS.
// Уведомление получает каждый из effective members.
func (m *CapacityManager) Cancel(ctx context.Context, viewer auth.Viewer, requestID string) (*domain.RideRequest, error) {
	req, err := m.requests.FindByID(ctx, requestID)
	if err != nil {
		m.record("cancel", err)
		return nil, err
	}
	if req.UserID != viewer.UserID && !viewer.IsAdmin() {
		m.record("cancel", domain.ErrForbidden)
		return nil, domain.ErrForbidden
	}
	if err := req.Cancel(m.now()); err != nil {
		m.record("cancel", err)
		return nil, err
	}
	// статус проверяется еще раз в самой записи: из параллельных отмен проходит одна
	ok, err := m.requests.CancelPending(ctx, req.ID, req.UpdatedAt)
	if err != nil {
		m.record("cancel", err)
		return nil, err
	}
	if !ok {
		m.record("cancel", domain.ErrAlreadyCancelled)
		return nil, domain.ErrAlreadyCancelled
	}
	m.record("cancel", nil)

	log := m.log.WithContext(req.ID, "")
	log.Info(logger.Entry{
		Action:  "ride_cancelled",
		Message: fmt.Sprintf("%s to %s", req.Source, req.Destination),
		Additional: map[string]any{
			"cancelled_by": viewer.UserID,
			"by_admin":     viewer.IsAdmin(),
		},
	})

	// группа нужна только для рассылки; ее отсутствие отмену не ломает
	g, err := m.groups.FindByRequestID(ctx, req.ID)
	if err != nil {
		log.Warn(logger.Entry{Action: "cancel_group_lookup_failed", Message: err.Error()})
		return req, nil
	}

	message := fmt.Sprintf("The ride from %s to %s has been cancelled", req.Source, req.Destination)
	if viewer.IsAdmin() && viewer.UserID != req.UserID {
		message += " by admin"
	}
	for _, userID := range domain.EffectiveMembers(g, req) {
		m.notify(userID, message, model.NotifyRideCancelled)
	}
	m.publish(g, model.EventRideCancelled, func(e *domain.GroupEvent) { e.ActorID = viewer.UserID })
	return req, nil
}

// DeleteGroup удаляет группу, затем запрос. Если группа не удалилась,
// запрос не трогаем; ошибка удаления запроса после группы возвращается как есть.
func (m *CapacityManager) DeleteGroup(ctx context.Context, admin auth.Viewer, requestID string) error {
	if !admin.IsAdmin() {
		m.record("delete", domain.ErrForbidden)
		return domain.ErrForbidden
	}

	req, err := m.requests.FindByID(ctx, requestID)
	if err != nil {
		m.record("delete", err)
		return err
	}
	g, err := m.groups.FindByRequestID(ctx, requestID)
	if err != nil {
		m.record("delete", err)
		return err
	}

	log := m.log.WithContext(req.ID, g.ID)

	if err := m.groups.Delete(ctx, g.ID); err != nil {
		m.record("delete", err)
		log.Error(logger.Entry{
			Action:  "delete_group_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return fmt.Errorf("delete group: %w", err)
	}

	if err := m.requests.Delete(ctx, req.ID); err != nil {
		m.record("delete", err)
		log.Error(logger.Entry{
			Action:  "delete_request_after_group_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return errors.Join(ErrPartialDelete, fmt.Errorf("delete request: %w", err))
	}

	m.record("delete", nil)
	log.Info(logger.Entry{
		Action:  "group_deleted",
		Message: fmt.Sprintf("%s to %s", req.Source, req.Destination),
		Additional: map[string]any{
			"admin_id": admin.UserID,
			"members":  len(g.Members),
		},
	})
	m.publish(g, model.EventGroupDeleted, func(e *domain.GroupEvent) { e.ActorID = admin.UserID })
	return nil
}

// ErrPartialDelete — группа удалена, запрос остался
var ErrPartialDelete = errors.New("group deleted but ride request remains")

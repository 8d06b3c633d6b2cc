package out_amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spartan077/Taxi-Share/internal/model"
	"github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"
	"github.com/spartan077/Taxi-Share/internal/shared/mq"
)

// Publisher — то, что нужно от *mq.RabbitMQ
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
}

// GroupEventPublisher публикует события групп в group_topic
type GroupEventPublisher struct {
	mq  Publisher
	log *logger.Logger
}

// NewGroupEventPublisher создает новый publisher
func NewGroupEventPublisher(mqConn Publisher, log *logger.Logger) *GroupEventPublisher {
	return &GroupEventPublisher{
		mq:  mqConn,
		log: log,
	}
}

// PublishGroupEvent публикует событие группы в RabbitMQ
func (p *GroupEventPublisher) PublishGroupEvent(ctx context.Context, event domain.GroupEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal group event: %w", err)
	}

	routingKey := RoutingKey(event.EventType)

	if err := p.mq.Publish(ctx, mq.ExchangeGroupTopic, routingKey, payload); err != nil {
		p.log.Error(logger.Entry{
			Action:    "publish_group_event_failed",
			Message:   err.Error(),
			RequestID: event.RideRequestID,
			GroupID:   event.GroupID,
			Error:     &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"event_type":  event.EventType,
				"routing_key": routingKey,
			},
		})
		return fmt.Errorf("publish to rabbitmq: %w", err)
	}

	p.log.Debug(logger.Entry{
		Action:    "group_event_published",
		Message:   event.EventType,
		RequestID: event.RideRequestID,
		GroupID:   event.GroupID,
		Additional: map[string]any{
			"routing_key": routingKey,
		},
	})
	return nil
}

// RoutingKey возвращает routing key для типа события
func RoutingKey(eventType string) string {
	switch eventType {
	case model.EventGroupCreated:
		return "group.created"
	case model.EventMemberJoined:
		return "group.member_joined"
	case model.EventMemberRemoved:
		return "group.member_removed"
	case model.EventGroupResized:
		return "group.resized"
	case model.EventRideCancelled:
		return "group.ride_cancelled"
	case model.EventGroupDeleted:
		return "group.deleted"
	default:
		return "group.event"
	}
}

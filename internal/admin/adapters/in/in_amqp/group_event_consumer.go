package inamqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spartan077/Taxi-Share/internal/model"
	ridedomain "github.com/spartan077/Taxi-Share/internal/ride/domain"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"
	"github.com/spartan077/Taxi-Share/internal/shared/mq"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	adminEventsQueue   = "admin_group_events"
	adminEventsPattern = "group.*"
)

var errMalformedEvent = errors.New("malformed group event")

// RolePusher — то, что нужно от ws.Hub
type RolePusher interface {
	SendToRoleJSON(role string, data any) (int, error)
}

// AdminFeedMessage — то, что уходит в websocket админам
type AdminFeedMessage struct {
	Kind  string                `json:"kind"`
	Event ridedomain.GroupEvent `json:"event"`
}

// GroupEventConsumer читает group.* и транслирует события подключенным админам
type GroupEventConsumer struct {
	mqConn *mq.RabbitMQ
	pusher RolePusher
	log    *logger.Logger
}

func NewGroupEventConsumer(mqConn *mq.RabbitMQ, pusher RolePusher, log *logger.Logger) *GroupEventConsumer {
	return &GroupEventConsumer{mqConn: mqConn, pusher: pusher, log: log}
}

// Start блокируется до отмены ctx или закрытия канала доставки
func (c *GroupEventConsumer) Start(ctx context.Context) error {
	ch := c.mqConn.Channel()
	if ch == nil {
		return mq.ErrChannelUnavailable
	}

	queue, err := ch.QueueDeclare(
		adminEventsQueue, // name
		true,             // durable
		false,            // auto-delete
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(queue.Name, adminEventsPattern, mq.ExchangeGroupTopic, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	msgs, err := ch.Consume(
		queue.Name, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.log.Info(logger.Entry{
		Action:  "group_event_consumer_started",
		Message: fmt.Sprintf("listening on %s (queue: %s, pattern: %s)", mq.ExchangeGroupTopic, adminEventsQueue, adminEventsPattern),
	})

	for {
		select {
		case <-ctx.Done():
			c.log.Info(logger.Entry{Action: "group_event_consumer_stopping", Message: "context cancelled"})
			return ctx.Err()

		case msg, ok := <-msgs:
			if !ok {
				c.log.Warn(logger.Entry{Action: "group_event_consumer_channel_closed", Message: "message channel closed"})
				return errors.New("message channel closed")
			}
			c.dispatch(msg)
		}
	}
}

func (c *GroupEventConsumer) dispatch(msg amqp.Delivery) {
	if err := c.Handle(msg.Body); err != nil {
		c.log.Error(logger.Entry{
			Action:  "handle_group_event_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"routing_key": msg.RoutingKey,
			},
		})
		// битое сообщение не переотправляем
		_ = msg.Nack(false, false)
		return
	}
	_ = msg.Ack(false)
}

// Handle разбирает событие и пушит его админам.
// Ошибка только для битого сообщения: офлайн админы это не ошибка.
func (c *GroupEventConsumer) Handle(body []byte) error {
	var event ridedomain.GroupEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %w", errMalformedEvent, err)
	}
	if event.EventType == "" || event.GroupID == "" {
		return fmt.Errorf("%w: event_type and group_id are required", errMalformedEvent)
	}

	delivered, err := c.pusher.SendToRoleJSON(model.RoleAdmin, AdminFeedMessage{Kind: "group_event", Event: event})
	if err != nil {
		c.log.Warn(logger.Entry{
			Action:    "admin_feed_push_failed",
			Message:   err.Error(),
			RequestID: event.RideRequestID,
			GroupID:   event.GroupID,
		})
		return nil
	}
	c.log.Debug(logger.Entry{
		Action:    "admin_feed_pushed",
		Message:   event.EventType,
		RequestID: event.RideRequestID,
		GroupID:   event.GroupID,
		Additional: map[string]any{
			"delivered": delivered,
		},
	})
	return nil
}

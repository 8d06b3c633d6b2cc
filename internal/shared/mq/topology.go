package mq

import (
	"context"
	"fmt"

	"github.com/spartan077/Taxi-Share/internal/shared/logger"
)

const (
	// ExchangeGroupTopic — события ride-групп
	ExchangeGroupTopic = "group_topic"
)

// RoutingKeys — очереди group_topic, имя очереди совпадает с routing key
var RoutingKeys = []string{
	"group.created",
	"group.member_joined",
	"group.member_removed",
	"group.resized",
	"group.ride_cancelled",
	"group.deleted",
}

// SetupTopology создает exchange, очереди и bindings
func SetupTopology(ctx context.Context, mq *RabbitMQ, log *logger.Logger) error {
	ch := mq.Channel()
	if ch == nil {
		return ErrChannelUnavailable
	}

	if err := ch.ExchangeDeclare(
		ExchangeGroupTopic, // name
		"topic",            // type
		true,               // durable
		false,              // auto-deleted
		false,              // internal
		false,              // no-wait
		nil,                // args
	); err != nil {
		return fmt.Errorf("declare %s: %w", ExchangeGroupTopic, err)
	}

	for _, q := range RoutingKeys {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
		if err := ch.QueueBind(q, q, ExchangeGroupTopic, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q, err)
		}
	}

	log.Info(logger.Entry{
		Action:  "topology_setup_complete",
		Message: fmt.Sprintf("%s with %d queues", ExchangeGroupTopic, len(RoutingKeys)),
	})
	return nil
}

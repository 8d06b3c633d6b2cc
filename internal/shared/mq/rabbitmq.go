package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spartan077/Taxi-Share/internal/shared/config"
	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrChannelUnavailable — канал закрыт и переподключение еще не удалось
var ErrChannelUnavailable = errors.New("rabbitmq channel not available")

// RabbitMQ представляет подключение к RabbitMQ с автореконнектом
type RabbitMQ struct {
	url    string
	conn   *amqp.Connection
	ch     *amqp.Channel
	log    *logger.Logger
	mu     sync.RWMutex
	closed bool

	maxRetries int
	retryDelay time.Duration
}

// NewRabbitMQ создает подключение к RabbitMQ с retry
func NewRabbitMQ(ctx context.Context, cfg config.MQConfig, log *logger.Logger) (*RabbitMQ, error) {
	mq := &RabbitMQ{
		url:        cfg.AMQPURL(),
		log:        log,
		maxRetries: 10,
		retryDelay: time.Second,
	}

	if err := mq.dialWithRetry(ctx); err != nil {
		return nil, err
	}

	log.Info(logger.Entry{
		Action:  "rabbitmq_connected",
		Message: fmt.Sprintf("connected to %s:%d", cfg.Host, cfg.Port),
	})
	return mq, nil
}

// dialWithRetry: экспоненциальная задержка x1.5, потолок 30s
func (mq *RabbitMQ) dialWithRetry(ctx context.Context) error {
	delay := mq.retryDelay
	var lastErr error

	for attempt := 1; attempt <= mq.maxRetries; attempt++ {
		if lastErr = mq.connect(); lastErr == nil {
			return nil
		}

		mq.log.Warn(logger.Entry{
			Action:  "rabbitmq_connection_attempt_failed",
			Message: lastErr.Error(),
			Additional: map[string]any{
				"attempt":      attempt,
				"max_retries":  mq.maxRetries,
				"retry_in_sec": delay.Seconds(),
			},
		})

		if attempt == mq.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay = time.Duration(float64(delay) * 1.5)
			if delay > 30*time.Second {
				delay = 30 * time.Second
			}
		}
	}
	return fmt.Errorf("failed to connect after %d attempts: %w", mq.maxRetries, lastErr)
}

func (mq *RabbitMQ) connect() error {
	conn, err := amqp.Dial(mq.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	mq.mu.Lock()
	mq.conn = conn
	mq.ch = ch
	mq.mu.Unlock()

	go mq.watch(conn.NotifyClose(make(chan *amqp.Error, 1)))
	return nil
}

// watch переподключается, если брокер закрыл соединение
func (mq *RabbitMQ) watch(closeCh <-chan *amqp.Error) {
	amqpErr, ok := <-closeCh
	if !ok {
		return // штатное закрытие
	}

	mq.mu.Lock()
	if mq.closed {
		mq.mu.Unlock()
		return
	}
	mq.ch = nil
	mq.mu.Unlock()

	mq.log.Error(logger.Entry{
		Action:  "rabbitmq_connection_lost",
		Message: amqpErr.Error(),
		Error:   &logger.ErrObj{Msg: amqpErr.Error()},
	})

	if err := mq.dialWithRetry(context.Background()); err != nil {
		mq.log.Error(logger.Entry{
			Action:  "rabbitmq_reconnect_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return
	}
	mq.log.Info(logger.Entry{Action: "rabbitmq_reconnected", Message: "connection restored"})
}

// Channel возвращает активный канал
func (mq *RabbitMQ) Channel() *amqp.Channel {
	mq.mu.RLock()
	defer mq.mu.RUnlock()
	return mq.ch
}

// Publish публикует сообщение в exchange
func (mq *RabbitMQ) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	ch := mq.Channel()
	if ch == nil {
		return ErrChannelUnavailable
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return ch.PublishWithContext(
		publishCtx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

// Close закрывает подключение к RabbitMQ
func (mq *RabbitMQ) Close() {
	mq.mu.Lock()
	defer mq.mu.Unlock()

	if mq.closed {
		return
	}
	mq.closed = true

	if mq.ch != nil {
		_ = mq.ch.Close()
	}
	if mq.conn != nil {
		_ = mq.conn.Close()
	}

	mq.log.Info(logger.Entry{Action: "rabbitmq_closed", Message: "connection closed"})
}

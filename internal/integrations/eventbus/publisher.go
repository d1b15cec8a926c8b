// Package eventbus публикует события жизненного цикла бронирований в RabbitMQ.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// channel подмножество *amqp.Channel, используемое издателем
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher издатель событий поверх одного AMQP канала.
// Канал amqp091 не потокобезопасен для публикации, поэтому вызовы сериализуются.
type Publisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	ch      channel
	timeout time.Duration
	closed  bool
}

// NewPublisher подключается к брокеру и объявляет durable очереди событий
func NewPublisher(url string, timeout time.Duration) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %w", ErrConnect, err)
	}

	p, err := newPublisher(ch, timeout)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn

	return p, nil
}

func newPublisher(ch channel, timeout time.Duration) (*Publisher, error) {
	for _, queue := range []string{QueueReservationConfirmed, QueueReservationCancelled} {
		if _, err := ch.QueueDeclare(
			queue,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,
		); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrDeclareQueue, queue, err)
		}
	}

	return &Publisher{ch: ch, timeout: timeout}, nil
}

// PublishReservationConfirmed публикует событие reservation.confirmed
func (p *Publisher) PublishReservationConfirmed(ctx context.Context, event ReservationConfirmed) error {
	return p.publish(ctx, QueueReservationConfirmed, event)
}

// PublishReservationCancelled публикует событие reservation.cancelled
func (p *Publisher) PublishReservationCancelled(ctx context.Context, event ReservationCancelled) error {
	return p.publish(ctx, QueueReservationCancelled, event)
}

func (p *Publisher) publish(ctx context.Context, queue string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMarshal, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	err = p.ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublish, queue, err)
	}

	return nil
}

// Close закрывает канал и соединение
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Noop издатель, отбрасывающий события. Используется, когда брокер отключен в конфиге.
type Noop struct{}

// PublishReservationConfirmed ничего не делает
func (Noop) PublishReservationConfirmed(context.Context, ReservationConfirmed) error { return nil }

// PublishReservationCancelled ничего не делает
func (Noop) PublishReservationCancelled(context.Context, ReservationCancelled) error { return nil }

// Close ничего не делает
func (Noop) Close() error { return nil }

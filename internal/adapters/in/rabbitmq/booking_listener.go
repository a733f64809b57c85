package rabbitmq

import (
	"context"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cosmicjs/appointment-scheduler/internal/config"
	"github.com/cosmicjs/appointment-scheduler/internal/core/ports/in"
	"github.com/cosmicjs/appointment-scheduler/internal/core/ports/out"
)

// BookingEventListener drops the availability snapshot whenever another
// writer touches the store's booking objects. Without it a cached schedule
// only refreshes when this service writes.
type BookingEventListener struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	useCase in.BookingUseCase
	cfg     *config.Config
	logger  out.LoggerPort
}

type BookingEventKind string

const (
	BookingEventCreated BookingEventKind = "created"
	BookingEventDeleted BookingEventKind = "deleted"
)

type bookingEventRoutingKey struct {
	Source   string
	Receiver string
	Resource string
	Kind     BookingEventKind
}

func NewBookingEventListener(useCase in.BookingUseCase, cfg *config.Config, logger out.LoggerPort) (*BookingEventListener, error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, listener will not be started",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMQ.URL,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	return &BookingEventListener{
		conn:    conn,
		channel: channel,
		useCase: useCase,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (l *BookingEventListener) Start(ctx context.Context) error {
	queue, err := l.channel.QueueDeclare(
		l.cfg.RabbitMQ.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	err = l.channel.QueueBind(
		queue.Name,
		l.cfg.RabbitMQ.BindKey,
		l.cfg.RabbitMQ.Exchange,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	msgs, err := l.channel.Consume(
		queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if err := l.processMessage(ctx, msg); err != nil {
					l.logger.Warn("rabbitmq.message.rejected", out.LogFields{
						"routingKey": msg.RoutingKey,
						"error":      err.Error(),
					})
					msg.Nack(false, false)
					continue
				}
				msg.Ack(false)
			}
		}
	}()

	l.logger.Info("rabbitmq.queue.started", out.LogFields{
		"queue": queue.Name,
	})

	return nil
}

func (l *BookingEventListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}

// Example routing keys:
// cosmic.appointment-scheduler.booking.created
// cosmic.appointment-scheduler.booking.deleted
func parseBookingEventRoutingKey(routingKey string) (bookingEventRoutingKey, error) {
	parts := strings.Split(routingKey, ".")
	if len(parts) < 4 {
		return bookingEventRoutingKey{}, fmt.Errorf("invalid routing key: %s", routingKey)
	}

	return bookingEventRoutingKey{
		Source:   parts[0],
		Receiver: parts[1],
		Resource: parts[2],
		Kind:     BookingEventKind(parts[3]),
	}, nil
}

func (l *BookingEventListener) processMessage(ctx context.Context, msg amqp.Delivery) error {
	key, err := parseBookingEventRoutingKey(msg.RoutingKey)
	if err != nil {
		return err
	}

	if key.Resource != "booking" {
		// Not ours; ack and move on.
		return nil
	}

	switch key.Kind {
	case BookingEventCreated, BookingEventDeleted:
		l.logger.Info("rabbitmq.booking_event", out.LogFields{
			"kind": string(key.Kind),
		})
		l.useCase.InvalidateAvailability(ctx)
		return nil
	default:
		return fmt.Errorf("unknown booking event kind: %s", key.Kind)
	}
}

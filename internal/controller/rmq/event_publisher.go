package rmq

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"audio_conversion/config"
	"audio_conversion/entity"
	"audio_conversion/pkg/logger"
	"audio_conversion/pkg/rabbitmq"
)

// ErrPublisherClosed is returned for events offered after Close.
var ErrPublisherClosed = errors.New("event publisher closed")

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type message struct {
	key    string
	corrID string
	body   []byte
}

// EventPublisher announces finished conversions on a topic exchange.
// Events are queued and sent by a single background goroutine, so a slow
// broker never blocks the caller for longer than its context allows.
type EventPublisher struct {
	conn     *amqp.Connection
	amqpChan channel
	exchange string
	l        logger.Interface

	queue     chan message
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ entity.EventPublisher = (*EventPublisher)(nil)

// NewEventPublisher dials the broker and declares the exchange.
func NewEventPublisher(cfg config.RMQ, l logger.Interface) (*EventPublisher, error) {
	mqConn, err := rabbitmq.NewRabbitMQConn(cfg.URL)
	if err != nil {
		return nil, err
	}
	amqpChan, err := mqConn.Channel()
	if err != nil {
		mqConn.Close()
		return nil, errors.Wrap(err, "amqpConn.Channel")
	}

	p, err := newEventPublisher(amqpChan, cfg.Exchange, queueSize, l)
	if err != nil {
		mqConn.Close()
		return nil, err
	}
	p.conn = mqConn

	return p, nil
}

func newEventPublisher(ch channel, exchange string, size int, l logger.Interface) (*EventPublisher, error) {
	p := &EventPublisher{
		amqpChan: ch,
		exchange: exchange,
		l:        l,
		queue:    make(chan message, size),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if err := p.setupExchange(); err != nil {
		return nil, err
	}

	go p.loop()

	return p, nil
}

func (p *EventPublisher) setupExchange() error {
	p.l.Info("Declaring exchange: %s", p.exchange)
	err := p.amqpChan.ExchangeDeclare(
		p.exchange,
		exchangeKind,
		exchangeDurable,
		exchangeAutoDelete,
		exchangeInternal,
		exchangeNoWait,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "Error ch.ExchangeDeclare")
	}
	return nil
}

// PublishConversionEvent queues ev as JSON, routed by its status. It waits
// for queue space until ctx ends; the broker send itself happens later.
func (p *EventPublisher) PublishConversionEvent(ctx context.Context, ev entity.ConversionEvent) error {
	_, span := otel.Tracer(traceName).Start(ctx, "PublishConversionEvent")
	defer span.End()

	key := routingKey(ev.Status)
	span.SetAttributes(
		attribute.String("exchange", p.exchange),
		attribute.String("routing_key", key),
	)

	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "json.Marshal")
	}

	select {
	case <-p.quit:
		return ErrPublisherClosed
	default:
	}

	select {
	case p.queue <- message{key: key, corrID: ev.RequestID, body: body}:
		return nil
	case <-p.quit:
		return ErrPublisherClosed
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		return errors.Wrap(ctx.Err(), "event queue full")
	}
}

func (p *EventPublisher) loop() {
	defer close(p.done)

	for {
		select {
		case msg := <-p.queue:
			p.send(msg)
		case <-p.quit:
			for {
				select {
				case msg := <-p.queue:
					p.send(msg)
				default:
					return
				}
			}
		}
	}
}

func (p *EventPublisher) send(msg message) {
	if err := p.publish(msg.key, msg.corrID, msg.body); err != nil {
		p.l.Warn("conversion event %s not published: %v", msg.corrID, err)
	}
}

func (p *EventPublisher) publish(key, corrID string, body []byte) error {
	p.l.Debug("Publishing message Exchange: %s, RoutingKey: %s", p.exchange, key)

	if err := p.amqpChan.Publish(
		p.exchange,
		key,
		publishMandatory,
		publishImmediate,
		amqp.Publishing{
			ContentType:   contentTypeJSON,
			DeliveryMode:  amqp.Persistent,
			MessageId:     uuid.New().String(),
			Timestamp:     time.Now(),
			CorrelationId: corrID,
			Body:          body,
		},
	); err != nil {
		return errors.Wrap(err, "ch.Publish")
	}

	return nil
}

// Close stops accepting events, sends what is queued (waiting at most
// drainTimeout) and closes the channel and, when owned, the connection.
func (p *EventPublisher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.quit)

		select {
		case <-p.done:
		case <-time.After(drainTimeout):
			p.l.Warn("EventPublisher Close: gave up draining after %s", drainTimeout)
		}

		if err = p.amqpChan.Close(); err != nil {
			p.l.Error("EventPublisher Close: %v", err)
			return
		}
		if p.conn != nil {
			err = p.conn.Close()
		}
	})
	return err
}

func routingKey(status entity.ConversionStatus) string {
	if status == entity.StatusFailed {
		return routingKeyFailed
	}
	return routingKeyCompleted
}

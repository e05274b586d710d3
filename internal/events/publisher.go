// Package events ships reservation lifecycle events to brokers.
package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"travelbooking/internal/domain/reservation"

	"github.com/sirupsen/logrus"
)

const (
	DefaultQueue = "reservation.events"
	DefaultTopic = "reservation-events"
)

type Config struct {
	// Drivers is a comma separated list: amqp, kafka, log. Empty disables brokers.
	Drivers      string
	AMQPURL      string
	AMQPQueue    string
	KafkaBrokers []string
	KafkaTopic   string
}

// Fanout hands each event to every publisher and joins their errors.
type Fanout []reservation.EventPublisher

func (f Fanout) Publish(ctx context.Context, ev reservation.Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher that holds resources.
func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if c, ok := p.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

type LogPublisher struct {
	log *logrus.Entry
}

func NewLogPublisher(log *logrus.Logger) *LogPublisher {
	return &LogPublisher{log: log.WithField("component", "event_log")}
}

func (p *LogPublisher) Publish(_ context.Context, ev reservation.Event) error {
	p.log.WithFields(logrus.Fields{
		"event_id":       ev.ID,
		"event":          ev.Type,
		"reservation_id": ev.Reservation.ID,
		"kind":           ev.Reservation.Kind,
		"status":         ev.Status,
		"actor_id":       ev.ActorID,
	}).Info("reservation event")
	return nil
}

// New builds the broker fanout named by cfg.Drivers.
func New(cfg Config, log *logrus.Logger) (Fanout, error) {
	var out Fanout
	for _, name := range strings.Split(cfg.Drivers, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "", "none":
		case "log":
			out = append(out, NewLogPublisher(log))
		case "amqp", "rabbitmq":
			if cfg.AMQPURL == "" {
				return nil, errors.New("events: amqp driver needs AMQP_URL")
			}
			out = append(out, NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue, log))
		case "kafka":
			if len(cfg.KafkaBrokers) == 0 {
				return nil, errors.New("events: kafka driver needs KAFKA_BROKERS")
			}
			out = append(out, NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic))
		default:
			return nil, fmt.Errorf("events: unknown driver %q", name)
		}
	}
	return out, nil
}

package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

// Writer is the subset of kafka.Writer the poller uses. Consumers define this
// interface so tests can publish in memory.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Poller ships pending outbox events to the broker. Publishing goes through
// a circuit breaker so a dead broker does not hammer every tick.
type Poller struct {
	tick    time.Duration
	store   *Store
	writer  Writer
	breaker *gobreaker.CircuitBreaker[any]
}

func NewPoller(store *Store, brokers ...string) *Poller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "storefront-orders",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return NewPollerWithWriter(store, w)
}

func NewPollerWithWriter(store *Store, writer Writer) *Poller {
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name: "outbox-publish",
	})
	return &Poller{
		tick:    time.Second,
		store:   store,
		writer:  writer,
		breaker: breaker,
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processPendingEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) processPendingEvents(ctx context.Context) {
	events, err := p.store.PendingEvents(ctx, 100)
	if err != nil {
		slog.Error("failed to fetch outbox events", "error", err)
		return
	}

	for _, event := range events {
		if errPublish := p.publish(ctx, event); errPublish != nil {
			slog.Error("failed to publish outbox event", "event_id", event.ID, "error", errPublish)
			continue
		}

		if errMark := p.store.MarkProcessed(ctx, event.ID); errMark != nil {
			slog.Error("failed to mark outbox event as processed", "event_id", event.ID, "error", errMark)
			continue
		}
	}
}

func (p *Poller) publish(ctx context.Context, event Event) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id for ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.writer.WriteMessages(ctx, msg)
	})
	return err
}

package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/storage"
)

// Key is the logical storage key owned by the outbox.
const Key = "outbox"

const EventTypeOrderPlaced = "order.placed"

// Event is one pending or published domain event. Events are written in the
// same transaction as the state change they describe, then published by the
// poller.
type Event struct {
	ID          uuid.UUID       `json:"id"`
	AggregateID string          `json:"aggregate_id"`
	EventType   string          `json:"event_type"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}

type orderPlacedPayload struct {
	OrderID     uuid.UUID         `json:"order_id"`
	Items       []domain.CartLine `json:"items"`
	TotalAmount float64           `json:"total_amount"`
	Currency    string            `json:"currency"`
	PlacedAt    time.Time         `json:"placed_at"`
}

// NewOrderPlacedEvent builds the event recorded alongside a finalized order.
func NewOrderPlacedEvent(order domain.Order) (Event, error) {
	payload, err := json.Marshal(orderPlacedPayload{
		OrderID:     order.ID,
		Items:       order.Items,
		TotalAmount: order.Total,
		Currency:    order.Currency,
		PlacedAt:    order.CreatedAt,
	})
	if err != nil {
		return Event{}, fmt.Errorf("marshal order placed payload: %w", err)
	}

	return Event{
		ID:          uuid.New(),
		AggregateID: order.ID.String(),
		EventType:   EventTypeOrderPlaced,
		Payload:     payload,
		CreatedAt:   time.Now(),
	}, nil
}

// Store keeps outbox events under their own storage key. The key is
// rewritten whole on every mutation, and checkout appends race the poller's
// mark-processed, so all mutations serialize on one mutex.
type Store struct {
	mu sync.Mutex
	kv storage.KV
}

func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) load(ctx context.Context) ([]Event, error) {
	raw, err := s.kv.Get(ctx, Key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var events []Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return nil, nil
	}
	return events, nil
}

// PendingEvents returns up to limit unpublished events in append order.
func (s *Store) PendingEvents(ctx context.Context, limit int) ([]Event, error) {
	events, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var pending []Event
	for _, e := range events {
		if e.ProcessedAt == nil {
			pending = append(pending, e)
			if len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

// MarkProcessed stamps one event as published.
func (s *Store) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.load(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	found := false
	for i := range events {
		if events[i].ID == id {
			events[i].ProcessedAt = &now
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("outbox event %s not found", id)
	}

	return s.persist(ctx, events)
}

// Append records event after the current ones and writes it together with
// entries in one multi-key transaction. The store's lock is held across the
// load and the write, so a concurrent MarkProcessed can never overwrite the
// appended event with a stale snapshot.
func (s *Store) Append(ctx context.Context, event Event, entries ...storage.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.load(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(append(events, event))
	if err != nil {
		return fmt.Errorf("marshal outbox events: %w", err)
	}

	all := append([]storage.Entry{{Key: Key, Value: string(data)}}, entries...)
	return s.kv.SetMulti(ctx, all)
}

func (s *Store) persist(ctx context.Context, events []Event) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshal outbox events: %w", err)
	}
	return s.kv.Set(ctx, Key, string(data))
}

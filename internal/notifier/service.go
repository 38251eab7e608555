package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/karigarverse/karigarverse/internal/kafka"
	"github.com/karigarverse/karigarverse/internal/orders"
	"github.com/karigarverse/karigarverse/internal/redisx"
)

type Notification struct {
	ID        string
	ArtisanID string
	OrderID   string
	Kind      string // order_placed | order_cancelled
	Message   string
}

type Store interface {
	Insert(ctx context.Context, n Notification) error
}

// Service fans order events out to the artisans involved: one notification
// row per artisan, plus a dashboard counter in Redis.
type Service struct {
	Store       Store
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderEvent is the consumer handler for both order topics.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup via Redis on event_id; at-least-once delivery is expected
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.notifyArtisans(ctx, p.OrderID, "order_placed",
			fmt.Sprintf("New order %s", p.OrderNumber), p.Items, true)
	case orders.EventOrderCancelled:
		p, err := kafkax.UnwrapPayload[orders.OrderCancelledPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.notifyArtisans(ctx, p.OrderID, "order_cancelled",
			fmt.Sprintf("Order %s was cancelled", p.OrderNumber), p.Items, false)
	default:
		return nil // ignore
	}
}

func (s *Service) notifyArtisans(ctx context.Context, orderID, kind, msg string, items []orders.ItemRef, countIt bool) error {
	seen := map[string]bool{}
	for _, it := range items {
		if it.ArtisanID == "" || seen[it.ArtisanID] {
			continue
		}
		seen[it.ArtisanID] = true

		if err := s.Store.Insert(ctx, Notification{
			ID:        uuid.NewString(),
			ArtisanID: it.ArtisanID,
			OrderID:   orderID,
			Kind:      kind,
			Message:   msg,
		}); err != nil {
			return err
		}
		if countIt {
			key := fmt.Sprintf(redisx.KeyArtisanOrders, it.ArtisanID)
			_ = s.Redis.Incr(ctx, key).Err()
		}
	}
	return nil
}

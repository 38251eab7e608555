package notifier

import (
	"context"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkax "github.com/karigarverse/karigarverse/internal/kafka"
	"github.com/karigarverse/karigarverse/internal/orders"
	"github.com/karigarverse/karigarverse/internal/redisx"
)

type storeMock struct {
	inserted []Notification
	err      error
}

func (m *storeMock) Insert(_ context.Context, n Notification) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, n)
	return nil
}

func newService(store *storeMock) *Service {
	// redis points nowhere: dedup lookups fail open, counters are ignored
	return &Service{Store: store, Redis: redisx.New("127.0.0.1:1"), ServiceName: "test-notifier"}
}

func placedMessage(items []orders.ItemRef) kafkago.Message {
	env := orders.Envelope{
		EventID:      "ev-1",
		EventType:    orders.EventOrderPlaced,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test-api",
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID:     "o1",
			OrderNumber: "KV-1-AAAAAA",
			CustomerID:  "u1",
			Items:       items,
			TotalAmount: 500,
		}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandleOrderPlacedNotifiesEachArtisanOnce(t *testing.T) {
	store := &storeMock{}
	svc := newService(store)

	items := []orders.ItemRef{
		{ProductID: "p1", ArtisanID: "a1", Quantity: 1, UnitPrice: 100},
		{ProductID: "p2", ArtisanID: "a1", Quantity: 2, UnitPrice: 100},
		{ProductID: "p3", ArtisanID: "a2", Quantity: 1, UnitPrice: 200},
	}
	require.NoError(t, svc.HandleOrderEvent(context.Background(), placedMessage(items)))

	require.Len(t, store.inserted, 2, "one notification per distinct artisan")
	assert.Equal(t, "a1", store.inserted[0].ArtisanID)
	assert.Equal(t, "a2", store.inserted[1].ArtisanID)
	for _, n := range store.inserted {
		assert.Equal(t, "order_placed", n.Kind)
		assert.Equal(t, "o1", n.OrderID)
	}
}

func TestHandleOrderCancelled(t *testing.T) {
	store := &storeMock{}
	svc := newService(store)

	env := orders.Envelope{
		EventID:   "ev-2",
		EventType: orders.EventOrderCancelled,
		Payload: kafkax.MustMarshal(orders.OrderCancelledPayload{
			OrderID:     "o1",
			OrderNumber: "KV-1-AAAAAA",
			CustomerID:  "u1",
			Items:       []orders.ItemRef{{ProductID: "p1", ArtisanID: "a1", Quantity: 1}},
		}),
	}
	m := kafkago.Message{Value: kafkax.MustMarshal(env)}

	require.NoError(t, svc.HandleOrderEvent(context.Background(), m))
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "order_cancelled", store.inserted[0].Kind)
}

func TestHandleIgnoresUnknownEventTypes(t *testing.T) {
	store := &storeMock{}
	svc := newService(store)

	env := orders.Envelope{EventID: "ev-3", EventType: "PaymentAuthorized", Payload: []byte(`{}`)}
	m := kafkago.Message{Value: kafkax.MustMarshal(env)}

	require.NoError(t, svc.HandleOrderEvent(context.Background(), m))
	assert.Empty(t, store.inserted)
}

func TestHandleRejectsGarbage(t *testing.T) {
	svc := newService(&storeMock{})
	err := svc.HandleOrderEvent(context.Background(), kafkago.Message{Value: []byte("not json")})
	assert.Error(t, err)
}

func TestHandleStoreErrorPropagates(t *testing.T) {
	store := &storeMock{err: assert.AnError}
	svc := newService(store)

	items := []orders.ItemRef{{ProductID: "p1", ArtisanID: "a1", Quantity: 1}}
	err := svc.HandleOrderEvent(context.Background(), placedMessage(items))
	assert.ErrorIs(t, err, assert.AnError)
}

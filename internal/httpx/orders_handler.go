package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/karigarverse/karigarverse/internal/kafka"
	"github.com/karigarverse/karigarverse/internal/orders"
	"github.com/karigarverse/karigarverse/internal/redisx"
)

type OrderService interface {
	Place(ctx context.Context, userID string, req orders.PlaceRequest) (*orders.Order, []orders.OrderItem, error)
	List(ctx context.Context, userID string, limit, offset int) ([]orders.Summary, error)
	Get(ctx context.Context, orderID string) (*orders.Order, []orders.OrderItem, error)
	GetStatus(ctx context.Context, orderID string) (orders.Status, error)
	Cancel(ctx context.Context, userID, orderID string) (*orders.Order, []orders.ItemRef, error)
}

type OrdersHandler struct {
	Orders    OrderService
	Placed    *kafkax.Producer
	Cancelled *kafkax.Producer
	Redis     *redis.Client
	Service   string
}

type OrderDetailResp struct {
	Order *orders.Order      `json:"order"`
	Items []orders.OrderItem `json:"items"`
}

func (h *OrdersHandler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	// detail fetch carries no ownership check; the order id is the capability
	r.Get("/orders/detail/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/orders", h.listOrders)
		r.Post("/orders", h.createOrder)
		r.Post("/orders/{id}/cancel", h.cancelOrder)
	})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	userID := UserID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, items, err := h.Orders.Place(ctx, userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)
	h.publish(h.Placed, orders.EventOrderPlaced, o, orders.OrderPlacedPayload{
		OrderID:     o.ID,
		OrderNumber: o.Number,
		CustomerID:  o.CustomerID,
		Items:       toItemRefs(items),
		TotalAmount: o.TotalAmount,
	}, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Orders.List(ctx, UserID(r.Context()), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if out == nil {
		out = []orders.Summary{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, items, err := h.Orders.Get(ctx, orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.cacheStatus(ctx, o.ID, o.Status)
	writeJSON(w, http.StatusOK, OrderDetailResp{Order: o, Items: items})
}

// getOrderStatus serves the hot polling path. Cache first, database on a
// miss, and the fresh answer goes back into the cache.
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	status, err := h.Orders.GetStatus(ctx, orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.cacheStatus(ctx, orderID, status)
	writeJSON(w, http.StatusOK, map[string]orders.Status{"status": status})
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, refs, err := h.Orders.Cancel(ctx, UserID(r.Context()), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)
	h.publish(h.Cancelled, orders.EventOrderCancelled, o, orders.OrderCancelledPayload{
		OrderID:     o.ID,
		OrderNumber: o.Number,
		CustomerID:  o.CustomerID,
		Items:       refs,
	}, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusOK, o)
}

// cacheStatus keeps GETs off the database for hot orders. Failures are
// ignored; the database stays the source of truth.
func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, status orders.Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = h.Redis.Set(ctx, key, fmt.Sprintf(`{"status":%q}`, status), redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publish(p *kafkax.Producer, eventType string, o *orders.Order, payload any, traceID string) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: o.ID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func toItemRefs(items []orders.OrderItem) []orders.ItemRef {
	out := make([]orders.ItemRef, 0, len(items))
	for _, it := range items {
		out = append(out, orders.ItemRef{
			ProductID: it.ProductID,
			ArtisanID: it.ArtisanID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return out
}

package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Store is the persistence surface the service orchestrates. *Repo is the
// production implementation.
type Store interface {
	PlaceOrder(ctx context.Context, o *Order, items []OrderItem) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Summary, error)
	Get(ctx context.Context, orderID string) (*Order, []OrderItem, error)
	GetStatus(ctx context.Context, orderID string) (Status, error)
	Cancel(ctx context.Context, userID, orderID string) (*Order, []ItemRef, error)
}

const placeAttempts = 3

type Service struct {
	Store Store

	// NewNumber is swappable for tests; defaults to the package generator.
	NewNumber func() string
}

func NewService(store Store) *Service {
	return &Service{Store: store, NewNumber: NewNumber}
}

// Place validates the request and runs the placement transaction, retrying
// with a fresh order number on collision.
func (s *Service) Place(ctx context.Context, userID string, req PlaceRequest) (*Order, []OrderItem, error) {
	if err := validatePlace(req); err != nil {
		return nil, nil, err
	}

	var lastErr error
	for attempt := 0; attempt < placeAttempts; attempt++ {
		o := &Order{
			ID:              uuid.NewString(),
			Number:          s.NewNumber(),
			CustomerID:      userID,
			Status:          StatusPending,
			Subtotal:        req.Subtotal,
			TaxAmount:       req.TaxAmount,
			ShippingCost:    req.ShippingCost,
			DiscountAmount:  req.DiscountAmount,
			TotalAmount:     req.TotalAmount,
			ShippingAddress: *req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			PaymentMethod:   req.PaymentMethod,
			Notes:           req.Notes,
		}
		items := make([]OrderItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, OrderItem{
				ID:         uuid.NewString(),
				OrderID:    o.ID,
				ProductID:  it.ProductID,
				ArtisanID:  it.ArtisanID,
				Quantity:   it.Quantity,
				UnitPrice:  it.UnitPrice,
				TotalPrice: it.UnitPrice * int64(it.Quantity),
			})
		}

		err := s.Store.PlaceOrder(ctx, o, items)
		if err == nil {
			return o, items, nil
		}
		if !errors.Is(err, ErrNumberTaken) {
			return nil, nil, err
		}
		lastErr = err
	}
	return nil, nil, lastErr
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Summary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Store.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) Get(ctx context.Context, orderID string) (*Order, []OrderItem, error) {
	return s.Store.Get(ctx, orderID)
}

func (s *Service) GetStatus(ctx context.Context, orderID string) (Status, error) {
	return s.Store.GetStatus(ctx, orderID)
}

func (s *Service) Cancel(ctx context.Context, userID, orderID string) (*Order, []ItemRef, error) {
	return s.Store.Cancel(ctx, userID, orderID)
}

func validatePlace(req PlaceRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrInvalidArgument)
	}
	if req.ShippingAddress == nil || req.ShippingAddress.Line1 == "" {
		return fmt.Errorf("%w: shipping address is required", ErrInvalidArgument)
	}
	if req.TaxAmount < 0 || req.ShippingCost < 0 || req.DiscountAmount < 0 || req.Subtotal < 0 {
		return fmt.Errorf("%w: amounts must be non-negative", ErrInvalidArgument)
	}

	var sum int64
	for _, it := range req.Items {
		if it.ProductID == "" || it.ArtisanID == "" {
			return fmt.Errorf("%w: item product_id and artisan_id are required", ErrInvalidArgument)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive for product %s", ErrInvalidArgument, it.ProductID)
		}
		if it.UnitPrice <= 0 {
			return fmt.Errorf("%w: unit price must be positive for product %s", ErrInvalidArgument, it.ProductID)
		}
		sum += it.UnitPrice * int64(it.Quantity)
	}

	// Unit prices are taken as the client-side snapshot, but the arithmetic
	// has to hold together.
	if req.Subtotal != sum {
		return fmt.Errorf("%w: subtotal %d does not match item total %d", ErrInvalidArgument, req.Subtotal, sum)
	}
	if req.TotalAmount != req.Subtotal+req.TaxAmount+req.ShippingCost-req.DiscountAmount {
		return fmt.Errorf("%w: total_amount does not add up", ErrInvalidArgument)
	}
	if req.TotalAmount < 0 {
		return fmt.Errorf("%w: total_amount must be non-negative", ErrInvalidArgument)
	}
	return nil
}

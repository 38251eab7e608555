package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `id, order_number, customer_id, status, subtotal, tax_amount,
	shipping_cost, discount_amount, total_amount, shipping_address, billing_address,
	payment_method, notes, created_at, updated_at`

// PlaceOrder materializes the order, its items, the stock decrements and the
// cart clear as one transaction. Any failure leaves no trace: no order row,
// no items, stock and cart untouched.
func (r *Repo) PlaceOrder(ctx context.Context, o *Order, items []OrderItem) error {
	shipJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}
	var billJSON []byte
	if o.BillingAddress != nil {
		if billJSON, err = json.Marshal(o.BillingAddress); err != nil {
			return err
		}
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, order_number, customer_id, status, subtotal, tax_amount,
		                   shipping_cost, discount_amount, total_amount,
		                   shipping_address, billing_address, payment_method, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at`,
		o.ID, o.Number, o.CustomerID, o.Status, o.Subtotal, o.TaxAmount,
		o.ShippingCost, o.DiscountAmount, o.TotalAmount,
		shipJSON, billJSON, o.PaymentMethod, o.Notes,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrNumberTaken
		}
		return err
	}

	for _, it := range items {
		// Guarded decrement: zero rows affected means the product is either
		// missing, inactive, or short on stock.
		ct, err := tx.Exec(ctx, `
			UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = now()
			WHERE id = $1 AND active AND stock_quantity >= $2`,
			it.ProductID, it.Quantity)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			var stock int
			err := tx.QueryRow(ctx,
				`SELECT stock_quantity FROM products WHERE id = $1 AND active`,
				it.ProductID).Scan(&stock)
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
			}
			if err != nil {
				return err
			}
			return fmt.Errorf("%w: product %s has %d, requested %d",
				ErrInsufficientStock, it.ProductID, stock, it.Quantity)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, artisan_id, quantity, unit_price, total_price)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			it.ID, it.OrderID, it.ProductID, it.ArtisanID, it.Quantity, it.UnitPrice, it.TotalPrice,
		); err != nil {
			return err
		}
	}

	// Full cart clear, not just the ordered products.
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, o.CustomerID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Summary, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderColumns+`,
		       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = orders.id) AS item_count
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := scanOrder(rows, &s.Order, &s.ItemCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) GetStatus(ctx context.Context, orderID string) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

func (r *Repo) Get(ctx context.Context, orderID string) (*Order, []OrderItem, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	var o Order
	if err := scanOrder(row, &o, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, artisan_id, quantity, unit_price, total_price
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ArtisanID,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, nil, err
		}
		items = append(items, it)
	}
	return &o, items, rows.Err()
}

// Cancel transitions the order to cancelled and returns item quantities to
// product stock, in one transaction. Ownership and eligibility are checked
// under the row lock, before any mutation. The item refs come back for the
// cancellation event.
func (r *Repo) Cancel(ctx context.Context, userID, orderID string) (*Order, []ItemRef, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	var o Order
	if err := scanOrder(row, &o, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if o.CustomerID != userID {
		return nil, nil, ErrPermissionDenied
	}
	if !CanCancel(o.Status) {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidState, o.Status)
	}

	if err := tx.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = now() WHERE id = $1
		RETURNING updated_at`, orderID, StatusCancelled).Scan(&o.UpdatedAt); err != nil {
		return nil, nil, err
	}
	o.Status = StatusCancelled

	rows, err := tx.Query(ctx, `
		SELECT product_id, artisan_id, quantity, unit_price
		FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, nil, err
	}
	var refs []ItemRef
	for rows.Next() {
		var it ItemRef
		if err := rows.Scan(&it.ProductID, &it.ArtisanID, &it.Quantity, &it.UnitPrice); err != nil {
			rows.Close()
			return nil, nil, err
		}
		refs = append(refs, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	for _, it := range refs {
		if _, err := tx.Exec(ctx, `
			UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = now()
			WHERE id = $1`, it.ProductID, it.Quantity); err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &o, refs, nil
}

func scanOrder(row pgx.Row, o *Order, itemCount *int) error {
	var ship, bill []byte
	dest := []any{&o.ID, &o.Number, &o.CustomerID, &o.Status, &o.Subtotal, &o.TaxAmount,
		&o.ShippingCost, &o.DiscountAmount, &o.TotalAmount, &ship, &bill,
		&o.PaymentMethod, &o.Notes, &o.CreatedAt, &o.UpdatedAt}
	if itemCount != nil {
		dest = append(dest, itemCount)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	if len(ship) > 0 {
		if err := json.Unmarshal(ship, &o.ShippingAddress); err != nil {
			return err
		}
	}
	if len(bill) > 0 {
		o.BillingAddress = &Address{}
		if err := json.Unmarshal(bill, o.BillingAddress); err != nil {
			return err
		}
	}
	return nil
}

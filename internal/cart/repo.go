package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrProductNotFound = errors.New("product not found")
)

type Repo struct{ DB *pgxpool.Pool }

// Add increments the (user, product) row or creates it. The upsert is a
// single statement so two concurrent adds cannot race into duplicate rows.
func (r *Repo) Add(ctx context.Context, userID, productID string, quantity int) (*Item, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	it := Item{UserID: userID, ProductID: productID}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO cart_items(id, user_id, product_id, quantity)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING id, quantity, created_at, updated_at`,
		uuid.NewString(), userID, productID, quantity,
	).Scan(&it.ID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, mapFK(err)
	}
	return &it, nil
}

// SetQuantity replaces the stored quantity. A non-positive quantity removes
// the row; callers get a zero-quantity item back in that case.
func (r *Repo) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*Item, error) {
	if quantity <= 0 {
		if err := r.Remove(ctx, userID, productID); err != nil {
			return nil, err
		}
		return &Item{UserID: userID, ProductID: productID, Quantity: 0}, nil
	}

	it := Item{UserID: userID, ProductID: productID}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO cart_items(id, user_id, product_id, quantity)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
		RETURNING id, quantity, created_at, updated_at`,
		uuid.NewString(), userID, productID, quantity,
	).Scan(&it.ID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, mapFK(err)
	}
	return &it, nil
}

// Remove is idempotent: deleting an absent row is not an error.
func (r *Repo) Remove(ctx context.Context, userID, productID string) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	return err
}

func (r *Repo) List(ctx context.Context, userID string) ([]ItemDetail, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at,
		       p.name, p.price, p.images, p.stock_quantity, p.active,
		       p.artisan_id, COALESCE(a.shop_name, '')
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		LEFT JOIN artisans a ON a.id = p.artisan_id
		WHERE c.user_id = $1
		ORDER BY c.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemDetail
	for rows.Next() {
		var d ItemDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.ProductID, &d.Quantity, &d.CreatedAt, &d.UpdatedAt,
			&d.ProductName, &d.UnitPrice, &d.Images, &d.Stock, &d.Active,
			&d.ArtisanID, &d.ShopName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func mapFK(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrProductNotFound
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("cart upsert returned no row: %w", err)
	}
	return err
}

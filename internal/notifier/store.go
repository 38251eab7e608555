package notifier

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct{ DB *pgxpool.Pool }

// Insert is idempotent per (artisan, order, kind): event redelivery after a
// Redis dedup miss must not double-notify.
func (s *PgStore) Insert(ctx context.Context, n Notification) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO notifications(id, artisan_id, order_id, kind, message)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (artisan_id, order_id, kind) DO NOTHING`,
		n.ID, n.ArtisanID, n.OrderID, n.Kind, n.Message)
	return err
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrInvalidField = errors.New("invalid profile field")

// Mutable profile columns. Anything else in the payload is dropped, never
// interpolated into SQL.
var profileFields = []string{"shop_name", "bio", "location", "phone", "avatar_url"}

// buildProfileUpdate assembles the SET clause from the allow-list only.
// Placeholders start at $2; $1 is reserved for user_id.
func buildProfileUpdate(fields map[string]any) (string, []any, error) {
	var sets []string
	var args []any
	for _, col := range profileFields {
		v, ok := fields[col]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return "", nil, fmt.Errorf("%w: %s must be a string", ErrInvalidField, col)
		}
		if col == "shop_name" && strings.TrimSpace(s) == "" {
			return "", nil, fmt.Errorf("%w: shop_name cannot be empty", ErrInvalidField)
		}
		args = append(args, s)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)+1))
	}
	return strings.Join(sets, ", "), args, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const insertEmptyProfile = `
	INSERT INTO artisans(id, user_id, shop_name) VALUES ($1, $2, '')
	ON CONFLICT (user_id) DO NOTHING`

// applyProfileUpdate updates the row, creating an empty profile first when
// none exists. The insert tolerates a concurrent first-time update winning
// the race on user_id; whichever row landed, the second UPDATE applies the
// requested fields to it.
func applyProfileUpdate(ctx context.Context, q execer, userID, set string, args []any) error {
	if set == "" {
		// nothing recognized in the payload; still guarantee the profile exists
		_, err := q.Exec(ctx, insertEmptyProfile, uuid.NewString(), userID)
		return err
	}

	updateArgs := append([]any{userID}, args...)
	update := `UPDATE artisans SET ` + set + `, updated_at = now() WHERE user_id = $1`
	ct, err := q.Exec(ctx, update, updateArgs...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		if _, err := q.Exec(ctx, insertEmptyProfile, uuid.NewString(), userID); err != nil {
			return err
		}
		if _, err := q.Exec(ctx, update, updateArgs...); err != nil {
			return err
		}
	}
	return nil
}

// UpdateProfile applies an allow-listed partial update. A missing profile
// is created on the fly; several onboarding flows rely on that.
func (r *Repo) UpdateProfile(ctx context.Context, userID string, fields map[string]any) (*Artisan, error) {
	set, args, err := buildProfileUpdate(fields)
	if err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := applyProfileUpdate(ctx, tx, userID, set, args); err != nil {
		return nil, err
	}

	var a Artisan
	if err := tx.QueryRow(ctx, `
		SELECT id, user_id, shop_name, bio, location, phone, avatar_url, verified, created_at, updated_at
		FROM artisans WHERE user_id = $1`, userID).
		Scan(&a.ID, &a.UserID, &a.ShopName, &a.Bio, &a.Location, &a.Phone,
			&a.AvatarURL, &a.Verified, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) GetArtisanByUser(ctx context.Context, userID string) (*Artisan, error) {
	var a Artisan
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, shop_name, bio, location, phone, avatar_url, verified, created_at, updated_at
		FROM artisans WHERE user_id = $1`, userID).
		Scan(&a.ID, &a.UserID, &a.ShopName, &a.Bio, &a.Location, &a.Phone,
			&a.AvatarURL, &a.Verified, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

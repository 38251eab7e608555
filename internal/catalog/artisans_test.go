package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProfileUpdateAllowList(t *testing.T) {
	set, args, err := buildProfileUpdate(map[string]any{
		"shop_name": "Clay & Kiln",
		"bio":       "Terracotta from Kutch",
		"role":      "admin",     // not updatable, silently dropped
		"verified":  true,        // not updatable either
		"id":        "evil-uuid", // never
	})
	require.NoError(t, err)
	assert.Equal(t, "shop_name = $2, bio = $3", set)
	assert.Equal(t, []any{"Clay & Kiln", "Terracotta from Kutch"}, args)
}

func TestBuildProfileUpdateEmpty(t *testing.T) {
	set, args, err := buildProfileUpdate(map[string]any{"unknown": "x"})
	require.NoError(t, err)
	assert.Empty(t, set)
	assert.Empty(t, args)
}

func TestBuildProfileUpdateRejectsNonString(t *testing.T) {
	_, _, err := buildProfileUpdate(map[string]any{"bio": 42})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestBuildProfileUpdateRejectsBlankShopName(t *testing.T) {
	_, _, err := buildProfileUpdate(map[string]any{"shop_name": "   "})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestBuildProfileUpdateDeterministicOrder(t *testing.T) {
	// map iteration order must not leak into the SQL
	for i := 0; i < 20; i++ {
		set, _, err := buildProfileUpdate(map[string]any{
			"avatar_url": "https://cdn/x.png",
			"location":   "Jaipur",
			"phone":      "+91 98x",
		})
		require.NoError(t, err)
		assert.Equal(t, "location = $2, phone = $3, avatar_url = $4", set)
	}
}

type execRecorder struct {
	tags []pgconn.CommandTag // consumed per call; zero value past the end
	sqls []string
}

func (e *execRecorder) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	e.sqls = append(e.sqls, sql)
	if len(e.sqls) <= len(e.tags) {
		return e.tags[len(e.sqls)-1], nil
	}
	return pgconn.CommandTag{}, nil
}

func TestApplyProfileUpdateExistingRow(t *testing.T) {
	rec := &execRecorder{tags: []pgconn.CommandTag{pgconn.NewCommandTag("UPDATE 1")}}
	err := applyProfileUpdate(context.Background(), rec, "u1", "bio = $2", []any{"pots"})
	require.NoError(t, err)
	require.Len(t, rec.sqls, 1)
	assert.Contains(t, rec.sqls[0], "UPDATE artisans SET bio = $2")
}

func TestApplyProfileUpdateCreatesMissingRow(t *testing.T) {
	// first UPDATE hits no row; the insert must tolerate a concurrent
	// first-time update already owning user_id, then the UPDATE re-runs
	rec := &execRecorder{tags: []pgconn.CommandTag{
		pgconn.NewCommandTag("UPDATE 0"),
		pgconn.NewCommandTag("INSERT 0 0"), // lost the race, conflict swallowed
		pgconn.NewCommandTag("UPDATE 1"),
	}}
	err := applyProfileUpdate(context.Background(), rec, "u1", "bio = $2", []any{"pots"})
	require.NoError(t, err)
	require.Len(t, rec.sqls, 3)
	assert.Contains(t, rec.sqls[1], "ON CONFLICT (user_id) DO NOTHING")
	assert.True(t, strings.HasPrefix(rec.sqls[2], "UPDATE artisans SET"))
}

func TestApplyProfileUpdateEmptySetEnsuresRow(t *testing.T) {
	rec := &execRecorder{}
	err := applyProfileUpdate(context.Background(), rec, "u1", "", nil)
	require.NoError(t, err)
	require.Len(t, rec.sqls, 1)
	assert.Contains(t, rec.sqls[0], "ON CONFLICT (user_id) DO NOTHING")
}

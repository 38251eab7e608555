package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/karigarverse/karigarverse/internal/postgres"
)

func setupRepo(t *testing.T) *Repo {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("karigarverse_test"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(dsn, "../../migrations"))

	pool, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return &Repo{DB: pool}
}

// seedCustomer creates a user who is also an artisan, so one id can own
// products and place orders.
func seedCustomer(t *testing.T, r *Repo) (userID, artisanID string) {
	t.Helper()
	ctx := context.Background()
	userID = uuid.NewString()
	artisanID = uuid.NewString()
	_, err := r.DB.Exec(ctx,
		`INSERT INTO users(id, email, password_hash) VALUES ($1, $2, 'x')`,
		userID, userID+"@test.local")
	require.NoError(t, err)
	_, err = r.DB.Exec(ctx,
		`INSERT INTO artisans(id, user_id, shop_name) VALUES ($1, $2, 'Test Shop')`,
		artisanID, userID)
	require.NoError(t, err)
	return userID, artisanID
}

func seedProduct(t *testing.T, r *Repo, artisanID string, stock int, price int64) string {
	t.Helper()
	id := uuid.NewString()
	_, err := r.DB.Exec(context.Background(),
		`INSERT INTO products(id, artisan_id, name, price, stock_quantity) VALUES ($1, $2, 'Vase', $3, $4)`,
		id, artisanID, price, stock)
	require.NoError(t, err)
	return id
}

func productStock(t *testing.T, r *Repo, productID string) int {
	t.Helper()
	var stock int
	require.NoError(t, r.DB.QueryRow(context.Background(),
		`SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&stock))
	return stock
}

func countRows(t *testing.T, r *Repo, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, r.DB.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

func testOrder(customerID string, items []OrderItem) (*Order, []OrderItem) {
	o := &Order{
		ID:              uuid.NewString(),
		Number:          NewNumber(),
		CustomerID:      customerID,
		Status:          StatusPending,
		ShippingAddress: Address{Line1: "12 Potter Lane", City: "Jaipur"},
	}
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].OrderID = o.ID
		items[i].TotalPrice = int64(items[i].Quantity) * items[i].UnitPrice
		o.Subtotal += items[i].TotalPrice
	}
	o.TotalAmount = o.Subtotal
	return o, items
}

func TestPlaceOrderCommitsStockAndCart(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	userID, artisanID := seedCustomer(t, repo)
	productID := seedProduct(t, repo, artisanID, 5, 100)

	_, err := repo.DB.Exec(ctx,
		`INSERT INTO cart_items(id, user_id, product_id, quantity) VALUES ($1, $2, $3, 2)`,
		uuid.NewString(), userID, productID)
	require.NoError(t, err)

	o, items := testOrder(userID, []OrderItem{
		{ProductID: productID, ArtisanID: artisanID, Quantity: 2, UnitPrice: 100},
	})
	require.NoError(t, repo.PlaceOrder(ctx, o, items))

	assert.Equal(t, 3, productStock(t, repo, productID))
	assert.Equal(t, 0, countRows(t, repo, `SELECT COUNT(*) FROM cart_items WHERE user_id = $1`, userID))

	got, gotItems, err := repo.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, int64(200), got.TotalAmount)
	require.Len(t, gotItems, 1)
	assert.Equal(t, productID, gotItems[0].ProductID)
}

func TestPlaceOrderRollsBackOnInsufficientStock(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	userID, artisanID := seedCustomer(t, repo)
	p1 := seedProduct(t, repo, artisanID, 5, 100)
	p2 := seedProduct(t, repo, artisanID, 1, 250)

	_, err := repo.DB.Exec(ctx,
		`INSERT INTO cart_items(id, user_id, product_id, quantity) VALUES ($1, $2, $3, 2)`,
		uuid.NewString(), userID, p1)
	require.NoError(t, err)

	// p1 decrements fine, p2 runs short; the whole transaction must unwind
	o, items := testOrder(userID, []OrderItem{
		{ProductID: p1, ArtisanID: artisanID, Quantity: 2, UnitPrice: 100},
		{ProductID: p2, ArtisanID: artisanID, Quantity: 3, UnitPrice: 250},
	})
	err = repo.PlaceOrder(ctx, o, items)
	require.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 5, productStock(t, repo, p1))
	assert.Equal(t, 1, productStock(t, repo, p2))
	assert.Equal(t, 0, countRows(t, repo, `SELECT COUNT(*) FROM orders WHERE customer_id = $1`, userID))
	assert.Equal(t, 0, countRows(t, repo, `SELECT COUNT(*) FROM order_items WHERE order_id = $1`, o.ID))
	assert.Equal(t, 1, countRows(t, repo, `SELECT COUNT(*) FROM cart_items WHERE user_id = $1`, userID))
}

func TestPlaceOrderRollsBackOnUnknownProduct(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	userID, artisanID := seedCustomer(t, repo)
	p1 := seedProduct(t, repo, artisanID, 5, 100)

	o, items := testOrder(userID, []OrderItem{
		{ProductID: p1, ArtisanID: artisanID, Quantity: 1, UnitPrice: 100},
		{ProductID: uuid.NewString(), ArtisanID: artisanID, Quantity: 1, UnitPrice: 50},
	})
	err := repo.PlaceOrder(ctx, o, items)
	require.ErrorIs(t, err, ErrProductNotFound)

	assert.Equal(t, 5, productStock(t, repo, p1))
	assert.Equal(t, 0, countRows(t, repo, `SELECT COUNT(*) FROM orders WHERE customer_id = $1`, userID))
}

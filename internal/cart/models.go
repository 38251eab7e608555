package cart

import "time"

type Item struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemDetail joins the cart row with the current product snapshot. The
// price here is the live one; the order records its own at placement.
type ItemDetail struct {
	Item
	ProductName string   `json:"product_name"`
	UnitPrice   int64    `json:"unit_price"`
	Images      []string `json:"images,omitempty"`
	Stock       int      `json:"stock_quantity"`
	Active      bool     `json:"active"`
	ArtisanID   string   `json:"artisan_id"`
	ShopName    string   `json:"shop_name"`
}

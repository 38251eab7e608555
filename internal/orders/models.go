package orders

import "time"

// Monetary amounts are integer minor units (cents) everywhere.

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type Order struct {
	ID              string    `json:"id"`
	Number          string    `json:"order_number"`
	CustomerID      string    `json:"customer_id"`
	Status          Status    `json:"status"`
	Subtotal        int64     `json:"subtotal"`
	TaxAmount       int64     `json:"tax_amount"`
	ShippingCost    int64     `json:"shipping_cost"`
	DiscountAmount  int64     `json:"discount_amount"`
	TotalAmount     int64     `json:"total_amount"`
	ShippingAddress Address   `json:"shipping_address"`
	BillingAddress  *Address  `json:"billing_address,omitempty"`
	PaymentMethod   string    `json:"payment_method"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Item quantities and prices are captured at order time; they are never
// re-read from the live product.
type OrderItem struct {
	ID         string `json:"id"`
	OrderID    string `json:"order_id"`
	ProductID  string `json:"product_id"`
	ArtisanID  string `json:"artisan_id"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	TotalPrice int64  `json:"total_price"`
}

// Summary is the list-view row: the order plus how many line items it has.
type Summary struct {
	Order
	ItemCount int `json:"item_count"`
}

type ItemRequest struct {
	ProductID string `json:"product_id"`
	ArtisanID string `json:"artisan_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

type PlaceRequest struct {
	Subtotal        int64         `json:"subtotal"`
	TaxAmount       int64         `json:"tax_amount"`
	ShippingCost    int64         `json:"shipping_cost"`
	DiscountAmount  int64         `json:"discount_amount"`
	TotalAmount     int64         `json:"total_amount"`
	ShippingAddress *Address      `json:"shipping_address"`
	BillingAddress  *Address      `json:"billing_address,omitempty"`
	PaymentMethod   string        `json:"payment_method"`
	Notes           string        `json:"notes,omitempty"`
	Items           []ItemRequest `json:"items"`
}

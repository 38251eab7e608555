package catalog

import "time"

type Product struct {
	ID          string    `json:"id"`
	ArtisanID   string    `json:"artisan_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"` // minor units
	Images      []string  `json:"images,omitempty"`
	Stock       int       `json:"stock_quantity"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Artisan struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ShopName  string    `json:"shop_name"`
	Bio       string    `json:"bio,omitempty"`
	Location  string    `json:"location,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

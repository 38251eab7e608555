package orders

import "strings"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// CanCancel reports whether a customer may still cancel an order in this
// status. The stored value is compared case-insensitively.
func CanCancel(s Status) bool {
	switch Status(strings.ToLower(string(s))) {
	case StatusPending, StatusProcessing:
		return true
	}
	return false
}

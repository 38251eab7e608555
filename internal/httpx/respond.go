package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/karigarverse/karigarverse/internal/auth"
	"github.com/karigarverse/karigarverse/internal/cart"
	"github.com/karigarverse/karigarverse/internal/catalog"
	"github.com/karigarverse/karigarverse/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainError maps the error taxonomy to status codes in one place.
// Anything unrecognized is logged and surfaced as a generic 500 so driver
// details never reach the client.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orders.ErrInvalidArgument),
		errors.Is(err, orders.ErrInvalidState),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, catalog.ErrInvalidField):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, orders.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, orders.ErrNotFound),
		errors.Is(err, orders.ErrProductNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orders.ErrInsufficientStock),
		errors.Is(err, orders.ErrNumberTaken),
		errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

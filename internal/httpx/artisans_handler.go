package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/karigarverse/karigarverse/internal/catalog"
)

type ArtisanService interface {
	UpdateProfile(ctx context.Context, userID string, fields map[string]any) (*catalog.Artisan, error)
	GetArtisanByUser(ctx context.Context, userID string) (*catalog.Artisan, error)
}

type ArtisansHandler struct {
	Artisans ArtisanService
}

func (h *ArtisansHandler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/artisans/me", h.me)
		r.Put("/artisans/profile", h.updateProfile)
	})
}

func (h *ArtisansHandler) me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	a, err := h.Artisans.GetArtisanByUser(ctx, UserID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// updateProfile accepts arbitrary keys and lets the catalog layer keep only
// the allow-listed ones; over-posting clients are tolerated, not rejected.
func (h *ArtisansHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.Artisans.UpdateProfile(ctx, UserID(r.Context()), fields)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

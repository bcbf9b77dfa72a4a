package availability

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns public availability routes
func (h *Handler) Routes(rateLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(rateLimit)

	r.Get("/", h.Get)

	return r
}

// PropertyRoutes returns availability routes nested under a property
func (h *Handler) PropertyRoutes(rateLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(rateLimit)

	r.Get("/{propertyId}/availability", h.GetForProperty)

	return r
}

// AdminRoutes returns data-quality routes for administrators
func (h *Handler) AdminRoutes(authMiddleware, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(adminOnly)

	r.Get("/overlaps", h.Overlaps)

	return r
}

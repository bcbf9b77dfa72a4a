package availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/staynest/booking-api/internal/pkg/errorhandler"
	"github.com/staynest/booking-api/internal/pkg/response"
	"github.com/staynest/booking-api/internal/pkg/validator"
)

// Handler handles availability HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates availability handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /api/v1/availability
// Range: ?propertyId&startDate&endDate, Month: ?propertyId&month&year, Summary: no params.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, queryParams(r))
}

// GetForProperty handles GET /api/v1/properties/{propertyId}/availability
func (h *Handler) GetForProperty(w http.ResponseWriter, r *http.Request) {
	q := queryParams(r)
	pathID := chi.URLParam(r, "propertyId")
	if q.PropertyID != "" && q.PropertyID != pathID {
		response.InvalidInput(w, "propertyId query parameter does not match path")
		return
	}
	q.PropertyID = pathID
	h.serve(w, r, q)
}

// Overlaps handles GET /api/admin/availability/overlaps?from&to
func (h *Handler) Overlaps(w http.ResponseWriter, r *http.Request) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		response.InvalidInput(w, "from and to are required")
		return
	}

	details := make(map[string]string)
	if validator.ValidateVar(fromStr, "isodate") != nil {
		details["from"] = "Invalid date. Must be YYYY-MM-DD"
	}
	if validator.ValidateVar(toStr, "isodate") != nil {
		details["to"] = "Invalid date. Must be YYYY-MM-DD"
	}
	if len(details) > 0 {
		response.ValidationError(w, details)
		return
	}

	from, _ := ParseDate(fromStr)
	to, _ := ParseDate(toStr)

	report, err := h.service.Overlaps(r.Context(), Window{Start: from, End: to})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.OK(w, report)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, q QueryParams) {
	mode, problem := q.Mode()
	if problem != "" {
		response.InvalidInput(w, problem)
		return
	}

	if mode == ModeSummary {
		result, err := h.service.Summary(r.Context())
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		response.OK(w, result)
		return
	}

	if errs := validator.Validate(&q); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	switch mode {
	case ModeRange:
		start, _ := ParseDate(q.StartDate)
		end, _ := ParseDate(q.EndDate)
		result, err := h.service.RangeAvailability(r.Context(), q.PropertyID, start, end)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		response.OK(w, result)

	case ModeMonth:
		month, _ := strconv.Atoi(q.Month)
		year, _ := strconv.Atoi(q.Year)
		result, err := h.service.MonthAvailability(r.Context(), q.PropertyID, year, time.Month(month))
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		response.OK(w, result)
	}
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidRange):
		response.InvalidInput(w, ErrInvalidRange.Error())
	case errors.Is(err, ErrInvalidMonth):
		response.InvalidInput(w, ErrInvalidMonth.Error())
	case errors.Is(err, ErrRangeTooLarge):
		response.InvalidInput(w, err.Error())
	case errors.Is(err, ErrInvalidInput):
		response.InvalidInput(w, err.Error())
	case errors.Is(err, ErrUpstreamUnavailable):
		errorhandler.HandleError(r.Context(), w, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Booking data is temporarily unavailable", err)
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
	}
}

func queryParams(r *http.Request) QueryParams {
	query := r.URL.Query()
	return QueryParams{
		PropertyID: query.Get("propertyId"),
		StartDate:  query.Get("startDate"),
		EndDate:    query.Get("endDate"),
		Month:      query.Get("month"),
		Year:       query.Get("year"),
	}
}

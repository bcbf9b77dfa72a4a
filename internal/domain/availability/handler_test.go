package availability

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestRouter(store BookingStore) http.Handler {
	h := NewHandler(NewService(store, fixedClock("2024-05-01"), Config{}))
	passthrough := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	r.Mount("/availability", h.Routes(passthrough))
	r.Mount("/properties", h.PropertyRoutes(passthrough))
	r.Mount("/admin/availability", h.AdminRoutes(passthrough, passthrough))
	return r
}

func doRequest(t *testing.T, router http.Handler, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v (%s)", path, err, rr.Body.String())
	}
	return rr, env
}

func TestHandlerModes(t *testing.T) {
	store := &stubStore{bookings: []Booking{booking("b1", "2024-06-01", "2024-06-04", StatusConfirmed)}}
	router := newTestRouter(store)

	t.Run("range", func(t *testing.T) {
		rr, env := doRequest(t, router, "/availability?propertyId=p1&startDate=2024-06-01&endDate=2024-06-05")
		if rr.Code != http.StatusOK || !env.Success {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var result struct {
			Availability map[string]DateAvailability `json:"availability"`
			Count        int                         `json:"bookings_count"`
		}
		if err := json.Unmarshal(env.Data, &result); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if len(result.Availability) != 5 || result.Count != 1 {
			t.Fatalf("unexpected result %+v", result)
		}
		if result.Availability["2024-06-03"].OccupyingBookingID != "b1" || !result.Availability["2024-06-04"].Available {
			t.Fatalf("unexpected calendar %+v", result.Availability)
		}
	})

	t.Run("month", func(t *testing.T) {
		rr, env := doRequest(t, router, "/availability?propertyId=p1&month=06&year=2024")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var result struct {
			Occupancy OccupancyStats `json:"occupancy"`
		}
		if err := json.Unmarshal(env.Data, &result); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if result.Occupancy.TotalDays != 30 || result.Occupancy.BookedDays != 3 || result.Occupancy.OccupancyRate != 10 {
			t.Fatalf("unexpected occupancy %+v", result.Occupancy)
		}
	})

	t.Run("summary", func(t *testing.T) {
		rr, env := doRequest(t, router, "/availability")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var result SummaryResult
		if err := json.Unmarshal(env.Data, &result); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if result.Properties["p1"].NextAvailableDate != date("2024-06-05") {
			t.Fatalf("unexpected summary %+v", result.Properties["p1"])
		}
	})

	t.Run("property path", func(t *testing.T) {
		rr, _ := doRequest(t, router, "/properties/p1/availability?startDate=2024-06-01&endDate=2024-06-02")
		if rr.Code != http.StatusOK || store.gotPropertyID != "p1" {
			t.Fatalf("expected 200 for p1, got %d (%q)", rr.Code, store.gotPropertyID)
		}
	})
}

func TestHandlerRejectsInvalidInput(t *testing.T) {
	router := newTestRouter(&stubStore{})

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"mixed modes", "/availability?propertyId=p1&startDate=2024-06-01&endDate=2024-06-02&month=06&year=2024", http.StatusBadRequest, "INVALID_INPUT"},
		{"range without property", "/availability?startDate=2024-06-01&endDate=2024-06-02", http.StatusBadRequest, "INVALID_INPUT"},
		{"property only", "/availability?propertyId=p1", http.StatusBadRequest, "INVALID_INPUT"},
		{"missing end", "/availability?propertyId=p1&startDate=2024-06-01", http.StatusBadRequest, "INVALID_INPUT"},
		{"missing year", "/availability?propertyId=p1&month=06", http.StatusBadRequest, "INVALID_INPUT"},
		{"inverted range", "/availability?propertyId=p1&startDate=2024-06-05&endDate=2024-06-01", http.StatusBadRequest, "INVALID_INPUT"},
		{"range too large", "/availability?propertyId=p1&startDate=2024-01-01&endDate=2025-12-31", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad date", "/availability?propertyId=p1&startDate=2024-02-30&endDate=2024-03-01", http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"bad month", "/availability?propertyId=p1&month=13&year=2024", http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"single digit month", "/availability?propertyId=p1&month=6&year=2024", http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"negative year", "/availability?propertyId=p1&month=06&year=-123", http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"fractional year", "/availability?propertyId=p1&month=06&year=1.05", http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"year zero", "/availability?propertyId=p1&month=06&year=0000", http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"path mismatch", "/properties/p1/availability?propertyId=p2&month=06&year=2024", http.StatusBadRequest, "INVALID_INPUT"},
		{"overlaps without window", "/admin/availability/overlaps", http.StatusBadRequest, "INVALID_INPUT"},
		{"overlaps bad date", "/admin/availability/overlaps?from=2024-01-01&to=tomorrow", http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"overlaps window too large", "/admin/availability/overlaps?from=2000-01-01&to=2024-12-31", http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := doRequest(t, router, tt.path)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if env.Success || env.Error == nil || env.Error.Code != tt.code {
				t.Fatalf("expected error code %s, got %+v", tt.code, env.Error)
			}
		})
	}
}

func TestHandlerUpstreamFailure(t *testing.T) {
	router := newTestRouter(&stubStore{err: errors.New("dial tcp: connection refused")})

	for _, path := range []string{
		"/availability",
		"/availability?propertyId=p1&startDate=2024-06-01&endDate=2024-06-02",
		"/availability?propertyId=p1&month=06&year=2024",
		"/admin/availability/overlaps?from=2024-06-01&to=2024-06-30",
	} {
		rr, env := doRequest(t, router, path)
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected 503, got %d", path, rr.Code)
		}
		if env.Error == nil || env.Error.Code != "UPSTREAM_UNAVAILABLE" {
			t.Fatalf("%s: unexpected error %+v", path, env.Error)
		}
	}
}

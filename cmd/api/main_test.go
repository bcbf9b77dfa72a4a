package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/staynest/booking-api/internal/config"
	"github.com/staynest/booking-api/internal/domain/availability"
	"github.com/staynest/booking-api/internal/middleware"
	"github.com/staynest/booking-api/internal/pkg/jwt"
)

type emptyStore struct{}

func (emptyStore) FetchBookingsForProperty(ctx context.Context, propertyID string, window availability.Window, statuses []availability.Status) ([]availability.Booking, error) {
	return nil, nil
}

func (emptyStore) FetchAllActiveBookings(ctx context.Context, asOf availability.Date) ([]availability.Booking, error) {
	return nil, nil
}

func (emptyStore) FetchBookingsInWindow(ctx context.Context, window availability.Window, statuses []availability.Status) ([]availability.Booking, error) {
	return nil, nil
}

func testRouter(t *testing.T) (http.Handler, *jwt.Service) {
	t.Helper()

	clock := func() availability.Date { return availability.NewDate(2024, time.January, 10) }
	service := availability.NewService(emptyStore{}, clock, availability.Config{})
	jwtService := jwt.NewService("test-secret", time.Minute)
	limiter := middleware.NewRateLimiter(nil, "availability", 10, time.Minute)

	cfg := &config.Config{AllowedOrigins: []string{"http://localhost:3000"}}
	return newRouter(cfg, availability.NewHandler(service), jwtService, limiter), jwtService
}

func TestRouterMountsAvailabilityRoutes(t *testing.T) {
	router, _ := testRouter(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"health", "/health", http.StatusOK},
		{"ping", "/api/v1/ping", http.StatusOK},
		{"summary", "/api/v1/availability", http.StatusOK},
		{"range", "/api/v1/availability?propertyId=p1&startDate=2024-01-01&endDate=2024-01-07", http.StatusOK},
		{"month", "/api/v1/availability?propertyId=p1&month=02&year=2024", http.StatusOK},
		{"property path", "/api/v1/properties/p1/availability?month=02&year=2024", http.StatusOK},
		{"unknown route", "/api/v1/bookings", http.StatusNotFound},
		{"mixed modes", "/api/v1/availability?propertyId=p1&startDate=2024-01-01&endDate=2024-01-07&month=01&year=2024", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestAdminOverlapsRequiresAdminToken(t *testing.T) {
	router, jwtService := testRouter(t)
	path := "/api/admin/availability/overlaps?from=2024-01-01&to=2024-01-31"

	t.Run("no token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	for _, tc := range []struct {
		role   string
		status int
	}{
		{"host", http.StatusForbidden},
		{"admin", http.StatusOK},
	} {
		t.Run(tc.role, func(t *testing.T) {
			token, err := jwtService.GenerateAccessToken(uuid.New(), tc.role)
			if err != nil {
				t.Fatalf("generate token: %v", err)
			}
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
		})
	}
}

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"connection failure", &pq.Error{Code: "08006"}, true},
		{"admin shutdown", fmt.Errorf("query: %w", &pq.Error{Code: "57P01"}), true},
		{"too many connections", &pq.Error{Code: "53300"}, true},
		{"deadline", context.DeadlineExceeded, true},
		{"syntax error", &pq.Error{Code: "42601"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Fatalf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorCode(t *testing.T) {
	err := fmt.Errorf("fetch: %w", &pq.Error{Code: "23P01"})
	if code := ErrorCode(err); code != "23P01" {
		t.Fatalf("expected 23P01, got %q", code)
	}
	if code := ErrorCode(errors.New("x")); code != "" {
		t.Fatalf("expected empty code, got %q", code)
	}
}

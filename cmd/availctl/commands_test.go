package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/staynest/booking-api/internal/domain/availability"
)

func TestParseWindow(t *testing.T) {
	w, err := parseWindow("2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Days() != 31 {
		t.Fatalf("expected 31 days, got %d", w.Days())
	}

	if _, err := parseWindow("2024-03-31", "2024-03-01"); !errors.Is(err, availability.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := parseWindow("03/01/2024", "2024-03-31"); err == nil {
		t.Fatal("expected error for malformed --from")
	}
}

func TestPrintOverlaps(t *testing.T) {
	var buf bytes.Buffer
	printOverlaps(&buf, &availability.OverlapReport{
		From: availability.NewDate(2024, time.March, 1),
		To:   availability.NewDate(2024, time.March, 31),
	})
	if !strings.Contains(buf.String(), "No overlapping bookings") {
		t.Fatalf("unexpected output: %q", buf.String())
	}

	buf.Reset()
	printOverlaps(&buf, &availability.OverlapReport{
		Overlaps: []availability.Overlap{{
			PropertyID: "p1",
			First:      "b1",
			Second:     "b2",
			From:       availability.NewDate(2024, time.March, 3),
			To:         availability.NewDate(2024, time.March, 5),
		}},
		Count: 1,
	})
	out := buf.String()
	if !strings.Contains(out, "2024-03-03") || !strings.Contains(out, "1 overlapping pair(s)") {
		t.Fatalf("unexpected output: %q", out)
	}
}

package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/staynest/booking-api/internal/domain/availability"
	"github.com/staynest/booking-api/internal/domain/booking"
)

type stubStore struct {
	properties []booking.Property
	bookings   []availability.Booking
	err        error
	gotWindow  availability.Window
}

func (s *stubStore) ListProperties(ctx context.Context) ([]booking.Property, error) {
	return s.properties, s.err
}

func (s *stubStore) FetchBookingsInWindow(ctx context.Context, window availability.Window, statuses []availability.Status) ([]availability.Booking, error) {
	s.gotWindow = window
	return s.bookings, s.err
}

type memoryStorage struct {
	objects  map[string][]byte
	failKeys map[string]bool
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte), failKeys: make(map[string]bool)}
}

func (m *memoryStorage) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if m.failKeys[key] {
		return errors.New("bucket unavailable")
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.objects[key] = body
	return nil
}

func (m *memoryStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memoryStorage) GetURL(key string) string {
	return "mem://" + key
}

func fixedNow() time.Time {
	return time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
}

func d(y int, m time.Month, day int) availability.Date {
	return availability.NewDate(y, m, day)
}

func TestExportMonthWritesOneReportPerProperty(t *testing.T) {
	price := 80.0
	store := &stubStore{
		properties: []booking.Property{{ID: "p1", Title: "Loft"}, {ID: "p2", Title: "Cabin"}},
		bookings: []availability.Booking{
			{ID: "b1", PropertyID: "p1", CheckIn: d(2024, time.February, 27), CheckOut: d(2024, time.March, 2), Status: availability.StatusConfirmed, Amount: &price},
		},
	}
	st := newMemoryStorage()

	summary, err := NewExporter(store, st, fixedNow).ExportMonth(context.Background(), 2024, time.February, ExportOptions{})
	if err != nil {
		t.Fatalf("ExportMonth: %v", err)
	}

	if store.gotWindow != (availability.Window{Start: d(2024, time.February, 1), End: d(2024, time.February, 29)}) {
		t.Fatalf("unexpected window %+v", store.gotWindow)
	}
	if len(summary.Written) != 2 || len(summary.Failed) != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	body, ok := st.objects[Key(2024, time.February, "p1")]
	if !ok {
		t.Fatalf("missing report for p1, have %v", summary.Written)
	}
	var doc struct {
		PropertyID string                      `json:"property_id"`
		Occupancy  availability.OccupancyStats `json:"occupancy"`
		Calendar   map[string]json.RawMessage  `json:"calendar"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if doc.PropertyID != "p1" || len(doc.Calendar) != 29 {
		t.Fatalf("unexpected report %+v", doc)
	}
	if doc.Occupancy.BookedDays != 3 || doc.Occupancy.Revenue != 60 {
		t.Fatalf("unexpected occupancy %+v", doc.Occupancy)
	}
}

func TestExportMonthContinuesAfterWriteFailure(t *testing.T) {
	store := &stubStore{properties: []booking.Property{{ID: "p1"}, {ID: "p2"}}}
	st := newMemoryStorage()
	st.failKeys[Key(2024, time.May, "p1")] = true

	summary, err := NewExporter(store, st, fixedNow).ExportMonth(context.Background(), 2024, time.May, ExportOptions{})
	if err != nil {
		t.Fatalf("ExportMonth: %v", err)
	}
	if len(summary.Failed) != 1 || summary.Failed["p1"] == "" {
		t.Fatalf("expected p1 to fail, got %+v", summary.Failed)
	}
	if len(summary.Written) != 1 || summary.Written[0] != Key(2024, time.May, "p2") {
		t.Fatalf("expected p2 to be written, got %v", summary.Written)
	}
}

func TestExportMonthSkipsExisting(t *testing.T) {
	store := &stubStore{properties: []booking.Property{{ID: "p1"}, {ID: "p2"}}}
	st := newMemoryStorage()
	st.objects[Key(2024, time.May, "p1")] = []byte("{}")

	summary, err := NewExporter(store, st, fixedNow).ExportMonth(context.Background(), 2024, time.May, ExportOptions{SkipExisting: true})
	if err != nil {
		t.Fatalf("ExportMonth: %v", err)
	}
	if len(summary.Existing) != 1 || len(summary.Written) != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if string(st.objects[Key(2024, time.May, "p1")]) != "{}" {
		t.Fatal("existing report was overwritten")
	}
}

func TestExportMonthErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := NewExporter(&stubStore{}, newMemoryStorage(), fixedNow).ExportMonth(ctx, 2024, 13, ExportOptions{}); !errors.Is(err, availability.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if _, err := NewExporter(&stubStore{}, newMemoryStorage(), fixedNow).ExportMonth(ctx, 2024, time.May, ExportOptions{}); !errors.Is(err, ErrNoProperties) {
		t.Fatalf("expected ErrNoProperties, got %v", err)
	}

	failing := &stubStore{err: errors.New("timeout")}
	if _, err := NewExporter(failing, newMemoryStorage(), fixedNow).ExportMonth(ctx, 2024, time.May, ExportOptions{}); !errors.Is(err, availability.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestKey(t *testing.T) {
	if got := Key(2024, time.March, "p1"); got != "reports/occupancy/2024-03/p1.json" {
		t.Fatalf("unexpected key %q", got)
	}
}

package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/staynest/booking-api/internal/domain/availability"
	"github.com/staynest/booking-api/internal/domain/booking"
	"github.com/staynest/booking-api/internal/pkg/errorhandler"
	"github.com/staynest/booking-api/internal/pkg/logger"
	"github.com/staynest/booking-api/internal/pkg/storage"
)

var ErrNoProperties = errors.New("no properties to export")

// Store is the subset of the booking repository the exporter reads
type Store interface {
	ListProperties(ctx context.Context) ([]booking.Property, error)
	FetchBookingsInWindow(ctx context.Context, window availability.Window, statuses []availability.Status) ([]availability.Booking, error)
}

// MonthlyReport is the document written per property and month
type MonthlyReport struct {
	PropertyID  string                        `json:"property_id"`
	Title       string                        `json:"title"`
	Year        int                           `json:"year"`
	Month       time.Month                    `json:"month"`
	GeneratedAt time.Time                     `json:"generated_at"`
	Occupancy   availability.OccupancyStats   `json:"occupancy"`
	Calendar    *availability.Calendar        `json:"calendar"`
	Warnings    []availability.SkippedBooking `json:"warnings,omitempty"`
	Conflicts   []availability.Conflict       `json:"conflicts,omitempty"`
}

// ExportSummary describes one export run
type ExportSummary struct {
	Year     int               `json:"year"`
	Month    time.Month        `json:"month"`
	Written  []string          `json:"written"`
	Existing []string          `json:"existing,omitempty"`
	Failed   map[string]string `json:"failed,omitempty"`
	Bookings int               `json:"bookings"`
}

// ExportOptions tunes one export run
type ExportOptions struct {
	// SkipExisting leaves reports already present in storage untouched.
	SkipExisting bool
}

// Exporter writes monthly occupancy reports to object storage
type Exporter struct {
	store   Store
	storage storage.Storage
	now     func() time.Time
}

// NewExporter creates report exporter
func NewExporter(store Store, st storage.Storage, now func() time.Time) *Exporter {
	if now == nil {
		now = time.Now
	}
	return &Exporter{store: store, storage: st, now: now}
}

// Key returns the object key of a property's monthly report
func Key(year int, month time.Month, propertyID string) string {
	return fmt.Sprintf("reports/occupancy/%04d-%02d/%s.json", year, int(month), propertyID)
}

// ExportMonth projects every property's month and writes one report per property.
// A failed write does not stop the run; failures are returned in the summary.
func (e *Exporter) ExportMonth(ctx context.Context, year int, month time.Month, opts ExportOptions) (*ExportSummary, error) {
	if month < time.January || month > time.December || year < 1 || year > 9999 {
		return nil, availability.ErrInvalidMonth
	}

	properties, err := e.store.ListProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", availability.ErrUpstreamUnavailable, err)
	}
	if len(properties) == 0 {
		return nil, ErrNoProperties
	}

	window := availability.Window{
		Start: availability.Date{Year: year, Month: month, Day: 1},
		End:   availability.Date{Year: year, Month: month, Day: availability.DaysInMonth(year, month)},
	}
	bookings, err := e.store.FetchBookingsInWindow(ctx, window, availability.CalendarStatuses)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", availability.ErrUpstreamUnavailable, err)
	}

	byProperty := make(map[string][]availability.Booking)
	for _, b := range bookings {
		byProperty[b.PropertyID] = append(byProperty[b.PropertyID], b)
	}

	summary := &ExportSummary{Year: year, Month: month, Bookings: len(bookings)}
	generatedAt := e.now().UTC()

	for _, p := range properties {
		key := Key(year, month, p.ID)
		if opts.SkipExisting {
			exists, err := e.storage.Exists(ctx, key)
			if err != nil {
				errorhandler.LogExternalServiceError(ctx, "storage", "exists "+key, storage.ErrorCode(err), err)
			} else if exists {
				summary.Existing = append(summary.Existing, key)
				continue
			}
		}

		projection, err := availability.ProjectMonth(year, month, byProperty[p.ID])
		if err != nil {
			return nil, err
		}

		doc := MonthlyReport{
			PropertyID:  p.ID,
			Title:       p.Title,
			Year:        year,
			Month:       month,
			GeneratedAt: generatedAt,
			Occupancy:   availability.ComputeOccupancy(projection.Calendar),
			Calendar:    projection.Calendar,
			Warnings:    projection.Skipped,
			Conflicts:   projection.Conflicts,
		}

		if err := e.write(ctx, key, doc); err != nil {
			if summary.Failed == nil {
				summary.Failed = make(map[string]string)
			}
			summary.Failed[p.ID] = err.Error()
			errorhandler.LogExternalServiceError(ctx, "storage", "put "+key, storage.ErrorCode(err), err)
			continue
		}
		summary.Written = append(summary.Written, key)
	}

	logger.LogInfo(ctx, "Occupancy export finished",
		"year", year,
		"month", int(month),
		"written", len(summary.Written),
		"existing", len(summary.Existing),
		"failed", len(summary.Failed),
	)
	return summary, nil
}

func (e *Exporter) write(ctx context.Context, key string, doc MonthlyReport) error {
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return e.storage.Put(ctx, key, bytes.NewReader(body), "application/json")
}

package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/staynest/booking-api/internal/pkg/logger"
)

// BookingStore is the read side of the booking storage layer.
//
// Implementations must guarantee that no two active bookings of one property
// overlap; the projector relies on it and only reports violations.
type BookingStore interface {
	FetchBookingsForProperty(ctx context.Context, propertyID string, window Window, statuses []Status) ([]Booking, error)
	FetchAllActiveBookings(ctx context.Context, asOf Date) ([]Booking, error)
	FetchBookingsInWindow(ctx context.Context, window Window, statuses []Status) ([]Booking, error)
}

// Clock returns the current calendar date.
type Clock func() Date

// UTCClock reads today's date from the wall clock in UTC.
func UTCClock() Date {
	return DateOf(time.Now())
}

// Config tunes the service.
type Config struct {
	MaxRangeDays   int
	MaxOverlapDays int
	StoreTimeout   time.Duration
}

// Service answers availability queries on top of a BookingStore.
type Service struct {
	store BookingStore
	clock Clock
	cfg   Config
}

// NewService creates availability service
func NewService(store BookingStore, clock Clock, cfg Config) *Service {
	if clock == nil {
		clock = UTCClock
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 366
	}
	if cfg.MaxOverlapDays <= 0 {
		cfg.MaxOverlapDays = 731
	}
	return &Service{store: store, clock: clock, cfg: cfg}
}

// RangeAvailability projects a property's bookings onto [start, end].
func (s *Service) RangeAvailability(ctx context.Context, propertyID string, start, end Date) (*RangeResult, error) {
	if propertyID == "" {
		return nil, fmt.Errorf("%w: property id is required", ErrInvalidInput)
	}
	if start.IsZero() || end.IsZero() || start.After(end) {
		return nil, ErrInvalidRange
	}
	window := Window{Start: start, End: end}
	if window.Days() > s.cfg.MaxRangeDays {
		return nil, fmt.Errorf("%w: more than %d days", ErrRangeTooLarge, s.cfg.MaxRangeDays)
	}

	bookings, err := s.fetchForProperty(ctx, propertyID, window)
	if err != nil {
		return nil, err
	}

	projection, err := Project(start, end, bookings)
	if err != nil {
		return nil, err
	}
	s.report(ctx, propertyID, projection)

	return &RangeResult{
		PropertyID:    propertyID,
		StartDate:     start,
		EndDate:       end,
		Availability:  projection.Calendar,
		BookingsCount: projection.BookingsCount,
		Warnings:      projection.Skipped,
		WarningCount:  len(projection.Skipped),
		Conflicts:     projection.Conflicts,
	}, nil
}

// MonthAvailability builds the occupancy calendar of a property for one month.
func (s *Service) MonthAvailability(ctx context.Context, propertyID string, year int, month time.Month) (*MonthResult, error) {
	if propertyID == "" {
		return nil, fmt.Errorf("%w: property id is required", ErrInvalidInput)
	}
	if month < time.January || month > time.December || year < 1 || year > 9999 {
		return nil, ErrInvalidMonth
	}
	window := Window{
		Start: Date{Year: year, Month: month, Day: 1},
		End:   Date{Year: year, Month: month, Day: DaysInMonth(year, month)},
	}

	bookings, err := s.fetchForProperty(ctx, propertyID, window)
	if err != nil {
		return nil, err
	}

	projection, err := ProjectMonth(year, month, bookings)
	if err != nil {
		return nil, err
	}
	s.report(ctx, propertyID, projection)

	if bookings == nil {
		bookings = []Booking{}
	}
	return &MonthResult{
		PropertyID:   propertyID,
		Year:         year,
		Month:        month,
		Calendar:     projection.Calendar,
		Occupancy:    ComputeOccupancy(projection.Calendar),
		Bookings:     bookings,
		Warnings:     projection.Skipped,
		WarningCount: len(projection.Skipped),
		Conflicts:    projection.Conflicts,
	}, nil
}

// Summary returns the next available date of every property with active bookings.
func (s *Service) Summary(ctx context.Context) (*SummaryResult, error) {
	asOf := s.clock()

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	bookings, err := s.store.FetchAllActiveBookings(storeCtx, asOf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	summaries, skipped := SummarizeWithSkipped(bookings, asOf)
	for _, sk := range skipped {
		logger.LogWarn(ctx, "Skipping malformed booking", "booking_id", sk.BookingID, "reason", sk.Reason)
	}

	total := 0
	for _, summary := range summaries {
		total += len(summary.ActiveBookings)
	}

	return &SummaryResult{
		AsOf:                asOf,
		Properties:          summaries,
		TotalActiveBookings: total,
		WarningCount:        len(skipped),
	}, nil
}

// Overlaps scans active bookings intersecting the window for double bookings.
func (s *Service) Overlaps(ctx context.Context, window Window) (*OverlapReport, error) {
	if window.Start.IsZero() || window.End.IsZero() || window.Start.After(window.End) {
		return nil, ErrInvalidRange
	}
	if window.Days() > s.cfg.MaxOverlapDays {
		return nil, fmt.Errorf("%w: more than %d days", ErrRangeTooLarge, s.cfg.MaxOverlapDays)
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	bookings, err := s.store.FetchBookingsInWindow(storeCtx, window, ActiveStatuses)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	overlaps := DetectOverlaps(bookings)
	if len(overlaps) > 0 {
		logger.LogWarn(ctx, "Overlapping active bookings detected",
			"count", len(overlaps),
			"from", window.Start.String(),
			"to", window.End.String(),
		)
	}
	if overlaps == nil {
		overlaps = []Overlap{}
	}

	return &OverlapReport{From: window.Start, To: window.End, Overlaps: overlaps, Count: len(overlaps)}, nil
}

func (s *Service) fetchForProperty(ctx context.Context, propertyID string, window Window) ([]Booking, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	bookings, err := s.store.FetchBookingsForProperty(storeCtx, propertyID, window, CalendarStatuses)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	return bookings, nil
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// report logs skipped records and conflicts; the projection itself stays pure.
func (s *Service) report(ctx context.Context, propertyID string, p *Projection) {
	for _, sk := range p.Skipped {
		logger.LogWarn(ctx, "Skipping malformed booking",
			"property_id", propertyID,
			"booking_id", sk.BookingID,
			"reason", sk.Reason,
		)
	}
	for _, c := range p.Conflicts {
		logger.LogWarn(ctx, "Date claimed by more than one booking",
			"property_id", propertyID,
			"date", c.Date.String(),
			"booking_ids", c.BookingIDs,
		)
	}
}

package availability

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ActiveStatuses are the statuses that block future nights.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// CalendarStatuses are the statuses shown on range and month calendars.
var CalendarStatuses = []Status{StatusPending, StatusConfirmed, StatusCompleted}

// Occupies reports whether a booking with this status claims its nights.
// Cancelled and unknown statuses never occupy.
func (s Status) Occupies() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted:
		return true
	}
	return false
}

// IsActive reports whether the booking is still upcoming or in progress.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Booking is a read-only reservation row handed to the projector.
type Booking struct {
	ID           string   `json:"id"`
	PropertyID   string   `json:"property_id"`
	PropertyName string   `json:"property_name,omitempty"`
	CheckIn      Date     `json:"check_in"`
	CheckOut     Date     `json:"check_out"`
	Status       Status   `json:"status"`
	GuestName    *string  `json:"guest_name,omitempty"`
	Amount       *float64 `json:"amount,omitempty"`
}

// Validate checks the per-record preconditions of the projector.
func (b Booking) Validate() error {
	switch {
	case b.CheckIn.IsZero():
		return fmt.Errorf("%w: missing check-in date", ErrMalformedBooking)
	case b.CheckOut.IsZero():
		return fmt.Errorf("%w: missing check-out date", ErrMalformedBooking)
	case !b.CheckIn.Before(b.CheckOut):
		return fmt.Errorf("%w: check-in %s is not before check-out %s", ErrMalformedBooking, b.CheckIn, b.CheckOut)
	}
	return nil
}

// Nights returns the number of nights between check-in and check-out.
func (b Booking) Nights() int {
	return b.CheckIn.DaysUntil(b.CheckOut)
}

// DateAvailability is the derived state of a single calendar date.
type DateAvailability struct {
	Date               Date     `json:"date"`
	Available          bool     `json:"available"`
	OccupyingBookingID string   `json:"occupying_booking_id,omitempty"`
	OccupyingStatus    Status   `json:"occupying_status,omitempty"`
	Revenue            *float64 `json:"revenue,omitempty"`
	Conflicts          []string `json:"conflicts,omitempty"`

	// nightly is the occupying booking's amount spread over its nights.
	nightly float64
}

// Calendar holds exactly one entry per date of a window, in calendar order.
type Calendar struct {
	start Date
	days  []DateAvailability
}

func newCalendar(start, end Date) *Calendar {
	n := start.DaysUntil(end) + 1
	days := make([]DateAvailability, n)
	for i := range days {
		days[i] = DateAvailability{Date: start.AddDays(i), Available: true}
	}
	return &Calendar{start: start, days: days}
}

// Len returns the number of dates in the calendar.
func (c *Calendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.days)
}

// Days returns a copy of the entries in calendar order.
func (c *Calendar) Days() []DateAvailability {
	if c == nil {
		return nil
	}
	out := make([]DateAvailability, len(c.days))
	copy(out, c.days)
	return out
}

// Get returns the entry for d, if d is inside the window.
func (c *Calendar) Get(d Date) (DateAvailability, bool) {
	i, ok := c.index(d)
	if !ok {
		return DateAvailability{}, false
	}
	return c.days[i], true
}

func (c *Calendar) index(d Date) (int, bool) {
	if c == nil || len(c.days) == 0 {
		return 0, false
	}
	i := c.start.DaysUntil(d)
	if i < 0 || i >= len(c.days) {
		return 0, false
	}
	return i, true
}

// MarshalJSON encodes the calendar as an object keyed by YYYY-MM-DD.
// encoding/json sorts map keys, which for ISO dates is calendar order.
func (c *Calendar) MarshalJSON() ([]byte, error) {
	m := make(map[string]DateAvailability, c.Len())
	if c != nil {
		for _, d := range c.days {
			m[d.Date.String()] = d
		}
	}
	return json.Marshal(m)
}

// SkippedBooking records a malformed booking left out of a projection.
type SkippedBooking struct {
	BookingID string `json:"booking_id"`
	Reason    string `json:"reason"`
}

// Conflict is a date claimed by more than one occupying booking.
type Conflict struct {
	Date       Date     `json:"date"`
	BookingIDs []string `json:"booking_ids"`
}

// Projection is the result of projecting bookings onto a window.
type Projection struct {
	Calendar      *Calendar
	BookingsCount int
	Skipped       []SkippedBooking
	Conflicts     []Conflict
}

// OccupancyStats summarizes a calendar.
type OccupancyStats struct {
	TotalDays     int     `json:"total_days"`
	BookedDays    int     `json:"booked_days"`
	AvailableDays int     `json:"available_days"`
	OccupancyRate float64 `json:"occupancy_rate"`
	Revenue       float64 `json:"revenue"`
}

// PropertyAvailabilitySummary is the cross-property next-available view of one property.
type PropertyAvailabilitySummary struct {
	PropertyID        string    `json:"property_id"`
	DisplayName       string    `json:"display_name"`
	ActiveBookings    []Booking `json:"active_bookings"`
	NextAvailableDate Date      `json:"next_available_date"`
}

// Overlap is a pair of active bookings of one property sharing nights [From, To).
type Overlap struct {
	PropertyID string `json:"property_id"`
	First      string `json:"first_booking_id"`
	Second     string `json:"second_booking_id"`
	From       Date   `json:"from"`
	To         Date   `json:"to"`
}

// Window is an inclusive date range used to fetch bookings.
type Window struct {
	Start Date
	End   Date
}

func (w Window) Days() int {
	return w.Start.DaysUntil(w.End) + 1
}

package availability

import (
	"math"
	"sort"
	"time"
)

// Project builds the availability of every date in [start, end] (both inclusive).
//
// Precondition: the store guarantees no two active bookings of a property overlap.
// When the precondition is broken, the first booking in caller order keeps the date
// and later claimants are reported in Conflicts instead of overwriting it.
func Project(start, end Date, bookings []Booking) (*Projection, error) {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return nil, ErrInvalidRange
	}
	return project(start, end, bookings, false), nil
}

// ProjectMonth builds the calendar of a month and attaches revenue to occupied days.
func ProjectMonth(year int, month time.Month, bookings []Booking) (*Projection, error) {
	if month < time.January || month > time.December || year < 1 || year > 9999 {
		return nil, ErrInvalidMonth
	}
	start := Date{Year: year, Month: month, Day: 1}
	end := Date{Year: year, Month: month, Day: DaysInMonth(year, month)}
	return project(start, end, bookings, true), nil
}

func project(start, end Date, bookings []Booking, withRevenue bool) *Projection {
	p := &Projection{Calendar: newCalendar(start, end)}
	conflicts := make(map[Date][]string)

	for _, b := range bookings {
		if err := b.Validate(); err != nil {
			p.Skipped = append(p.Skipped, SkippedBooking{BookingID: b.ID, Reason: err.Error()})
			continue
		}
		if !b.Status.Occupies() {
			continue
		}
		// [CheckIn, CheckOut) against [start, end]
		if b.CheckIn.After(end) || !b.CheckOut.After(start) {
			continue
		}
		p.BookingsCount++

		from := maxDate(b.CheckIn, start)
		to := minDate(b.CheckOut.AddDays(-1), end)
		for d := from; !d.After(to); d = d.AddDays(1) {
			i, ok := p.Calendar.index(d)
			if !ok {
				break
			}
			day := &p.Calendar.days[i]
			if !day.Available {
				if day.OccupyingBookingID != b.ID {
					day.Conflicts = append(day.Conflicts, b.ID)
					if len(conflicts[d]) == 0 {
						conflicts[d] = append(conflicts[d], day.OccupyingBookingID)
					}
					conflicts[d] = append(conflicts[d], b.ID)
				}
				continue
			}
			day.Available = false
			day.OccupyingBookingID = b.ID
			day.OccupyingStatus = b.Status
			if withRevenue && b.Amount != nil {
				amount := *b.Amount
				day.Revenue = &amount
				day.nightly = amount / float64(b.Nights())
			}
		}
	}

	for d, ids := range conflicts {
		p.Conflicts = append(p.Conflicts, Conflict{Date: d, BookingIDs: ids})
	}
	sort.Slice(p.Conflicts, func(i, j int) bool {
		return p.Conflicts[i].Date.Before(p.Conflicts[j].Date)
	})
	return p
}

// ComputeOccupancy derives booked/available counts and the occupancy rate of a calendar.
// Revenue counts each booking once: its amount is spread evenly over its nights and
// only the nights inside the calendar contribute.
func ComputeOccupancy(cal *Calendar) OccupancyStats {
	stats := OccupancyStats{TotalDays: cal.Len()}
	if stats.TotalDays == 0 {
		return stats
	}
	for _, d := range cal.days {
		if d.Available {
			continue
		}
		stats.BookedDays++
		stats.Revenue += d.nightly
	}
	stats.AvailableDays = stats.TotalDays - stats.BookedDays
	stats.OccupancyRate = roundTo2(float64(stats.BookedDays) / float64(stats.TotalDays) * 100)
	stats.Revenue = roundTo2(stats.Revenue)
	return stats
}

// math.Round rounds half away from zero.
func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

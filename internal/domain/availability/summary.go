package availability

import "sort"

// Summarize computes the next available date of every property that has active
// bookings ending on or after asOf. Properties without such bookings are absent:
// callers treat absence as "available from asOf".
func Summarize(bookings []Booking, asOf Date) map[string]*PropertyAvailabilitySummary {
	summaries, _ := SummarizeWithSkipped(bookings, asOf)
	return summaries
}

// SummarizeWithSkipped is Summarize that also returns the malformed records it dropped.
func SummarizeWithSkipped(bookings []Booking, asOf Date) (map[string]*PropertyAvailabilitySummary, []SkippedBooking) {
	summaries := make(map[string]*PropertyAvailabilitySummary)
	var skipped []SkippedBooking

	for _, b := range bookings {
		if err := b.Validate(); err != nil {
			skipped = append(skipped, SkippedBooking{BookingID: b.ID, Reason: err.Error()})
			continue
		}
		if !b.Status.IsActive() || b.CheckOut.Before(asOf) {
			continue
		}

		s, ok := summaries[b.PropertyID]
		if !ok {
			s = &PropertyAvailabilitySummary{PropertyID: b.PropertyID, DisplayName: b.PropertyName}
			summaries[b.PropertyID] = s
		}
		if s.DisplayName == "" {
			s.DisplayName = b.PropertyName
		}
		s.ActiveBookings = append(s.ActiveBookings, b)

		next := b.CheckOut.AddDays(1)
		if next.After(s.NextAvailableDate) {
			s.NextAvailableDate = next
		}
	}

	for _, s := range summaries {
		if s.DisplayName == "" {
			s.DisplayName = s.PropertyID
		}
		sort.SliceStable(s.ActiveBookings, func(i, j int) bool {
			return s.ActiveBookings[i].CheckIn.Before(s.ActiveBookings[j].CheckIn)
		})
	}
	return summaries, skipped
}

// DetectOverlaps reports every pair of active bookings of the same property whose
// [CheckIn, CheckOut) intervals intersect. It is the offline counterpart of the
// store's no-double-booking guarantee and never fails.
func DetectOverlaps(bookings []Booking) []Overlap {
	byProperty := make(map[string][]Booking)
	for _, b := range bookings {
		if b.Validate() != nil || !b.Status.IsActive() {
			continue
		}
		byProperty[b.PropertyID] = append(byProperty[b.PropertyID], b)
	}

	propertyIDs := make([]string, 0, len(byProperty))
	for id := range byProperty {
		propertyIDs = append(propertyIDs, id)
	}
	sort.Strings(propertyIDs)

	var overlaps []Overlap
	for _, id := range propertyIDs {
		group := byProperty[id]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CheckIn.Before(group[j].CheckIn)
		})
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				// sorted by check-in: nothing later can overlap group[i]
				if !group[j].CheckIn.Before(group[i].CheckOut) {
					break
				}
				overlaps = append(overlaps, Overlap{
					PropertyID: id,
					First:      group[i].ID,
					Second:     group[j].ID,
					From:       group[j].CheckIn,
					To:         minDate(group[i].CheckOut, group[j].CheckOut),
				})
			}
		}
	}
	return overlaps
}

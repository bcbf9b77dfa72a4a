package availability

import "time"

// QueryParams are the raw query parameters of the availability endpoint.
type QueryParams struct {
	PropertyID string `json:"propertyId" validate:"required,max=64"`
	StartDate  string `json:"startDate" validate:"omitempty,isodate"`
	EndDate    string `json:"endDate" validate:"omitempty,isodate"`
	Month      string `json:"month" validate:"omitempty,month_mm"`
	Year       string `json:"year" validate:"omitempty,yyyy"`
}

// Mode is the query mode selected by the parameters present.
type Mode string

const (
	ModeRange   Mode = "range"
	ModeMonth   Mode = "month"
	ModeSummary Mode = "summary"
)

func (q QueryParams) hasRange() bool {
	return q.StartDate != "" || q.EndDate != ""
}

func (q QueryParams) hasMonth() bool {
	return q.Month != "" || q.Year != ""
}

// Mode picks the query mode. The three modes are mutually exclusive and a
// partially specified mode is an error rather than a silent default.
func (q QueryParams) Mode() (Mode, string) {
	switch {
	case q.PropertyID == "" && !q.hasRange() && !q.hasMonth():
		return ModeSummary, ""
	case q.hasRange() && q.hasMonth():
		return "", "startDate/endDate cannot be combined with month/year"
	case q.PropertyID == "":
		return "", "propertyId is required"
	case q.hasRange():
		if q.StartDate == "" || q.EndDate == "" {
			return "", "startDate and endDate are both required"
		}
		return ModeRange, ""
	case q.hasMonth():
		if q.Month == "" || q.Year == "" {
			return "", "month and year are both required"
		}
		return ModeMonth, ""
	}
	return "", "either startDate/endDate or month/year is required with propertyId"
}

// RangeResult is the response of range mode.
type RangeResult struct {
	PropertyID    string           `json:"property_id"`
	StartDate     Date             `json:"start_date"`
	EndDate       Date             `json:"end_date"`
	Availability  *Calendar        `json:"availability"`
	BookingsCount int              `json:"bookings_count"`
	Warnings      []SkippedBooking `json:"warnings,omitempty"`
	WarningCount  int              `json:"warning_count"`
	Conflicts     []Conflict       `json:"conflicts,omitempty"`
}

// MonthResult is the response of month mode.
type MonthResult struct {
	PropertyID   string           `json:"property_id"`
	Year         int              `json:"year"`
	Month        time.Month       `json:"month"`
	Calendar     *Calendar        `json:"calendar"`
	Occupancy    OccupancyStats   `json:"occupancy"`
	Bookings     []Booking        `json:"bookings"`
	Warnings     []SkippedBooking `json:"warnings,omitempty"`
	WarningCount int              `json:"warning_count"`
	Conflicts    []Conflict       `json:"conflicts,omitempty"`
}

// SummaryResult is the response of summary mode.
type SummaryResult struct {
	AsOf                Date                                    `json:"as_of"`
	Properties          map[string]*PropertyAvailabilitySummary `json:"properties"`
	TotalActiveBookings int                                     `json:"total_active_bookings"`
	WarningCount        int                                     `json:"warning_count"`
}

// OverlapReport is the admin data-quality report.
type OverlapReport struct {
	From     Date      `json:"from"`
	To       Date      `json:"to"`
	Overlaps []Overlap `json:"overlaps"`
	Count    int       `json:"count"`
}

package booking

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/staynest/booking-api/internal/domain/availability"
	"github.com/staynest/booking-api/internal/pkg/errorhandler"
)

// Property is a bookable listing
type Property struct {
	ID    string `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
}

// Repository reads bookings from Postgres.
//
// The no-double-booking guarantee is enforced on write by the
// bookings_no_overlap exclusion constraint, not here.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates booking repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type bookingRow struct {
	ID           string          `db:"id"`
	PropertyID   string          `db:"property_id"`
	PropertyName sql.NullString  `db:"property_name"`
	CheckIn      sql.NullTime    `db:"check_in"`
	CheckOut     sql.NullTime    `db:"check_out"`
	Status       string          `db:"status"`
	GuestName    sql.NullString  `db:"guest_name"`
	Amount       sql.NullFloat64 `db:"amount"`
}

const bookingSelect = `
	SELECT b.id, b.property_id, p.title AS property_name,
	       b.check_in, b.check_out, b.status, b.guest_name, b.total_amount AS amount
	FROM bookings b
	LEFT JOIN properties p ON p.id = b.property_id
`

// FetchBookingsForProperty returns bookings of one property whose
// [check_in, check_out) interval intersects the inclusive window.
// Rows come back in creation order, which is the order the projector
// uses to decide who keeps a contested date.
func (r *Repository) FetchBookingsForProperty(ctx context.Context, propertyID string, window availability.Window, statuses []availability.Status) ([]availability.Booking, error) {
	query := bookingSelect + `
		WHERE b.property_id = $1
		  AND b.status = ANY($2)
		  AND b.check_in <= $3
		  AND b.check_out > $4
		ORDER BY b.created_at, b.id
	`

	var rows []bookingRow
	err := r.db.SelectContext(ctx, &rows, query,
		propertyID, pq.Array(statusStrings(statuses)), window.End.Time(), window.Start.Time())
	if err != nil {
		return nil, queryError(ctx, "fetch bookings for property "+propertyID, err)
	}
	return toBookings(rows), nil
}

// FetchAllActiveBookings returns pending/confirmed bookings that have not ended before asOf.
func (r *Repository) FetchAllActiveBookings(ctx context.Context, asOf availability.Date) ([]availability.Booking, error) {
	query := bookingSelect + `
		WHERE b.status = ANY($1)
		  AND b.check_out >= $2
		ORDER BY b.property_id, b.check_in
	`

	var rows []bookingRow
	err := r.db.SelectContext(ctx, &rows, query,
		pq.Array(statusStrings(availability.ActiveStatuses)), asOf.Time())
	if err != nil {
		return nil, queryError(ctx, "fetch active bookings", err)
	}
	return toBookings(rows), nil
}

// FetchBookingsInWindow returns bookings of every property intersecting the window.
func (r *Repository) FetchBookingsInWindow(ctx context.Context, window availability.Window, statuses []availability.Status) ([]availability.Booking, error) {
	query := bookingSelect + `
		WHERE b.status = ANY($1)
		  AND b.check_in <= $2
		  AND b.check_out > $3
		ORDER BY b.property_id, b.created_at, b.id
	`

	var rows []bookingRow
	err := r.db.SelectContext(ctx, &rows, query,
		pq.Array(statusStrings(statuses)), window.End.Time(), window.Start.Time())
	if err != nil {
		return nil, queryError(ctx, "fetch bookings in window", err)
	}
	return toBookings(rows), nil
}

// ListProperties returns every property ordered by id
func (r *Repository) ListProperties(ctx context.Context) ([]Property, error) {
	var properties []Property
	err := r.db.SelectContext(ctx, &properties, `SELECT id, COALESCE(title, '') AS title FROM properties ORDER BY id`)
	if err != nil {
		return nil, queryError(ctx, "list properties", err)
	}
	return properties, nil
}

func queryError(ctx context.Context, op string, err error) error {
	errorhandler.LogDatabaseError(ctx, op, err)
	return fmt.Errorf("%s: %w", op, err)
}

func statusStrings(statuses []availability.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func toBookings(rows []bookingRow) []availability.Booking {
	bookings := make([]availability.Booking, 0, len(rows))
	for _, row := range rows {
		b := availability.Booking{
			ID:           row.ID,
			PropertyID:   row.PropertyID,
			PropertyName: row.PropertyName.String,
			CheckIn:      columnDate(row.CheckIn),
			CheckOut:     columnDate(row.CheckOut),
			Status:       availability.Status(row.Status),
		}
		if row.GuestName.Valid {
			name := row.GuestName.String
			b.GuestName = &name
		}
		if row.Amount.Valid {
			amount := row.Amount.Float64
			b.Amount = &amount
		}
		bookings = append(bookings, b)
	}
	return bookings
}

// DATE columns carry no zone; read the calendar day as the driver returned it.
func columnDate(t sql.NullTime) availability.Date {
	if !t.Valid || t.Time.IsZero() {
		return availability.Date{}
	}
	y, m, d := t.Time.Date()
	return availability.Date{Year: y, Month: m, Day: d}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/staynest/booking-api/internal/config"
	"github.com/staynest/booking-api/internal/domain/availability"
	"github.com/staynest/booking-api/internal/domain/booking"
	"github.com/staynest/booking-api/internal/domain/report"
	"github.com/staynest/booking-api/internal/pkg/database"
	"github.com/staynest/booking-api/internal/pkg/logger"
	"github.com/staynest/booking-api/internal/pkg/storage"
)

var errOverlapsFound = errors.New("overlapping bookings found")

func setup(ctx context.Context) (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env}); err != nil {
		return nil, nil, err
	}

	db, err := database.NewPostgres(ctx, database.DefaultPostgresConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, db, nil
}

func newService(cfg *config.Config, repo *booking.Repository) *availability.Service {
	return availability.NewService(repo, availability.UTCClock, availability.Config{
		MaxRangeDays:   cfg.AvailabilityMaxRange,
		MaxOverlapDays: cfg.OverlapMaxRange,
		StoreTimeout:   cfg.StoreTimeout(),
	})
}

func checkOverlapsCmd() *cobra.Command {
	var from, to string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check-overlaps",
		Short: "Report active bookings of one property that share nights",
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := parseWindow(from, to)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, db, err := setup(ctx)
			if err != nil {
				return err
			}
			defer database.ClosePostgres(db)

			result, err := newService(cfg, booking.NewRepository(db)).Overlaps(ctx, window)
			if err != nil {
				return err
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				printOverlaps(cmd.OutOrStdout(), result)
			}

			if result.Count > 0 {
				return errOverlapsFound
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date to scan (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date to scan (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func exportOccupancyCmd() *cobra.Command {
	var year, month int
	var skipExisting bool

	cmd := &cobra.Command{
		Use:   "export-occupancy",
		Short: "Write monthly occupancy reports for every property",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month < 1 || month > 12 {
				return fmt.Errorf("--month must be between 1 and 12, got %d", month)
			}

			ctx := cmd.Context()
			cfg, db, err := setup(ctx)
			if err != nil {
				return err
			}
			defer database.ClosePostgres(db)

			st, err := reportStorage(ctx, cfg)
			if err != nil {
				return err
			}

			exporter := report.NewExporter(booking.NewRepository(db), st, time.Now)
			summary, err := exporter.ExportMonth(ctx, year, time.Month(month), report.ExportOptions{SkipExisting: skipExisting})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, key := range summary.Written {
				fmt.Fprintf(out, "written   %s\n", st.GetURL(key))
			}
			for _, key := range summary.Existing {
				fmt.Fprintf(out, "existing  %s\n", st.GetURL(key))
			}
			for id, reason := range summary.Failed {
				fmt.Fprintf(out, "failed    %s: %s\n", id, reason)
			}
			if len(summary.Failed) > 0 {
				return fmt.Errorf("%d of %d reports failed", len(summary.Failed), len(summary.Failed)+len(summary.Written)+len(summary.Existing))
			}
			return nil
		},
	}

	now := time.Now().UTC()
	cmd.Flags().IntVar(&year, "year", now.Year(), "report year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "report month (1-12)")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "keep reports already in storage")

	return cmd
}

func calendarCmd() *cobra.Command {
	var propertyID string
	var year, month int

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print one property's month calendar with occupancy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, db, err := setup(ctx)
			if err != nil {
				return err
			}
			defer database.ClosePostgres(db)

			result, err := newService(cfg, booking.NewRepository(db)).MonthAvailability(ctx, propertyID, year, time.Month(month))
			if err != nil {
				return err
			}
			printCalendar(cmd.OutOrStdout(), result)
			return nil
		},
	}

	now := time.Now().UTC()
	cmd.Flags().StringVar(&propertyID, "property", "", "property id")
	cmd.Flags().IntVar(&year, "year", now.Year(), "calendar year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "calendar month (1-12)")
	_ = cmd.MarkFlagRequired("property")

	return cmd
}

func reportStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.R2Enabled() {
		return storage.NewR2Storage(ctx, storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
	}
	log.Warn().Str("dir", cfg.ReportsDir).Msg("R2 not configured, writing reports to local disk")
	return storage.NewLocalStorage(cfg.ReportsDir, cfg.ReportsBaseURL)
}

func parseWindow(from, to string) (availability.Window, error) {
	start, err := availability.ParseDate(from)
	if err != nil {
		return availability.Window{}, fmt.Errorf("--from: %w", err)
	}
	end, err := availability.ParseDate(to)
	if err != nil {
		return availability.Window{}, fmt.Errorf("--to: %w", err)
	}
	if start.After(end) {
		return availability.Window{}, availability.ErrInvalidRange
	}
	return availability.Window{Start: start, End: end}, nil
}

func printOverlaps(w io.Writer, r *availability.OverlapReport) {
	if r.Count == 0 {
		fmt.Fprintf(w, "No overlapping bookings between %s and %s.\n", r.From, r.To)
		return
	}

	fmt.Fprintf(w, "%-20s  %-20s  %-20s  %-10s  %-10s\n", "Property", "First", "Second", "From", "To")
	for _, o := range r.Overlaps {
		fmt.Fprintf(w, "%-20s  %-20s  %-20s  %-10s  %-10s\n", o.PropertyID, o.First, o.Second, o.From, o.To)
	}
	fmt.Fprintf(w, "%d overlapping pair(s)\n", r.Count)
}

func printCalendar(w io.Writer, r *availability.MonthResult) {
	for _, day := range r.Calendar.Days() {
		state := "free"
		if !day.Available {
			state = fmt.Sprintf("%s (%s)", day.OccupyingBookingID, day.OccupyingStatus)
		}
		fmt.Fprintf(w, "%s  %s\n", day.Date, state)
	}
	fmt.Fprintf(w, "\noccupancy %.2f%%  booked %d/%d  revenue %.2f\n",
		r.Occupancy.OccupancyRate, r.Occupancy.BookedDays, r.Occupancy.TotalDays, r.Occupancy.Revenue)
	if r.WarningCount > 0 {
		fmt.Fprintf(w, "%d malformed booking(s) skipped\n", r.WarningCount)
	}
	for _, c := range r.Conflicts {
		fmt.Fprintf(w, "conflict on %s: %v\n", c.Date, c.BookingIDs)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

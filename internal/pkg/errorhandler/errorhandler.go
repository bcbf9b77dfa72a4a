package errorhandler

import (
	"context"
	"net/http"

	"github.com/staynest/booking-api/internal/pkg/database"
	"github.com/staynest/booking-api/internal/pkg/logger"
	"github.com/staynest/booking-api/internal/pkg/response"
)

// HandleError logs a failed request and sends the error envelope.
// The cause is logged but never sent to the client.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	event := logger.FromContext(ctx).Error().
		Str("request_id", logger.RequestID(ctx)).
		Str("error_code", code).
		Str("error_message", message).
		Int("status_code", status)

	if err != nil {
		event = event.Err(err)
	}

	event.Msg("Request error")

	response.Error(w, status, code, message)
}

// LogDatabaseError logs database errors with context
func LogDatabaseError(ctx context.Context, operation string, err error) {
	logger.FromContext(ctx).Error().
		Str("request_id", logger.RequestID(ctx)).
		Str("operation", operation).
		Str("sqlstate", database.ErrorCode(err)).
		Bool("transient", database.IsTransient(err)).
		Err(err).
		Msg("Database error")
}

// LogExternalServiceError logs errors from external service calls
func LogExternalServiceError(ctx context.Context, service, operation, code string, err error) {
	logger.FromContext(ctx).Error().
		Str("request_id", logger.RequestID(ctx)).
		Str("external_service", service).
		Str("operation", operation).
		Str("error_code", code).
		Err(err).
		Msg("External service error")
}

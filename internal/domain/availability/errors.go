package availability

import "errors"

var (
	ErrInvalidRange        = errors.New("start date must not be after end date")
	ErrInvalidMonth        = errors.New("invalid month or year")
	ErrMalformedBooking    = errors.New("malformed booking record")
	ErrInvalidInput        = errors.New("invalid input")
	ErrRangeTooLarge       = errors.New("date range is too large")
	ErrUpstreamUnavailable = errors.New("booking store unavailable")
)

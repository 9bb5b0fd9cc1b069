package clock

import "errors"

// Kind is the machine-readable classification of a domain failure.
type Kind string

const (
	KindAlreadyClockedIn Kind = "already_clocked_in"
	KindNotClockedIn     Kind = "not_clocked_in"
	KindInvalidRange     Kind = "invalid_range"
	KindFutureTime       Kind = "future_time"
	KindDurationTooLong  Kind = "duration_too_long"
	KindTooFarInPast     Kind = "too_far_in_past"
	KindNotFound         Kind = "not_found"
)

// Error is a typed domain failure: a fixed kind plus a human message.
// These are terminal; the engine never retries them internally.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrAlreadyClockedIn = &Error{Kind: KindAlreadyClockedIn, Message: "already clocked in"}
	ErrNotClockedIn     = &Error{Kind: KindNotClockedIn, Message: "not clocked in"}
	ErrInvalidRange     = &Error{Kind: KindInvalidRange, Message: "clock out must be after clock in"}
	ErrFutureTime       = &Error{Kind: KindFutureTime, Message: "clock times cannot be in the future"}
	ErrDurationTooLong  = &Error{Kind: KindDurationTooLong, Message: "session cannot be longer than 24 hours"}
	ErrTooFarInPast     = &Error{Kind: KindTooFarInPast, Message: "clock in cannot be more than 1 year in the past"}
	ErrSessionNotFound  = &Error{Kind: KindNotFound, Message: "session not found"}
)

// KindOf extracts the domain kind from err, unwrapping as needed.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

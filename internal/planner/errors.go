package planner

import "fmt"

// ConflictError is returned when a requested placement collides with an
// existing reservation of a non-cancelled event and displacement was
// not authorized.  It names the blocking event so the caller can retry
// with bump enabled or pick another stand.  Conflicts are an expected,
// user-facing outcome of interactive planning, not an internal fault.
type ConflictError struct {
    EventID    uint64 `json:"event_id"`
    Title      string `json:"title"`
    TailNumber string `json:"tail_number"`
}

func (e *ConflictError) Error() string {
    return fmt.Sprintf("stand occupied by event %d (%s, %s)", e.EventID, e.Title, e.TailNumber)
}

// ValidationError is returned for malformed or logically inconsistent
// input, before any write happens.
type ValidationError struct {
    Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
    return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

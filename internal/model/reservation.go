package model

import "time"

// Reservation binds exactly one event to exactly one stand within a
// layout for a half-open window [StartsAt, EndsAt).  The event id is
// the primary key, so an event can never hold more than one
// reservation; moving an event replaces the row in place.
//
// Fields:
//  EventID   – owning event; also the primary key.
//  LayoutID  – layout containing the stand.
//  StandID   – stand being occupied.
//  StartsAt  – window start (inclusive).
//  EndsAt    – window end (exclusive).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
    EventID   uint64    `json:"event_id"`   // reservations.event_id
    LayoutID  uint64    `json:"layout_id"`  // reservations.layout_id
    StandID   uint64    `json:"stand_id"`   // reservations.stand_id
    StartsAt  time.Time `json:"starts_at"`  // reservations.starts_at
    EndsAt    time.Time `json:"ends_at"`    // reservations.ends_at
    CreatedAt time.Time `json:"created_at"` // reservations.created_at
    UpdatedAt time.Time `json:"updated_at"` // reservations.updated_at
}

// Overlaps reports whether the half-open windows [aStart, aEnd) and
// [bStart, bEnd) intersect.  Touching windows (one ending exactly when
// the other begins) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
    return aStart.Before(bEnd) && aEnd.After(bStart)
}

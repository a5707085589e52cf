package model

import "time"

// Planning levels for an event.  STRATEGIC events come from long-range
// capacity planning; OPERATIONAL events are the day-to-day schedule.
const (
    LevelStrategic   = "STRATEGIC"
    LevelOperational = "OPERATIONAL"
)

// Lifecycle statuses of an event.  A displaced ("bumped") event falls
// back to DRAFT; CANCELLED events keep their rows but no longer block
// stand reservations.
const (
    StatusDraft      = "DRAFT"
    StatusPlanned    = "PLANNED"
    StatusConfirmed  = "CONFIRMED"
    StatusInProgress = "IN_PROGRESS"
    StatusDone       = "DONE"
    StatusCancelled  = "CANCELLED"
)

// ValidStatus reports whether s is one of the known event statuses.
func ValidStatus(s string) bool {
    switch s {
    case StatusDraft, StatusPlanned, StatusConfirmed, StatusInProgress, StatusDone, StatusCancelled:
        return true
    }
    return false
}

// Event is a maintenance activity on one aircraft over a time window.
// HangarID and LayoutID form the denormalized placement pointer: they
// mirror the event's reservation and are updated in the same
// transaction as any reservation write.
//
// Fields:
//  ID         – primary key identifier.
//  AircraftID – aircraft the maintenance is performed on.
//  Title      – short display title of the visit.
//  Level      – planning level (STRATEGIC, OPERATIONAL).
//  Status     – lifecycle status (DRAFT .. CANCELLED).
//  StartsAt   – when the event begins (inclusive).
//  EndsAt     – when the event ends (exclusive).
//  HangarID   – hangar of the current placement (nil when unplaced).
//  LayoutID   – layout of the current placement (nil when unplaced).
//  Notes      – free-text planner notes.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Event struct {
    ID         uint64    `json:"id"`          // events.id
    AircraftID uint64    `json:"aircraft_id"` // events.aircraft_id
    Title      string    `json:"title"`       // events.title
    Level      string    `json:"level"`       // events.level
    Status     string    `json:"status"`      // events.status
    StartsAt   time.Time `json:"starts_at"`   // events.starts_at
    EndsAt     time.Time `json:"ends_at"`     // events.ends_at
    HangarID   *uint64   `json:"hangar_id"`   // events.hangar_id (nullable)
    LayoutID   *uint64   `json:"layout_id"`   // events.layout_id (nullable)
    Notes      *string   `json:"notes"`       // events.notes (nullable)
    CreatedAt  time.Time `json:"created_at"`  // events.created_at
    UpdatedAt  time.Time `json:"updated_at"`  // events.updated_at
}

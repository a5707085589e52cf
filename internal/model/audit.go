package model

import (
    "encoding/json"
    "time"
)

// Audit action tags.  One tag per mutation kind; history replay keys
// the shape of the Changes payload off the tag.
const (
    AuditCreate    = "CREATE"
    AuditUpdate    = "UPDATE"
    AuditReserve   = "RESERVE"
    AuditUnreserve = "UNRESERVE"
)

// AuditRecord is one immutable line in an event's change history.
// Records are append-only: nothing in the service updates or deletes
// them, and history is replayed ordered by creation time.
//
// Fields:
//  ID        – primary key identifier.
//  EventID   – event this record belongs to.
//  Action    – action tag (CREATE, UPDATE, RESERVE, UNRESERVE).
//  Actor     – identity label of whoever made the change.
//  Reason    – free-text change reason, when one was supplied.
//  Changes   – structured before/after payload; shape depends on Action.
//  CreatedAt – when the record was written.
type AuditRecord struct {
    ID        uint64          `json:"id"`         // audit_log.id
    EventID   uint64          `json:"event_id"`   // audit_log.event_id
    Action    string          `json:"action"`     // audit_log.action
    Actor     string          `json:"actor"`      // audit_log.actor
    Reason    *string         `json:"reason"`     // audit_log.reason (nullable)
    Changes   json.RawMessage `json:"changes"`    // audit_log.changes (JSON)
    CreatedAt time.Time       `json:"created_at"` // audit_log.created_at
}

// AuditTime renders a timestamp in the canonical form used inside
// audit payloads (RFC3339, UTC).
func AuditTime(t time.Time) string {
    return t.UTC().Format(time.RFC3339)
}

// PlacementSnapshot is the audit view of where an event sits: hangar,
// layout, stand and reservation window.
type PlacementSnapshot struct {
    HangarID uint64 `json:"hangar_id"`
    LayoutID uint64 `json:"layout_id"`
    StandID  uint64 `json:"stand_id"`
    StartsAt string `json:"starts_at"`
    EndsAt   string `json:"ends_at"`
}

// WindowSnapshot is a bare time window in audit form.
type WindowSnapshot struct {
    StartsAt string `json:"starts_at"`
    EndsAt   string `json:"ends_at"`
}

// FieldChange records an old/new pair for a scalar event field.
type FieldChange struct {
    From string `json:"from"`
    To   string `json:"to"`
}

// CreateChanges is the payload of a CREATE record: a snapshot of the
// freshly created event.
type CreateChanges struct {
    AircraftID uint64 `json:"aircraft_id"`
    Title      string `json:"title"`
    Level      string `json:"level"`
    Status     string `json:"status"`
    StartsAt   string `json:"starts_at"`
    EndsAt     string `json:"ends_at"`
}

// ReserveChanges is the payload of a RESERVE record.  From is nil on a
// first assignment.  BumpedEventIDs lists events displaced to make
// room, in the order they were displaced.
type ReserveChanges struct {
    From           *PlacementSnapshot `json:"from,omitempty"`
    To             PlacementSnapshot  `json:"to"`
    BumpRequested  bool               `json:"bump_requested,omitempty"`
    BumpedEventIDs []uint64           `json:"bumped_event_ids,omitempty"`
}

// WindowChange records an old/new pair for the event's own window.
type WindowChange struct {
    From WindowSnapshot `json:"from"`
    To   WindowSnapshot `json:"to"`
}

// UpdateChanges is the payload of an UPDATE record.  Window carries the
// event's own time change when a dnd-place retimed it; From/To carry
// the placement change; Fields carries plain event-field edits.
type UpdateChanges struct {
    Window         *WindowChange          `json:"window,omitempty"`
    From           *PlacementSnapshot     `json:"from,omitempty"`
    To             *PlacementSnapshot     `json:"to,omitempty"`
    Fields         map[string]FieldChange `json:"fields,omitempty"`
    BumpRequested  bool                   `json:"bump_requested,omitempty"`
    BumpedEventIDs []uint64               `json:"bumped_event_ids,omitempty"`
}

// UnreserveChanges is the payload of an UNRESERVE record.  BumpedBy is
// set when the reservation was cleared because another event's
// placement displaced this one, and nil on a manual unassign.
type UnreserveChanges struct {
    From     PlacementSnapshot `json:"from"`
    BumpedBy *uint64           `json:"bumped_by,omitempty"`
}

// NewWindowChange builds a WindowChange from old and new event windows.
func NewWindowChange(fromStart, fromEnd, toStart, toEnd time.Time) *WindowChange {
    return &WindowChange{
        From: WindowSnapshot{StartsAt: AuditTime(fromStart), EndsAt: AuditTime(fromEnd)},
        To:   WindowSnapshot{StartsAt: AuditTime(toStart), EndsAt: AuditTime(toEnd)},
    }
}

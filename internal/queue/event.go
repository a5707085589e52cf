// Package queue defines message payloads exchanged over the message broker.
package queue

// PlacementChangedEvent is published whenever an event's stand
// reservation changes: assignment, move, placement with a new window,
// or removal. It carries enough information for downstream consumers
// to log or notify without querying the primary database.
type PlacementChangedEvent struct {
    EventID        uint64   `json:"event_id"`
    Action         string   `json:"action"`
    Actor          string   `json:"actor"`
    LayoutID       uint64   `json:"layout_id,omitempty"`
    StandID        uint64   `json:"stand_id,omitempty"`
    StartsAt       string   `json:"starts_at,omitempty"`
    EndsAt         string   `json:"ends_at,omitempty"`
    BumpedEventIDs []uint64 `json:"bumped_event_ids,omitempty"`
    OccurredAt     string   `json:"occurred_at"`
}

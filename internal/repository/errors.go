// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// planner service to distinguish between different failure scenarios
// without inspecting SQL errors directly. Each "not found" sentinel maps
// to a missing referenced entity; handlers translate them into HTTP 404
// responses.
package repository

import "errors"

// ErrEventNotFound indicates that an event row does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrLayoutNotFound indicates that a layout row does not exist.
var ErrLayoutNotFound = errors.New("layout not found")

// ErrStandNotFound indicates that a stand row does not exist or does
// not belong to the expected layout.
var ErrStandNotFound = errors.New("stand not found")

// ErrReservationNotFound indicates that an event has no reservation.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrHangarNotFound indicates that a hangar row does not exist.
var ErrHangarNotFound = errors.New("hangar not found")

// ErrAircraftNotFound indicates that an aircraft row does not exist.
var ErrAircraftNotFound = errors.New("aircraft not found")

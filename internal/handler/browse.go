// Package handler exposes HTTP handlers for the planner API. This file
// defines the read-only browse endpoints: hangars, layouts, stands,
// events and the layout occupancy listing the timeline is drawn from.
// These routes apply no write logic and are safe to cache.
package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/Alkifr/hvp-v3/internal/repository"
)

// BrowseHandler aggregates the repositories needed for read-only
// browsing of reference data and occupancy.
type BrowseHandler struct {
    Layouts      *repository.LayoutRepo
    Stands       *repository.StandRepo
    Events       *repository.EventRepo
    Reservations *repository.ReservationRepo
    Aircraft     *repository.AircraftRepo
}

// NewBrowseHandler constructs a BrowseHandler.
func NewBrowseHandler(layouts *repository.LayoutRepo, stands *repository.StandRepo, events *repository.EventRepo, reservations *repository.ReservationRepo, aircraft *repository.AircraftRepo) *BrowseHandler {
    if layouts == nil || stands == nil || events == nil || reservations == nil || aircraft == nil {
        panic("nil repository passed to NewBrowseHandler")
    }
    return &BrowseHandler{Layouts: layouts, Stands: stands, Events: events, Reservations: reservations, Aircraft: aircraft}
}

// ListAircraft handles GET /v1/aircraft.
func (h *BrowseHandler) ListAircraft(c echo.Context) error {
    aircraft, err := h.Aircraft.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": aircraft})
}

// ListHangars handles GET /v1/hangars.
func (h *BrowseHandler) ListHangars(c echo.Context) error {
    hangars, err := h.Layouts.ListHangars(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": hangars})
}

// ListLayouts handles GET /v1/hangars/:id/layouts.
func (h *BrowseHandler) ListLayouts(c echo.Context) error {
    hangarID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hangar id"})
    }
    layouts, err := h.Layouts.ListByHangar(c.Request().Context(), hangarID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": layouts})
}

// ListStands handles GET /v1/layouts/:id/stands.  Pass ?active=true to
// hide retired stands.
func (h *BrowseHandler) ListStands(c echo.Context) error {
    layoutID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid layout id"})
    }
    ctx := c.Request().Context()
    if _, err := h.Layouts.GetByID(ctx, layoutID); err != nil {
        return respondError(c, err)
    }
    stands, err := h.Stands.ListByLayout(ctx, layoutID, c.QueryParam("active") == "true")
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": stands})
}

// ListReservations handles GET /v1/layouts/:id/reservations.  The
// optional from/to query parameters (RFC3339) restrict the listing to
// reservations overlapping that half-open window.
func (h *BrowseHandler) ListReservations(c echo.Context) error {
    layoutID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid layout id"})
    }
    from, to, ok := parseWindow(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "from/to must be RFC3339 timestamps"})
    }
    ctx := c.Request().Context()
    if _, err := h.Layouts.GetByID(ctx, layoutID); err != nil {
        return respondError(c, err)
    }
    rows, err := h.Reservations.ListByLayout(ctx, layoutID, from, to)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rows})
}

// ListEvents handles GET /v1/events with the same optional from/to
// window filter.
func (h *BrowseHandler) ListEvents(c echo.Context) error {
    from, to, ok := parseWindow(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "from/to must be RFC3339 timestamps"})
    }
    events, err := h.Events.List(c.Request().Context(), from, to)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": events})
}

// GetEvent handles GET /v1/events/:id.
func (h *BrowseHandler) GetEvent(c echo.Context) error {
    eventID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx := c.Request().Context()
    event, err := h.Events.GetByID(ctx, eventID)
    if err != nil {
        return respondError(c, err)
    }
    reservation, err := h.Reservations.GetByEvent(ctx, eventID)
    if err != nil && err != repository.ErrReservationNotFound {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"event": event, "reservation": reservation})
}

package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Alkifr/hvp-v3/internal/planner"
    "github.com/Alkifr/hvp-v3/internal/repository"
)

// EventHandler exposes the event lifecycle endpoints: create, edit
// (including cancellation) and delete, plus the audit history read.
type EventHandler struct {
    Svc      *planner.PlacementService
    Events   *repository.EventRepo
    Audit    *repository.AuditRepo
    Aircraft *repository.AircraftRepo
}

// NewEventHandler constructs an EventHandler.  All dependencies must
// be non-nil.
func NewEventHandler(svc *planner.PlacementService, events *repository.EventRepo, audit *repository.AuditRepo, aircraft *repository.AircraftRepo) *EventHandler {
    if svc == nil || events == nil || audit == nil || aircraft == nil {
        panic("nil dependency passed to NewEventHandler")
    }
    return &EventHandler{Svc: svc, Events: events, Audit: audit, Aircraft: aircraft}
}

// Create handles POST /v1/events.
func (h *EventHandler) Create(c echo.Context) error {
    var body struct {
        AircraftID uint64    `json:"aircraft_id"`
        Title      string    `json:"title"`
        Level      string    `json:"level"`
        Status     string    `json:"status"`
        StartsAt   time.Time `json:"starts_at"`
        EndsAt     time.Time `json:"ends_at"`
        Notes      *string   `json:"notes"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.AircraftID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "aircraft_id is required"})
    }
    if _, err := h.Aircraft.GetByID(c.Request().Context(), body.AircraftID); err != nil {
        return respondError(c, err)
    }
    event, err := h.Svc.CreateEvent(c.Request().Context(), getActor(c), planner.CreateEventInput{
        AircraftID: body.AircraftID,
        Title:      body.Title,
        Level:      body.Level,
        Status:     body.Status,
        StartsAt:   body.StartsAt,
        EndsAt:     body.EndsAt,
        Notes:      body.Notes,
    })
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"event": event})
}

// Update handles PATCH /v1/events/:id.  Omitted fields stay unchanged.
// Setting status to CANCELLED also frees the event's stand.
func (h *EventHandler) Update(c echo.Context) error {
    eventID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var body struct {
        Title    *string    `json:"title"`
        Level    *string    `json:"level"`
        Status   *string    `json:"status"`
        StartsAt *time.Time `json:"starts_at"`
        EndsAt   *time.Time `json:"ends_at"`
        Notes    *string    `json:"notes"`
        Reason   string     `json:"reason"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    event, err := h.Svc.UpdateEvent(c.Request().Context(), getActor(c), eventID, planner.UpdateEventInput{
        Title:    body.Title,
        Level:    body.Level,
        Status:   body.Status,
        StartsAt: body.StartsAt,
        EndsAt:   body.EndsAt,
        Notes:    body.Notes,
        Reason:   body.Reason,
    })
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"event": event})
}

// Delete handles DELETE /v1/events/:id.  Reservation and audit rows
// cascade away with the event.
func (h *EventHandler) Delete(c echo.Context) error {
    eventID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    if err := h.Svc.DeleteEvent(c.Request().Context(), eventID); err != nil {
        return respondError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// History handles GET /v1/events/:id/history: the event's audit
// records, newest first.
func (h *EventHandler) History(c echo.Context) error {
    eventID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx := c.Request().Context()
    if _, err := h.Events.GetByID(ctx, eventID); err != nil {
        return respondError(c, err)
    }
    records, err := h.Audit.HistoryByEvent(ctx, eventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load history"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": records})
}

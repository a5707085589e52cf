package handler

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Alkifr/hvp-v3/internal/model"
    "github.com/Alkifr/hvp-v3/internal/planner"
    "github.com/Alkifr/hvp-v3/internal/queue"
    "github.com/Alkifr/hvp-v3/internal/repository"
    queue_publisher "github.com/Alkifr/hvp-v3/internal/service"
)

// PlacementHandler exposes the placement operations: assign, the two
// drag-and-drop variants and unassign.  Every operation runs inside
// the planner service as one transaction; this layer only parses
// requests, maps errors to HTTP statuses and emits the best-effort
// placement.changed notification after a successful commit.
type PlacementHandler struct {
    Svc *planner.PlacementService
}

// NewPlacementHandler constructs a PlacementHandler.
func NewPlacementHandler(svc *planner.PlacementService) *PlacementHandler {
    if svc == nil {
        panic("nil service passed to NewPlacementHandler")
    }
    return &PlacementHandler{Svc: svc}
}

// respondError translates planner and repository errors into HTTP
// responses.  Conflicts are expected interactive outcomes and carry
// the blocking event's display fields.
func respondError(c echo.Context, err error) error {
    var conflict *planner.ConflictError
    if errors.As(err, &conflict) {
        return c.JSON(http.StatusConflict, echo.Map{
            "error":          "placement conflict",
            "blocking_event": conflict,
        })
    }
    var invalid *planner.ValidationError
    if errors.As(err, &invalid) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": invalid.Msg})
    }
    switch {
    case errors.Is(err, repository.ErrEventNotFound),
        errors.Is(err, repository.ErrLayoutNotFound),
        errors.Is(err, repository.ErrStandNotFound),
        errors.Is(err, repository.ErrHangarNotFound),
        errors.Is(err, repository.ErrAircraftNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

// notify publishes a placement.changed event.  Failures are logged by
// the publisher and otherwise ignored; notifications never fail a
// request that already committed.
func notify(c echo.Context, action string, res *model.Reservation, eventID uint64, actor string, bumped []uint64) {
    ev := queue.PlacementChangedEvent{
        EventID:        eventID,
        Action:         action,
        Actor:          actor,
        BumpedEventIDs: bumped,
        OccurredAt:     time.Now().UTC().Format(time.RFC3339),
    }
    if actor == "" {
        ev.Actor = planner.ActorFallback
    }
    if res != nil {
        ev.LayoutID = res.LayoutID
        ev.StandID = res.StandID
        ev.StartsAt = res.StartsAt.UTC().Format(time.RFC3339)
        ev.EndsAt = res.EndsAt.UTC().Format(time.RFC3339)
    }
    _ = queue_publisher.PublishPlacementChanged(c.Request().Context(), ev)
}

// Assign handles PUT /v1/events/:id/reservation.  It creates or
// replaces the event's reservation on the requested stand.  Conflicts
// always fail with 409 here; this endpoint never displaces anyone.
func (h *PlacementHandler) Assign(c echo.Context) error {
    eventID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var body struct {
        LayoutID uint64     `json:"layout_id"`
        StandID  uint64     `json:"stand_id"`
        StartsAt *time.Time `json:"starts_at"`
        EndsAt   *time.Time `json:"ends_at"`
        Reason   string     `json:"reason"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.LayoutID == 0 || body.StandID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "layout_id and stand_id are required"})
    }
    actor := getActor(c)
    res, err := h.Svc.Assign(c.Request().Context(), actor, planner.AssignInput{
        EventID:  eventID,
        LayoutID: body.LayoutID,
        StandID:  body.StandID,
        StartsAt: body.StartsAt,
        EndsAt:   body.EndsAt,
        Reason:   body.Reason,
    })
    if err != nil {
        return respondError(c, err)
    }
    notify(c, model.AuditReserve, res, eventID, actor, nil)
    return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Move handles POST /v1/events/:id/dnd-move: relocate a reservation
// keeping the event's window, optionally bumping whatever is in the
// way (all overlapping events, or just the one named in the body).
func (h *PlacementHandler) Move(c echo.Context) error {
    eventID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var body struct {
        LayoutID       uint64 `json:"layout_id"`
        StandID        uint64 `json:"stand_id"`
        BumpOnConflict bool   `json:"bump_on_conflict"`
        BumpedEventID  uint64 `json:"bumped_event_id"`
        Reason         string `json:"reason"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.LayoutID == 0 || body.StandID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "layout_id and stand_id are required"})
    }
    actor := getActor(c)
    result, err := h.Svc.Move(c.Request().Context(), actor, planner.MoveInput{
        EventID:        eventID,
        LayoutID:       body.LayoutID,
        StandID:        body.StandID,
        BumpOnConflict: body.BumpOnConflict,
        BumpedEventID:  body.BumpedEventID,
        Reason:         body.Reason,
    })
    if err != nil {
        return respondError(c, err)
    }
    notify(c, model.AuditReserve, result.Reservation, eventID, actor, result.BumpedEventIDs)
    return c.JSON(http.StatusOK, result)
}

// Place handles POST /v1/events/:id/dnd-place: like Move but the
// event's own window changes too, and conflicts are computed against
// the new window.
func (h *PlacementHandler) Place(c echo.Context) error {
    eventID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var body struct {
        LayoutID       uint64    `json:"layout_id"`
        StandID        uint64    `json:"stand_id"`
        StartsAt       time.Time `json:"starts_at"`
        EndsAt         time.Time `json:"ends_at"`
        BumpOnConflict bool      `json:"bump_on_conflict"`
        BumpedEventID  uint64    `json:"bumped_event_id"`
        Reason         string    `json:"reason"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.LayoutID == 0 || body.StandID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "layout_id and stand_id are required"})
    }
    if body.StartsAt.IsZero() || body.EndsAt.IsZero() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at and ends_at are required"})
    }
    actor := getActor(c)
    result, err := h.Svc.Place(c.Request().Context(), actor, planner.PlaceInput{
        MoveInput: planner.MoveInput{
            EventID:        eventID,
            LayoutID:       body.LayoutID,
            StandID:        body.StandID,
            BumpOnConflict: body.BumpOnConflict,
            BumpedEventID:  body.BumpedEventID,
            Reason:         body.Reason,
        },
        StartsAt: body.StartsAt,
        EndsAt:   body.EndsAt,
    })
    if err != nil {
        return respondError(c, err)
    }
    notify(c, model.AuditUpdate, result.Reservation, eventID, actor, result.BumpedEventIDs)
    return c.JSON(http.StatusOK, result)
}

// Unassign handles DELETE /v1/events/:id/reservation.  It is
// idempotent: removing a reservation that does not exist reports zero
// deletions instead of failing.
func (h *PlacementHandler) Unassign(c echo.Context) error {
    eventID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    actor := getActor(c)
    deleted, err := h.Svc.Unassign(c.Request().Context(), actor, eventID, c.QueryParam("reason"))
    if err != nil {
        return respondError(c, err)
    }
    if deleted > 0 {
        notify(c, model.AuditUnreserve, nil, eventID, actor, nil)
    }
    return c.JSON(http.StatusOK, echo.Map{"deleted_count": deleted})
}

// Package planner implements the stand-placement engine: assigning,
// moving and unassigning event reservations, resolving conflicts,
// displacing ("bumping") blocking events, and writing the audit trail.
// Every state-changing operation runs as one database transaction:
// conflict read, optional bump, reservation write, event pointer
// update and audit insert all commit or roll back together.
package planner

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "time"

    "github.com/Alkifr/hvp-v3/internal/model"
    "github.com/Alkifr/hvp-v3/internal/repository"
)

// ActorFallback is the audit actor recorded when no authenticated
// identity accompanies a request.
const ActorFallback = "browser"

// PlacementService orchestrates placement transactions over the
// repositories.  All methods are safe for concurrent use; same-stand
// operations serialize on the stand row lock taken inside each
// transaction.
type PlacementService struct {
    db           *sql.DB
    events       *repository.EventRepo
    reservations *repository.ReservationRepo
    stands       *repository.StandRepo
    layouts      *repository.LayoutRepo
    audit        *repository.AuditRepo
}

// NewPlacementService constructs a PlacementService.  All dependencies
// must be non-nil.
func NewPlacementService(db *sql.DB, events *repository.EventRepo, reservations *repository.ReservationRepo, stands *repository.StandRepo, layouts *repository.LayoutRepo, audit *repository.AuditRepo) *PlacementService {
    if db == nil || events == nil || reservations == nil || stands == nil || layouts == nil || audit == nil {
        panic("nil dependency passed to NewPlacementService")
    }
    return &PlacementService{
        db:           db,
        events:       events,
        reservations: reservations,
        stands:       stands,
        layouts:      layouts,
        audit:        audit,
    }
}

// AssignInput is the request of an assign/replace operation.  StartsAt
// and EndsAt override the reservation window; when nil the event's own
// window is used.  An explicit override may diverge from the event's
// window; the divergence is recorded in the audit payload rather than
// silently tolerated.
type AssignInput struct {
    EventID  uint64
    LayoutID uint64
    StandID  uint64
    StartsAt *time.Time
    EndsAt   *time.Time
    Reason   string
}

// MoveInput is the request of a drag-and-drop move.  BumpedEventID
// narrows displacement to one known blocking event; zero means "bump
// everything in the way" (when BumpOnConflict is set at all).
type MoveInput struct {
    EventID        uint64
    LayoutID       uint64
    StandID        uint64
    BumpOnConflict bool
    BumpedEventID  uint64
    Reason         string
}

// PlaceInput is MoveInput plus a new window for the event itself.
type PlaceInput struct {
    MoveInput
    StartsAt time.Time
    EndsAt   time.Time
}

// MoveResult reports the reservation that landed and which events were
// displaced to make room, in displacement order.  BumpedEventIDs is
// never nil, so it always serializes as a JSON array.
type MoveResult struct {
    Reservation    *model.Reservation `json:"reservation"`
    BumpedEventIDs []uint64           `json:"bumped_event_ids"`
}

func newMoveResult(res *model.Reservation, bumped []uint64) *MoveResult {
    if bumped == nil {
        bumped = []uint64{}
    }
    return &MoveResult{Reservation: res, BumpedEventIDs: bumped}
}

// Assign creates or replaces the reservation of an event on the target
// stand.  Conflicts are always a hard failure here: this entry point
// never bumps.  A change reason is mandatory whenever the resulting
// reservation differs from a prior one; a first assignment and a no-op
// save need none.
func (s *PlacementService) Assign(ctx context.Context, actor string, in AssignInput) (*model.Reservation, error) {
    if (in.StartsAt == nil) != (in.EndsAt == nil) {
        return nil, validationf("starts_at and ends_at must be supplied together")
    }
    layout, err := s.layouts.GetByID(ctx, in.LayoutID)
    if err != nil {
        return nil, err
    }

    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    event, err := s.events.GetByIDTx(ctx, tx, in.EventID)
    if err != nil {
        return nil, err
    }
    start, end := event.StartsAt, event.EndsAt
    if in.StartsAt != nil {
        start, end = *in.StartsAt, *in.EndsAt
    }
    if !end.After(start) {
        return nil, validationf("ends_at must be after starts_at")
    }
    if err := s.stands.LockTx(ctx, tx, in.StandID, in.LayoutID); err != nil {
        return nil, err
    }

    prior, err := s.reservations.GetByEventTx(ctx, tx, in.EventID)
    if err != nil && !errors.Is(err, repository.ErrReservationNotFound) {
        return nil, err
    }
    if prior != nil && placementDiffers(prior, in.LayoutID, in.StandID, start, end) && in.Reason == "" {
        return nil, validationf("a change reason is required when replacing an existing reservation")
    }

    conflicts, err := s.reservations.FindConflictsTx(ctx, tx, in.StandID, start, end, in.EventID)
    if err != nil {
        return nil, err
    }
    if len(conflicts) > 0 {
        c := conflicts[0]
        return nil, &ConflictError{EventID: c.EventID, Title: c.EventTitle, TailNumber: c.TailNumber}
    }

    res, err := s.reservations.UpsertTx(ctx, tx, in.EventID, in.LayoutID, in.StandID, start, end)
    if err != nil {
        return nil, err
    }
    if err := s.events.SetPlacementTx(ctx, tx, in.EventID, layout.HangarID, in.LayoutID); err != nil {
        return nil, err
    }

    changes := model.ReserveChanges{
        From: priorSnapshot(prior, event),
        To:   snapshot(layout.HangarID, in.LayoutID, in.StandID, start, end),
    }
    if err := s.recordTx(ctx, tx, in.EventID, model.AuditReserve, actor, in.Reason, changes); err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return res, nil
}

// Move relocates an event's reservation to another stand keeping the
// event's current window.  With BumpOnConflict set, blocking events
// are displaced inside the same transaction; otherwise any conflict
// fails the whole operation.
func (s *PlacementService) Move(ctx context.Context, actor string, in MoveInput) (*MoveResult, error) {
    if in.Reason == "" {
        return nil, validationf("a change reason is required for a move")
    }
    layout, err := s.layouts.GetByID(ctx, in.LayoutID)
    if err != nil {
        return nil, err
    }

    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    event, err := s.events.GetByIDTx(ctx, tx, in.EventID)
    if err != nil {
        return nil, err
    }
    if !event.EndsAt.After(event.StartsAt) {
        return nil, validationf("event window is empty; retime the event first")
    }
    if err := s.stands.LockTx(ctx, tx, in.StandID, in.LayoutID); err != nil {
        return nil, err
    }
    prior, err := s.reservations.GetByEventTx(ctx, tx, in.EventID)
    if err != nil && !errors.Is(err, repository.ErrReservationNotFound) {
        return nil, err
    }

    bumped, err := s.resolveConflictsTx(ctx, tx, in, layout.HangarID, event.StartsAt, event.EndsAt, actor)
    if err != nil {
        return nil, err
    }

    res, err := s.reservations.UpsertTx(ctx, tx, in.EventID, in.LayoutID, in.StandID, event.StartsAt, event.EndsAt)
    if err != nil {
        return nil, err
    }
    if err := s.events.SetPlacementTx(ctx, tx, in.EventID, layout.HangarID, in.LayoutID); err != nil {
        return nil, err
    }

    changes := model.ReserveChanges{
        From:           priorSnapshot(prior, event),
        To:             snapshot(layout.HangarID, in.LayoutID, in.StandID, event.StartsAt, event.EndsAt),
        BumpRequested:  in.BumpOnConflict,
        BumpedEventIDs: bumped,
    }
    if err := s.recordTx(ctx, tx, in.EventID, model.AuditReserve, actor, in.Reason, changes); err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return newMoveResult(res, bumped), nil
}

// Place is Move plus a retime: the event's own window changes in the
// same transaction and conflicts are computed against the new window.
// The audit record is an UPDATE because the event's own fields changed.
func (s *PlacementService) Place(ctx context.Context, actor string, in PlaceInput) (*MoveResult, error) {
    if in.Reason == "" {
        return nil, validationf("a change reason is required for a move")
    }
    if !in.EndsAt.After(in.StartsAt) {
        return nil, validationf("ends_at must be after starts_at")
    }
    layout, err := s.layouts.GetByID(ctx, in.LayoutID)
    if err != nil {
        return nil, err
    }

    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    event, err := s.events.GetByIDTx(ctx, tx, in.EventID)
    if err != nil {
        return nil, err
    }
    if err := s.stands.LockTx(ctx, tx, in.StandID, in.LayoutID); err != nil {
        return nil, err
    }
    prior, err := s.reservations.GetByEventTx(ctx, tx, in.EventID)
    if err != nil && !errors.Is(err, repository.ErrReservationNotFound) {
        return nil, err
    }

    bumped, err := s.resolveConflictsTx(ctx, tx, in.MoveInput, layout.HangarID, in.StartsAt, in.EndsAt, actor)
    if err != nil {
        return nil, err
    }

    if err := s.events.SetWindowTx(ctx, tx, in.EventID, in.StartsAt, in.EndsAt); err != nil {
        return nil, err
    }
    res, err := s.reservations.UpsertTx(ctx, tx, in.EventID, in.LayoutID, in.StandID, in.StartsAt, in.EndsAt)
    if err != nil {
        return nil, err
    }
    if err := s.events.SetPlacementTx(ctx, tx, in.EventID, layout.HangarID, in.LayoutID); err != nil {
        return nil, err
    }

    to := snapshot(layout.HangarID, in.LayoutID, in.StandID, in.StartsAt, in.EndsAt)
    changes := model.UpdateChanges{
        Window:         model.NewWindowChange(event.StartsAt, event.EndsAt, in.StartsAt, in.EndsAt),
        From:           priorSnapshot(prior, event),
        To:             &to,
        BumpRequested:  in.BumpOnConflict,
        BumpedEventIDs: bumped,
    }
    if err := s.recordTx(ctx, tx, in.EventID, model.AuditUpdate, actor, in.Reason, changes); err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return newMoveResult(res, bumped), nil
}

// Unassign removes an event's reservation.  It is idempotent: when the
// event holds no reservation it reports zero deletions and no error,
// and no audit record is written because nothing changed.
func (s *PlacementService) Unassign(ctx context.Context, actor string, eventID uint64, reason string) (int64, error) {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    event, err := s.events.GetByIDTx(ctx, tx, eventID)
    if err != nil {
        return 0, err
    }
    prior, err := s.reservations.GetByEventTx(ctx, tx, eventID)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            // already in the desired state
            if err := tx.Commit(); err != nil {
                return 0, err
            }
            committed = true
            return 0, nil
        }
        return 0, err
    }

    deleted, err := s.reservations.DeleteByEventTx(ctx, tx, eventID)
    if err != nil {
        return 0, err
    }
    if err := s.events.ClearPlacementTx(ctx, tx, eventID, false); err != nil {
        return 0, err
    }
    changes := model.UnreserveChanges{
        From: snapshot(derefOr(event.HangarID, 0), prior.LayoutID, prior.StandID, prior.StartsAt, prior.EndsAt),
    }
    if err := s.recordTx(ctx, tx, eventID, model.AuditUnreserve, actor, reason, changes); err != nil {
        return 0, err
    }

    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return deleted, nil
}

// recordTx marshals a typed changes payload and appends one audit
// record inside the transaction.
func (s *PlacementService) recordTx(ctx context.Context, tx *sql.Tx, eventID uint64, action, actor, reason string, changes any) error {
    payload, err := json.Marshal(changes)
    if err != nil {
        return err
    }
    if actor == "" {
        actor = ActorFallback
    }
    rec := &model.AuditRecord{
        EventID: eventID,
        Action:  action,
        Actor:   actor,
        Changes: payload,
    }
    if reason != "" {
        rec.Reason = &reason
    }
    return s.audit.InsertTx(ctx, tx, rec)
}

// placementDiffers reports whether the requested placement materially
// differs from the existing reservation.
func placementDiffers(prior *model.Reservation, layoutID, standID uint64, start, end time.Time) bool {
    return prior.LayoutID != layoutID ||
        prior.StandID != standID ||
        !prior.StartsAt.Equal(start) ||
        !prior.EndsAt.Equal(end)
}

func snapshot(hangarID, layoutID, standID uint64, start, end time.Time) model.PlacementSnapshot {
    return model.PlacementSnapshot{
        HangarID: hangarID,
        LayoutID: layoutID,
        StandID:  standID,
        StartsAt: model.AuditTime(start),
        EndsAt:   model.AuditTime(end),
    }
}

// priorSnapshot renders the event's previous placement for an audit
// payload, or nil on a first assignment.  The hangar comes from the
// event's denormalized pointer, which tracked the prior reservation.
func priorSnapshot(prior *model.Reservation, event *model.Event) *model.PlacementSnapshot {
    if prior == nil {
        return nil
    }
    snap := snapshot(derefOr(event.HangarID, 0), prior.LayoutID, prior.StandID, prior.StartsAt, prior.EndsAt)
    return &snap
}

func derefOr(p *uint64, def uint64) uint64 {
    if p == nil {
        return def
    }
    return *p
}

package planner

import (
    "context"
    "errors"
    "time"

    "github.com/Alkifr/hvp-v3/internal/model"
    "github.com/Alkifr/hvp-v3/internal/repository"
)

// CreateEventInput is the request for creating a maintenance event.
// New events start unplaced in DRAFT unless a status is supplied.
type CreateEventInput struct {
    AircraftID uint64
    Title      string
    Level      string
    Status     string
    StartsAt   time.Time
    EndsAt     time.Time
    Notes      *string
}

// UpdateEventInput carries the edits of an event; nil fields stay
// unchanged.  Reason is mandatory when anything actually changes.
type UpdateEventInput struct {
    Title    *string
    Level    *string
    Status   *string
    StartsAt *time.Time
    EndsAt   *time.Time
    Notes    *string
    Reason   string
}

// CreateEvent inserts a new event and writes its CREATE audit record in
// one transaction.
func (s *PlacementService) CreateEvent(ctx context.Context, actor string, in CreateEventInput) (*model.Event, error) {
    if in.Title == "" {
        return nil, validationf("title is required")
    }
    if in.Level != model.LevelStrategic && in.Level != model.LevelOperational {
        return nil, validationf("level must be STRATEGIC or OPERATIONAL")
    }
    if in.Status == "" {
        in.Status = model.StatusDraft
    }
    if !model.ValidStatus(in.Status) {
        return nil, validationf("unknown status %q", in.Status)
    }
    if !in.EndsAt.After(in.StartsAt) {
        return nil, validationf("ends_at must be after starts_at")
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

    event := &model.Event{
        AircraftID: in.AircraftID,
        Title:      in.Title,
        Level:      in.Level,
        Status:     in.Status,
        StartsAt:   in.StartsAt,
        EndsAt:     in.EndsAt,
        Notes:      in.Notes,
    }
    if err := s.events.CreateTx(ctx, tx, event); err != nil {
        return nil, err
    }
    changes := model.CreateChanges{
        AircraftID: event.AircraftID,
        Title:      event.Title,
        Level:      event.Level,
        Status:     event.Status,
        StartsAt:   model.AuditTime(event.StartsAt),
        EndsAt:     model.AuditTime(event.EndsAt),
    }
    if err := s.recordTx(ctx, tx, event.ID, model.AuditCreate, actor, "", changes); err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return event, nil
}

// UpdateEvent edits an event's own fields.  A retime keeps the event's
// reservation window in lockstep: its stand is re-checked against the
// new window and the reservation rewritten, or the edit fails on
// conflict.  Cancelling an event frees its stand in the same
// transaction (reservation deleted, placement pointer cleared, an
// UNRESERVE record written alongside the UPDATE record).
func (s *PlacementService) UpdateEvent(ctx context.Context, actor string, eventID uint64, in UpdateEventInput) (*model.Event, error) {
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

    old, err := s.events.GetByIDTx(ctx, tx, eventID)
    if err != nil {
        return nil, err
    }
    next := *old
    fields := map[string]model.FieldChange{}
    if in.Title != nil && *in.Title != old.Title {
        if *in.Title == "" {
            return nil, validationf("title is required")
        }
        fields["title"] = model.FieldChange{From: old.Title, To: *in.Title}
        next.Title = *in.Title
    }
    if in.Level != nil && *in.Level != old.Level {
        if *in.Level != model.LevelStrategic && *in.Level != model.LevelOperational {
            return nil, validationf("level must be STRATEGIC or OPERATIONAL")
        }
        fields["level"] = model.FieldChange{From: old.Level, To: *in.Level}
        next.Level = *in.Level
    }
    if in.Status != nil && *in.Status != old.Status {
        if !model.ValidStatus(*in.Status) {
            return nil, validationf("unknown status %q", *in.Status)
        }
        fields["status"] = model.FieldChange{From: old.Status, To: *in.Status}
        next.Status = *in.Status
    }
    if in.Notes != nil && (old.Notes == nil || *in.Notes != *old.Notes) {
        from := ""
        if old.Notes != nil {
            from = *old.Notes
        }
        fields["notes"] = model.FieldChange{From: from, To: *in.Notes}
        next.Notes = in.Notes
    }
    var window *model.WindowChange
    if in.StartsAt != nil {
        next.StartsAt = *in.StartsAt
    }
    if in.EndsAt != nil {
        next.EndsAt = *in.EndsAt
    }
    if !next.StartsAt.Equal(old.StartsAt) || !next.EndsAt.Equal(old.EndsAt) {
        if !next.EndsAt.After(next.StartsAt) {
            return nil, validationf("ends_at must be after starts_at")
        }
        window = model.NewWindowChange(old.StartsAt, old.EndsAt, next.StartsAt, next.EndsAt)
    }

    if len(fields) == 0 && window == nil {
        // no-op save: nothing to write, no reason required
        if err := tx.Commit(); err != nil {
            return nil, err
        }
        committed = true
        return old, nil
    }
    if in.Reason == "" {
        return nil, validationf("a change reason is required")
    }

    prior, err := s.reservations.GetByEventTx(ctx, tx, eventID)
    if err != nil && !errors.Is(err, repository.ErrReservationNotFound) {
        return nil, err
    }

    if prior != nil && next.Status == model.StatusCancelled {
        // cancellation frees the stand
        if _, err := s.reservations.DeleteByEventTx(ctx, tx, eventID); err != nil {
            return nil, err
        }
        if err := s.events.ClearPlacementTx(ctx, tx, eventID, false); err != nil {
            return nil, err
        }
        next.HangarID, next.LayoutID = nil, nil
        unres := model.UnreserveChanges{
            From: snapshot(derefOr(old.HangarID, 0), prior.LayoutID, prior.StandID, prior.StartsAt, prior.EndsAt),
        }
        if err := s.recordTx(ctx, tx, eventID, model.AuditUnreserve, actor, in.Reason, unres); err != nil {
            return nil, err
        }
        prior = nil
    }

    if prior != nil && window != nil {
        // keep the reservation window in lockstep with the event window
        if err := s.stands.LockTx(ctx, tx, prior.StandID, prior.LayoutID); err != nil {
            return nil, err
        }
        conflicts, err := s.reservations.FindConflictsTx(ctx, tx, prior.StandID, next.StartsAt, next.EndsAt, eventID)
        if err != nil {
            return nil, err
        }
        if len(conflicts) > 0 {
            c := conflicts[0]
            return nil, &ConflictError{EventID: c.EventID, Title: c.EventTitle, TailNumber: c.TailNumber}
        }
        if _, err := s.reservations.UpsertTx(ctx, tx, eventID, prior.LayoutID, prior.StandID, next.StartsAt, next.EndsAt); err != nil {
            return nil, err
        }
    }

    if err := s.events.UpdateFieldsTx(ctx, tx, &next); err != nil {
        return nil, err
    }
    changes := model.UpdateChanges{Window: window}
    if len(fields) > 0 {
        changes.Fields = fields
    }
    if err := s.recordTx(ctx, tx, eventID, model.AuditUpdate, actor, in.Reason, changes); err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return &next, nil
}

// DeleteEvent removes an event entirely.  Its reservation and audit
// rows go with it through the foreign-key cascade.
func (s *PlacementService) DeleteEvent(ctx context.Context, eventID uint64) error {
    return s.events.DeleteByID(ctx, eventID)
}

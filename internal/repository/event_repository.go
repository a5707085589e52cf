// Package repository contains data access logic for planner domain
// operations. This file defines repository methods for events. An Event
// is a maintenance visit of one aircraft; its hangar_id/layout_id
// columns mirror the event's reservation and must only be written
// inside the same transaction as the reservation change.
package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/Alkifr/hvp-v3/internal/model"
)

// EventRepo manages persistence for events.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
    return &EventRepo{db: db}
}

const eventColumns = `id, aircraft_id, title, level, status, starts_at, ends_at, hangar_id, layout_id, notes, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
    var e model.Event
    var hangarID, layoutID sql.NullInt64
    var notes sql.NullString
    err := row.Scan(
        &e.ID, &e.AircraftID, &e.Title, &e.Level, &e.Status,
        &e.StartsAt, &e.EndsAt, &hangarID, &layoutID, &notes,
        &e.CreatedAt, &e.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    if hangarID.Valid {
        v := uint64(hangarID.Int64)
        e.HangarID = &v
    }
    if layoutID.Valid {
        v := uint64(layoutID.Int64)
        e.LayoutID = &v
    }
    if notes.Valid {
        n := notes.String
        e.Notes = &n
    }
    return &e, nil
}

// GetByID retrieves an event by its ID.  It returns ErrEventNotFound
// when no matching row exists.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
    const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
    e, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrEventNotFound
        }
        return nil, err
    }
    return e, nil
}

// GetByIDTx is like GetByID but reads through the provided transaction
// and locks the event row until the transaction ends, so two placement
// operations on the same event serialize.
func (r *EventRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Event, error) {
    const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ? FOR UPDATE`
    e, err := scanEvent(tx.QueryRowContext(ctx, q, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrEventNotFound
        }
        return nil, err
    }
    return e, nil
}

// List returns all events ordered by start time ascending, optionally
// filtered to a window overlapping [from, to).
func (r *EventRepo) List(ctx context.Context, from, to *time.Time) ([]model.Event, error) {
    q := `SELECT ` + eventColumns + ` FROM events`
    var args []any
    if from != nil && to != nil {
        // same half-open overlap predicate used for reservations
        q += ` WHERE NOT (ends_at <= ? OR starts_at >= ?)`
        args = append(args, from.UTC(), to.UTC())
    }
    q += ` ORDER BY starts_at ASC`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    result := make([]model.Event, 0)
    for rows.Next() {
        e, err := scanEvent(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *e)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// CreateTx inserts a new event within the scope of an existing
// transaction and populates DB-assigned fields (id, status default,
// timestamps) on the given struct.  The caller must commit or roll
// back the transaction.
func (r *EventRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.Event) error {
    const q = `INSERT INTO events (aircraft_id, title, level, status, starts_at, ends_at, notes) VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, e.AircraftID, e.Title, e.Level, e.Status, e.StartsAt.UTC(), e.EndsAt.UTC(), e.Notes)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)
    const sel = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
    filled, err := scanEvent(tx.QueryRowContext(ctx, sel, e.ID))
    if err != nil {
        return err
    }
    *e = *filled
    return nil
}

// UpdateFieldsTx rewrites the mutable scalar fields of an event.  The
// placement pointer is deliberately not touched here; use
// SetPlacementTx or ClearPlacementTx for that.
func (r *EventRepo) UpdateFieldsTx(ctx context.Context, tx *sql.Tx, e *model.Event) error {
    const q = `UPDATE events
               SET title = ?, level = ?, status = ?, starts_at = ?, ends_at = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
    res, err := tx.ExecContext(ctx, q, e.Title, e.Level, e.Status, e.StartsAt.UTC(), e.EndsAt.UTC(), e.Notes, e.ID)
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        // MySQL reports 0 both for a missing row and a no-op update;
        // re-check existence so callers get a clean sentinel.
        var id uint64
        if serr := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = ?`, e.ID).Scan(&id); serr != nil {
            if errors.Is(serr, sql.ErrNoRows) {
                return ErrEventNotFound
            }
            return serr
        }
    }
    return nil
}

// SetWindowTx rewrites only the event's own time window.
func (r *EventRepo) SetWindowTx(ctx context.Context, tx *sql.Tx, id uint64, startsAt, endsAt time.Time) error {
    const q = `UPDATE events SET starts_at = ?, ends_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, startsAt.UTC(), endsAt.UTC(), id)
    return err
}

// SetPlacementTx points the event's denormalized hangar/layout columns
// at the given layout.  It must run in the same transaction as the
// reservation upsert that justifies it.
func (r *EventRepo) SetPlacementTx(ctx context.Context, tx *sql.Tx, eventID, hangarID, layoutID uint64) error {
    const q = `UPDATE events SET hangar_id = ?, layout_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, hangarID, layoutID, eventID)
    return err
}

// ClearPlacementTx nulls the event's placement pointer.  When demote is
// true the event's status is also forced to DRAFT, which is what a
// displacement ("bump") does to the losing event.
func (r *EventRepo) ClearPlacementTx(ctx context.Context, tx *sql.Tx, eventID uint64, demote bool) error {
    q := `UPDATE events SET hangar_id = NULL, layout_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    if demote {
        q = `UPDATE events SET hangar_id = NULL, layout_id = NULL, status = 'DRAFT', updated_at = CURRENT_TIMESTAMP WHERE id = ?`
    }
    _, err := tx.ExecContext(ctx, q, eventID)
    return err
}

// DeleteByID removes an event.  Reservation and audit rows cascade via
// foreign keys.  It returns ErrEventNotFound when nothing was deleted.
func (r *EventRepo) DeleteByID(ctx context.Context, id uint64) error {
    const q = `DELETE FROM events WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrEventNotFound
    }
    return nil
}

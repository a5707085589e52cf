package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/Alkifr/hvp-v3/internal/model"
)

// ReservationRepo provides CRUD operations for stand reservations.  A
// reservation row is keyed by its owning event (the event id is the
// primary key), so upserting the same event replaces the row in place
// and an event can never hold two reservations at once.  All timestamp
// fields are stored in UTC.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// Conflict is a reservation that blocks a requested placement, carrying
// the owning event's display fields so callers can name the blocker.
type Conflict struct {
    model.Reservation
    EventTitle  string `json:"event_title"`
    EventStatus string `json:"event_status"`
    TailNumber  string `json:"tail_number"`
}

// GetByEvent returns the reservation owned by the given event, or
// ErrReservationNotFound when the event is unplaced.
func (r *ReservationRepo) GetByEvent(ctx context.Context, eventID uint64) (*model.Reservation, error) {
    const q = `SELECT event_id, layout_id, stand_id, starts_at, ends_at, created_at, updated_at
               FROM reservations WHERE event_id = ?`
    return r.scanOne(r.db.QueryRowContext(ctx, q, eventID))
}

// GetByEventTx is GetByEvent inside the caller's transaction.
func (r *ReservationRepo) GetByEventTx(ctx context.Context, tx *sql.Tx, eventID uint64) (*model.Reservation, error) {
    const q = `SELECT event_id, layout_id, stand_id, starts_at, ends_at, created_at, updated_at
               FROM reservations WHERE event_id = ?`
    return r.scanOne(tx.QueryRowContext(ctx, q, eventID))
}

func (r *ReservationRepo) scanOne(row *sql.Row) (*model.Reservation, error) {
    var res model.Reservation
    err := row.Scan(&res.EventID, &res.LayoutID, &res.StandID, &res.StartsAt, &res.EndsAt, &res.CreatedAt, &res.UpdatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReservationNotFound
        }
        return nil, err
    }
    return &res, nil
}

// UpsertTx writes the reservation for an event, replacing any prior row
// in place.  The event id is the primary key, so the ON DUPLICATE KEY
// branch fires whenever the event already holds a reservation.  The
// returned struct reflects what was written.  Propagating the event's
// denormalized hangar/layout pointer is the planner's job, not this
// repository's.
func (r *ReservationRepo) UpsertTx(ctx context.Context, tx *sql.Tx, eventID, layoutID, standID uint64, startsAt, endsAt time.Time) (*model.Reservation, error) {
    const q = `INSERT INTO reservations (event_id, layout_id, stand_id, starts_at, ends_at)
               VALUES (?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE
                   layout_id = VALUES(layout_id),
                   stand_id  = VALUES(stand_id),
                   starts_at = VALUES(starts_at),
                   ends_at   = VALUES(ends_at),
                   updated_at = CURRENT_TIMESTAMP`
    if _, err := tx.ExecContext(ctx, q, eventID, layoutID, standID, startsAt.UTC(), endsAt.UTC()); err != nil {
        return nil, err
    }
    return r.GetByEventTx(ctx, tx, eventID)
}

// DeleteByEventTx removes the event's reservation and reports how many
// rows were removed (0 or 1).  Deleting a non-existent reservation is
// not an error, which makes unassign idempotent.
func (r *ReservationRepo) DeleteByEventTx(ctx context.Context, tx *sql.Tx, eventID uint64) (int64, error) {
    const q = `DELETE FROM reservations WHERE event_id = ?`
    res, err := tx.ExecContext(ctx, q, eventID)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// FindConflictsTx finds all reservations on the given stand whose
// half-open window overlaps [start, end) and whose owning event is
// not CANCELLED.  A reservation overlaps when it starts before the
// proposed end and ends after the proposed start; windows that merely
// touch do not conflict.  excludeEventID removes the moving event's
// own reservation from the check (pass 0 to exclude nothing).  Callers
// must hold the stand row lock (StandRepo.LockTx) before relying on
// this read for a write decision.
func (r *ReservationRepo) FindConflictsTx(ctx context.Context, tx *sql.Tx, standID uint64, start, end time.Time, excludeEventID uint64) ([]Conflict, error) {
    // Use a predicate that selects reservations where NOT (existing ends
    // before new starts OR existing starts after new ends).
    const q = `SELECT r.event_id, r.layout_id, r.stand_id, r.starts_at, r.ends_at, r.created_at, r.updated_at,
                      e.title, e.status, a.tail_number
               FROM reservations r
               JOIN events e ON e.id = r.event_id
               JOIN aircraft a ON a.id = e.aircraft_id
               WHERE r.stand_id = ?
                 AND e.status <> 'CANCELLED'
                 AND r.event_id <> ?
                 AND NOT (r.ends_at <= ? OR r.starts_at >= ?)
               ORDER BY r.starts_at ASC`
    rows, err := tx.QueryContext(ctx, q, standID, excludeEventID, start.UTC(), end.UTC())
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var conflicts []Conflict
    for rows.Next() {
        var c Conflict
        if err := rows.Scan(
            &c.EventID, &c.LayoutID, &c.StandID, &c.StartsAt, &c.EndsAt, &c.CreatedAt, &c.UpdatedAt,
            &c.EventTitle, &c.EventStatus, &c.TailNumber,
        ); err != nil {
            return nil, err
        }
        conflicts = append(conflicts, c)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return conflicts, nil
}

// OccupancyRow is one entry of a layout's occupancy listing: the
// reservation joined with its stand and event summary for timeline
// rendering.
type OccupancyRow struct {
    EventID     uint64    `json:"event_id"`
    LayoutID    uint64    `json:"layout_id"`
    StandID     uint64    `json:"stand_id"`
    StandName   string    `json:"stand_name"`
    StartsAt    time.Time `json:"starts_at"`
    EndsAt      time.Time `json:"ends_at"`
    EventTitle  string    `json:"event_title"`
    EventStatus string    `json:"event_status"`
    TailNumber  string    `json:"tail_number"`
}

// ListByLayout returns the reservations of a layout joined with stand
// and event summaries, ordered by start time then stand name.  When
// from/to are supplied only reservations overlapping [from, to) are
// returned.  Cancelled events are skipped: their reservations are
// removed on cancellation, but a stale row must never reach the
// timeline either.
func (r *ReservationRepo) ListByLayout(ctx context.Context, layoutID uint64, from, to *time.Time) ([]OccupancyRow, error) {
    q := `SELECT r.event_id, r.layout_id, r.stand_id, s.name, r.starts_at, r.ends_at,
                 e.title, e.status, a.tail_number
          FROM reservations r
          JOIN stands s ON s.id = r.stand_id
          JOIN events e ON e.id = r.event_id
          JOIN aircraft a ON a.id = e.aircraft_id
          WHERE r.layout_id = ? AND e.status <> 'CANCELLED'`
    args := []any{layoutID}
    if from != nil && to != nil {
        q += ` AND NOT (r.ends_at <= ? OR r.starts_at >= ?)`
        args = append(args, from.UTC(), to.UTC())
    }
    q += ` ORDER BY r.starts_at ASC, s.name ASC`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    result := make([]OccupancyRow, 0)
    for rows.Next() {
        var o OccupancyRow
        if err := rows.Scan(
            &o.EventID, &o.LayoutID, &o.StandID, &o.StandName, &o.StartsAt, &o.EndsAt,
            &o.EventTitle, &o.EventStatus, &o.TailNumber,
        ); err != nil {
            return nil, err
        }
        result = append(result, o)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

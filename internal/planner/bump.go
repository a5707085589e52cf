package planner

import (
    "context"
    "database/sql"
    "time"

    "github.com/Alkifr/hvp-v3/internal/model"
    "github.com/Alkifr/hvp-v3/internal/repository"
)

// resolveConflictsTx computes the conflicts for a move/place targeting
// [start, end) on the input's stand and either displaces them or fails.
// Selection follows the input: when BumpedEventID names a specific
// blocker only that event may be displaced and any other conflict is
// still a hard failure; otherwise every overlapping reservation is
// displaced.  Without BumpOnConflict any conflict at all fails.  The
// returned slice lists displaced event ids in displacement order.
func (s *PlacementService) resolveConflictsTx(ctx context.Context, tx *sql.Tx, in MoveInput, hangarID uint64, start, end time.Time, actor string) ([]uint64, error) {
    conflicts, err := s.reservations.FindConflictsTx(ctx, tx, in.StandID, start, end, in.EventID)
    if err != nil {
        return nil, err
    }
    if len(conflicts) == 0 {
        return nil, nil
    }
    if !in.BumpOnConflict {
        c := conflicts[0]
        return nil, &ConflictError{EventID: c.EventID, Title: c.EventTitle, TailNumber: c.TailNumber}
    }
    toBump := conflicts
    if in.BumpedEventID != 0 {
        toBump = make([]repository.Conflict, 0, 1)
        for _, c := range conflicts {
            if c.EventID == in.BumpedEventID {
                toBump = append(toBump, c)
                continue
            }
            // only the named event was authorized for displacement
            return nil, &ConflictError{EventID: c.EventID, Title: c.EventTitle, TailNumber: c.TailNumber}
        }
    }
    return s.bumpTx(ctx, tx, toBump, in.EventID, hangarID, actor, in.Reason)
}

// bumpTx displaces the given conflicting reservations inside the
// caller's transaction: each loses its reservation row, has its
// event's hangar/layout pointer cleared and its status forced to
// DRAFT, and gets one UNRESERVE audit record naming the displacing
// event.  Any failure aborts the whole placement; partial displacement
// is never observable.
func (s *PlacementService) bumpTx(ctx context.Context, tx *sql.Tx, conflicts []repository.Conflict, displacedBy, hangarID uint64, actor, reason string) ([]uint64, error) {
    displaced := make([]uint64, 0, len(conflicts))
    for _, c := range conflicts {
        if _, err := s.reservations.DeleteByEventTx(ctx, tx, c.EventID); err != nil {
            return nil, err
        }
        if err := s.events.ClearPlacementTx(ctx, tx, c.EventID, true); err != nil {
            return nil, err
        }
        by := displacedBy
        changes := model.UnreserveChanges{
            From:     snapshot(hangarID, c.LayoutID, c.StandID, c.StartsAt, c.EndsAt),
            BumpedBy: &by,
        }
        if err := s.recordTx(ctx, tx, c.EventID, model.AuditUnreserve, actor, reason, changes); err != nil {
            return nil, err
        }
        displaced = append(displaced, c.EventID)
    }
    return displaced, nil
}

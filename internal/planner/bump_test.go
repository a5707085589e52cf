package planner

import (
    "context"
    "errors"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func expectBumped(mock sqlmock.Sqlmock, eventID uint64) {
    mock.ExpectExec("DELETE FROM reservations WHERE event_id").
        WithArgs(eventID).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("UPDATE events SET hangar_id = NULL, layout_id = NULL, status = 'DRAFT'").
        WithArgs(eventID).
        WillReturnResult(sqlmock.NewResult(0, 1))
    expectAuditInsert(mock)
}

func TestMoveRequiresReason(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    _, err := svc.Move(context.Background(), "planner1", MoveInput{
        EventID:  10,
        LayoutID: 3,
        StandID:  21,
    })
    var verr *ValidationError
    require.ErrorAs(t, err, &verr)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveConflictWithoutBumpFails(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    expectLayout(mock, 3, 7)
    mock.ExpectBegin()
    expectEventLock(mock, 10, hour(8), hour(12))
    expectStandLock(mock, 21, 3)
    expectNoReservation(mock, 10)
    mock.ExpectQuery("JOIN events e ON e.id = r.event_id").
        WillReturnRows(sqlmock.NewRows(conflictCols).
            AddRow(41, 3, 21, hour(9), hour(11), hour(1), hour(1), "Engine swap", "PLANNED", "D-AAAA"))
    mock.ExpectRollback()

    _, err := svc.Move(context.Background(), "planner1", MoveInput{
        EventID:  10,
        LayoutID: 3,
        StandID:  21,
        Reason:   "shuffle",
    })
    var conflict *ConflictError
    require.ErrorAs(t, err, &conflict)
    assert.Equal(t, uint64(41), conflict.EventID)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveBumpsAllConflicts(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    expectLayout(mock, 3, 7)
    mock.ExpectBegin()
    expectEventLock(mock, 10, hour(8), hour(12))
    expectStandLock(mock, 21, 3)
    expectNoReservation(mock, 10)
    mock.ExpectQuery("JOIN events e ON e.id = r.event_id").
        WillReturnRows(sqlmock.NewRows(conflictCols).
            AddRow(41, 3, 21, hour(8), hour(10), hour(1), hour(1), "Engine swap", "PLANNED", "D-AAAA").
            AddRow(42, 3, 21, hour(10), hour(12), hour(1), hour(1), "Gear check", "PLANNED", "D-BBBB"))
    expectBumped(mock, 41)
    expectBumped(mock, 42)
    expectUpsert(mock, 10, 3, 21, hour(8), hour(12))
    expectSetPlacement(mock, 10, 7, 3)
    expectAuditInsert(mock)
    mock.ExpectCommit()

    result, err := svc.Move(context.Background(), "planner1", MoveInput{
        EventID:        10,
        LayoutID:       3,
        StandID:        21,
        BumpOnConflict: true,
        Reason:         "priority visit",
    })
    require.NoError(t, err)
    assert.Equal(t, []uint64{41, 42}, result.BumpedEventIDs)
    assert.Equal(t, uint64(21), result.Reservation.StandID)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveBumpFailureMidwayRollsBack(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    expectLayout(mock, 3, 7)
    mock.ExpectBegin()
    expectEventLock(mock, 10, hour(8), hour(12))
    expectStandLock(mock, 21, 3)
    expectNoReservation(mock, 10)
    mock.ExpectQuery("JOIN events e ON e.id = r.event_id").
        WillReturnRows(sqlmock.NewRows(conflictCols).
            AddRow(41, 3, 21, hour(8), hour(10), hour(1), hour(1), "Engine swap", "PLANNED", "D-AAAA").
            AddRow(42, 3, 21, hour(10), hour(12), hour(1), hour(1), "Gear check", "PLANNED", "D-BBBB"))
    // first displacement lands, then the second one's delete blows up;
    // everything including the first displacement must roll back
    expectBumped(mock, 41)
    mock.ExpectExec("DELETE FROM reservations WHERE event_id").
        WithArgs(uint64(42)).
        WillReturnError(errors.New("deadlock detected"))
    mock.ExpectRollback()

    _, err := svc.Move(context.Background(), "planner1", MoveInput{
        EventID:        10,
        LayoutID:       3,
        StandID:        21,
        BumpOnConflict: true,
        Reason:         "priority visit",
    })
    require.Error(t, err)
    assert.ErrorContains(t, err, "deadlock")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveNamedBumpRejectsUnexpectedConflict(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    expectLayout(mock, 3, 7)
    mock.ExpectBegin()
    expectEventLock(mock, 10, hour(8), hour(12))
    expectStandLock(mock, 21, 3)
    expectNoReservation(mock, 10)
    // the caller authorized displacing 41 only, but 42 is also in the way
    mock.ExpectQuery("JOIN events e ON e.id = r.event_id").
        WillReturnRows(sqlmock.NewRows(conflictCols).
            AddRow(41, 3, 21, hour(8), hour(10), hour(1), hour(1), "Engine swap", "PLANNED", "D-AAAA").
            AddRow(42, 3, 21, hour(10), hour(12), hour(1), hour(1), "Gear check", "PLANNED", "D-BBBB"))
    mock.ExpectRollback()

    _, err := svc.Move(context.Background(), "planner1", MoveInput{
        EventID:        10,
        LayoutID:       3,
        StandID:        21,
        BumpOnConflict: true,
        BumpedEventID:  41,
        Reason:         "priority visit",
    })
    var conflict *ConflictError
    require.ErrorAs(t, err, &conflict)
    assert.Equal(t, uint64(42), conflict.EventID)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceRetimesEventAndReservation(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    expectLayout(mock, 3, 7)
    mock.ExpectBegin()
    expectEventLock(mock, 10, hour(8), hour(12))
    expectStandLock(mock, 21, 3)
    expectNoReservation(mock, 10)
    expectNoConflicts(mock)
    mock.ExpectExec("UPDATE events SET starts_at = (.+), ends_at = (.+), updated_at").
        WithArgs(hour(14), hour(18), uint64(10)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    expectUpsert(mock, 10, 3, 21, hour(14), hour(18))
    expectSetPlacement(mock, 10, 7, 3)
    expectAuditInsert(mock)
    mock.ExpectCommit()

    result, err := svc.Place(context.Background(), "planner1", PlaceInput{
        MoveInput: MoveInput{
            EventID:  10,
            LayoutID: 3,
            StandID:  21,
            Reason:   "slot freed up",
        },
        StartsAt: hour(14),
        EndsAt:   hour(18),
    })
    require.NoError(t, err)
    // no displacement still yields an empty array, never JSON null
    require.NotNil(t, result.BumpedEventIDs)
    assert.Empty(t, result.BumpedEventIDs)
    assert.True(t, result.Reservation.StartsAt.Equal(hour(14)))
    assert.True(t, result.Reservation.EndsAt.Equal(hour(18)))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceRejectsEmptyWindow(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    _, err := svc.Place(context.Background(), "planner1", PlaceInput{
        MoveInput: MoveInput{EventID: 10, LayoutID: 3, StandID: 21, Reason: "x"},
        StartsAt:  hour(12),
        EndsAt:    hour(12),
    })
    var verr *ValidationError
    require.ErrorAs(t, err, &verr)
    assert.NoError(t, mock.ExpectationsWereMet())
}

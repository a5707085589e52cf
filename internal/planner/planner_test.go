package planner

import (
    "context"
    "database/sql"
    "errors"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/Alkifr/hvp-v3/internal/repository"
)

// newPlacementTest wires a PlacementService over a sqlmock database.
func newPlacementTest(t *testing.T) (*PlacementService, sqlmock.Sqlmock, *sql.DB) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    svc := NewPlacementService(
        db,
        repository.NewEventRepo(db),
        repository.NewReservationRepo(db),
        repository.NewStandRepo(db),
        repository.NewLayoutRepo(db),
        repository.NewAuditRepo(db),
    )
    return svc, mock, db
}

var eventCols = []string{
    "id", "aircraft_id", "title", "level", "status",
    "starts_at", "ends_at", "hangar_id", "layout_id", "notes",
    "created_at", "updated_at",
}

var reservationCols = []string{
    "event_id", "layout_id", "stand_id", "starts_at", "ends_at", "created_at", "updated_at",
}

var conflictCols = []string{
    "event_id", "layout_id", "stand_id", "starts_at", "ends_at", "created_at", "updated_at",
    "title", "status", "tail_number",
}

func hour(h int) time.Time {
    return time.Date(2026, 3, 10, h, 0, 0, 0, time.UTC)
}

func expectLayout(mock sqlmock.Sqlmock, layoutID, hangarID uint64) {
    mock.ExpectQuery("SELECT id, hangar_id, name, is_active FROM layouts WHERE id").
        WithArgs(layoutID).
        WillReturnRows(sqlmock.NewRows([]string{"id", "hangar_id", "name", "is_active"}).
            AddRow(layoutID, hangarID, "Bay A", true))
}

func expectEventLock(mock sqlmock.Sqlmock, eventID uint64, start, end time.Time) {
    mock.ExpectQuery("FROM events WHERE id = (.+) FOR UPDATE").
        WithArgs(eventID).
        WillReturnRows(sqlmock.NewRows(eventCols).
            AddRow(eventID, 5, "C-check", "OPERATIONAL", "PLANNED", start, end, nil, nil, nil, start, start))
}

func expectStandLock(mock sqlmock.Sqlmock, standID, layoutID uint64) {
    mock.ExpectQuery("SELECT id FROM stands WHERE id = (.+) AND layout_id = (.+) FOR UPDATE").
        WithArgs(standID, layoutID).
        WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(standID))
}

func expectNoReservation(mock sqlmock.Sqlmock, eventID uint64) {
    mock.ExpectQuery("FROM reservations WHERE event_id").
        WithArgs(eventID).
        WillReturnError(sql.ErrNoRows)
}

func expectNoConflicts(mock sqlmock.Sqlmock) {
    mock.ExpectQuery("JOIN events e ON e.id = r.event_id").
        WillReturnRows(sqlmock.NewRows(conflictCols))
}

func expectUpsert(mock sqlmock.Sqlmock, eventID, layoutID, standID uint64, start, end time.Time) {
    mock.ExpectExec("INSERT INTO reservations").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery("FROM reservations WHERE event_id").
        WithArgs(eventID).
        WillReturnRows(sqlmock.NewRows(reservationCols).
            AddRow(eventID, layoutID, standID, start, end, start, start))
}

func expectSetPlacement(mock sqlmock.Sqlmock, eventID, hangarID, layoutID uint64) {
    mock.ExpectExec("UPDATE events SET hangar_id = (.+), layout_id = (.+), updated_at").
        WithArgs(hangarID, layoutID, eventID).
        WillReturnResult(sqlmock.NewResult(0, 1))
}

func expectAuditInsert(mock sqlmock.Sqlmock) {
    mock.ExpectExec("INSERT INTO audit_log").
        WillReturnResult(sqlmock.NewResult(1, 1))
    mock.ExpectQuery("SELECT created_at FROM audit_log WHERE id").
        WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(hour(9)))
}

func TestAssignFirstPlacement(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    expectLayout(mock, 3, 7)
    mock.ExpectBegin()
    expectEventLock(mock, 10, hour(8), hour(12))
    expectStandLock(mock, 21, 3)
    expectNoReservation(mock, 10)
    expectNoConflicts(mock)
    expectUpsert(mock, 10, 3, 21, hour(8), hour(12))
    expectSetPlacement(mock, 10, 7, 3)
    expectAuditInsert(mock)
    mock.ExpectCommit()

    res, err := svc.Assign(context.Background(), "planner1", AssignInput{
        EventID:  10,
        LayoutID: 3,
        StandID:  21,
    })
    require.NoError(t, err)
    assert.Equal(t, uint64(10), res.EventID)
    assert.Equal(t, uint64(21), res.StandID)
    assert.True(t, res.StartsAt.Equal(hour(8)))
    assert.True(t, res.EndsAt.Equal(hour(12)))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignExplicitWindowAudited(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    expectLayout(mock, 3, 7)
    mock.ExpectBegin()
    expectEventLock(mock, 10, hour(8), hour(12))
    expectStandLock(mock, 21, 3)
    expectNoReservation(mock, 10)
    expectNoConflicts(mock)
    expectUpsert(mock, 10, 3, 21, hour(14), hour(18))
    expectSetPlacement(mock, 10, 7, 3)
    // the overridden window, not the event's own, lands in the audit payload
    mock.ExpectExec("INSERT INTO audit_log").
        WithArgs(uint64(10), "RESERVE", "planner1", nil,
            []byte(`{"to":{"hangar_id":7,"layout_id":3,"stand_id":21,"starts_at":"2026-03-10T14:00:00Z","ends_at":"2026-03-10T18:00:00Z"}}`)).
        WillReturnResult(sqlmock.NewResult(1, 1))
    mock.ExpectQuery("SELECT created_at FROM audit_log WHERE id").
        WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(hour(9)))
    mock.ExpectCommit()

    start, end := hour(14), hour(18)
    res, err := svc.Assign(context.Background(), "planner1", AssignInput{
        EventID:  10,
        LayoutID: 3,
        StandID:  21,
        StartsAt: &start,
        EndsAt:   &end,
    })
    require.NoError(t, err)
    assert.True(t, res.StartsAt.Equal(hour(14)))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignConflictFailsAndRollsBack(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    expectLayout(mock, 3, 7)
    mock.ExpectBegin()
    expectEventLock(mock, 10, hour(8), hour(12))
    expectStandLock(mock, 21, 3)
    expectNoReservation(mock, 10)
    mock.ExpectQuery("JOIN events e ON e.id = r.event_id").
        WillReturnRows(sqlmock.NewRows(conflictCols).
            AddRow(40, 3, 21, hour(9), hour(11), hour(1), hour(1), "A-check", "PLANNED", "D-ABCD"))
    mock.ExpectRollback()

    _, err := svc.Assign(context.Background(), "planner1", AssignInput{
        EventID:  10,
        LayoutID: 3,
        StandID:  21,
    })
    var conflict *ConflictError
    require.ErrorAs(t, err, &conflict)
    assert.Equal(t, uint64(40), conflict.EventID)
    assert.Equal(t, "A-check", conflict.Title)
    assert.Equal(t, "D-ABCD", conflict.TailNumber)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignReplacementRequiresReason(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    expectLayout(mock, 3, 7)
    mock.ExpectBegin()
    expectEventLock(mock, 10, hour(8), hour(12))
    expectStandLock(mock, 21, 3)
    // prior reservation sits on another stand, so this is a real change
    mock.ExpectQuery("FROM reservations WHERE event_id").
        WithArgs(uint64(10)).
        WillReturnRows(sqlmock.NewRows(reservationCols).
            AddRow(10, 3, 22, hour(8), hour(12), hour(1), hour(1)))
    mock.ExpectRollback()

    _, err := svc.Assign(context.Background(), "planner1", AssignInput{
        EventID:  10,
        LayoutID: 3,
        StandID:  21,
    })
    var verr *ValidationError
    require.ErrorAs(t, err, &verr)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignWindowOverrideMustBePaired(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    start := hour(8)
    _, err := svc.Assign(context.Background(), "planner1", AssignInput{
        EventID:  10,
        LayoutID: 3,
        StandID:  21,
        StartsAt: &start,
    })
    var verr *ValidationError
    require.ErrorAs(t, err, &verr)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnassignIdempotent(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    mock.ExpectBegin()
    expectEventLock(mock, 10, hour(8), hour(12))
    expectNoReservation(mock, 10)
    mock.ExpectCommit()

    deleted, err := svc.Unassign(context.Background(), "planner1", 10, "")
    require.NoError(t, err)
    assert.Zero(t, deleted)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnassignRemovesReservation(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    mock.ExpectBegin()
    mock.ExpectQuery("FROM events WHERE id = (.+) FOR UPDATE").
        WithArgs(uint64(10)).
        WillReturnRows(sqlmock.NewRows(eventCols).
            AddRow(10, 5, "C-check", "OPERATIONAL", "PLANNED", hour(8), hour(12), 7, 3, nil, hour(1), hour(1)))
    mock.ExpectQuery("FROM reservations WHERE event_id").
        WithArgs(uint64(10)).
        WillReturnRows(sqlmock.NewRows(reservationCols).
            AddRow(10, 3, 21, hour(8), hour(12), hour(1), hour(1)))
    mock.ExpectExec("DELETE FROM reservations WHERE event_id").
        WithArgs(uint64(10)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("UPDATE events SET hangar_id = NULL, layout_id = NULL, updated_at").
        WithArgs(uint64(10)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    expectAuditInsert(mock)
    mock.ExpectCommit()

    deleted, err := svc.Unassign(context.Background(), "planner1", 10, "aircraft left early")
    require.NoError(t, err)
    assert.Equal(t, int64(1), deleted)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnassignEventNotFound(t *testing.T) {
    svc, mock, _ := newPlacementTest(t)

    mock.ExpectBegin()
    mock.ExpectQuery("FROM events WHERE id = (.+) FOR UPDATE").
        WithArgs(uint64(99)).
        WillReturnError(sql.ErrNoRows)
    mock.ExpectRollback()

    _, err := svc.Unassign(context.Background(), "planner1", 99, "")
    assert.True(t, errors.Is(err, repository.ErrEventNotFound))
    assert.NoError(t, mock.ExpectationsWereMet())
}

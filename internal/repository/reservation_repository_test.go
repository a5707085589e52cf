package repository

import (
    "context"
    "database/sql"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    return db, mock
}

func at(h int) time.Time {
    return time.Date(2026, 3, 10, h, 0, 0, 0, time.UTC)
}

func TestFindConflictsTxExcludesMovingEvent(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewReservationRepo(db)

    mock.ExpectBegin()
    mock.ExpectQuery("NOT .r.ends_at <= .+ OR r.starts_at >= .+").
        WithArgs(uint64(21), uint64(10), at(8), at(12)).
        WillReturnRows(sqlmock.NewRows([]string{
            "event_id", "layout_id", "stand_id", "starts_at", "ends_at", "created_at", "updated_at",
            "title", "status", "tail_number",
        }).AddRow(41, 3, 21, at(9), at(11), at(1), at(1), "Engine swap", "PLANNED", "D-AAAA"))
    mock.ExpectCommit()

    tx, err := db.BeginTx(context.Background(), nil)
    require.NoError(t, err)
    conflicts, err := repo.FindConflictsTx(context.Background(), tx, 21, at(8), at(12), 10)
    require.NoError(t, err)
    require.NoError(t, tx.Commit())

    require.Len(t, conflicts, 1)
    assert.Equal(t, uint64(41), conflicts[0].EventID)
    assert.Equal(t, "Engine swap", conflicts[0].EventTitle)
    assert.Equal(t, "D-AAAA", conflicts[0].TailNumber)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindConflictsTxNoRows(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewReservationRepo(db)

    mock.ExpectBegin()
    mock.ExpectQuery("FROM reservations r").
        WillReturnRows(sqlmock.NewRows([]string{
            "event_id", "layout_id", "stand_id", "starts_at", "ends_at", "created_at", "updated_at",
            "title", "status", "tail_number",
        }))
    mock.ExpectRollback()

    tx, err := db.BeginTx(context.Background(), nil)
    require.NoError(t, err)
    conflicts, err := repo.FindConflictsTx(context.Background(), tx, 21, at(8), at(12), 0)
    require.NoError(t, err)
    require.NoError(t, tx.Rollback())

    assert.Empty(t, conflicts)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertTxReturnsWrittenRow(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewReservationRepo(db)

    mock.ExpectBegin()
    mock.ExpectExec("INSERT INTO reservations").
        WithArgs(uint64(10), uint64(3), uint64(21), at(8), at(12)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery("FROM reservations WHERE event_id").
        WithArgs(uint64(10)).
        WillReturnRows(sqlmock.NewRows([]string{
            "event_id", "layout_id", "stand_id", "starts_at", "ends_at", "created_at", "updated_at",
        }).AddRow(10, 3, 21, at(8), at(12), at(1), at(1)))
    mock.ExpectCommit()

    tx, err := db.BeginTx(context.Background(), nil)
    require.NoError(t, err)
    res, err := repo.UpsertTx(context.Background(), tx, 10, 3, 21, at(8), at(12))
    require.NoError(t, err)
    require.NoError(t, tx.Commit())

    assert.Equal(t, uint64(10), res.EventID)
    assert.Equal(t, uint64(3), res.LayoutID)
    assert.Equal(t, uint64(21), res.StandID)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByEventTxIdempotent(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewReservationRepo(db)

    mock.ExpectBegin()
    mock.ExpectExec("DELETE FROM reservations WHERE event_id").
        WithArgs(uint64(99)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectCommit()

    tx, err := db.BeginTx(context.Background(), nil)
    require.NoError(t, err)
    deleted, err := repo.DeleteByEventTx(context.Background(), tx, 99)
    require.NoError(t, err)
    require.NoError(t, tx.Commit())

    assert.Zero(t, deleted)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEventNotFound(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewReservationRepo(db)

    mock.ExpectQuery("FROM reservations WHERE event_id").
        WithArgs(uint64(10)).
        WillReturnError(sql.ErrNoRows)

    _, err := repo.GetByEvent(context.Background(), 10)
    assert.ErrorIs(t, err, ErrReservationNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}

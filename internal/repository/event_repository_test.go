package repository

import (
    "context"
    "database/sql"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/Alkifr/hvp-v3/internal/model"
)

func TestGetByIDMapsNullPlacement(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewEventRepo(db)

    mock.ExpectQuery("FROM events WHERE id").
        WithArgs(uint64(10)).
        WillReturnRows(sqlmock.NewRows([]string{
            "id", "aircraft_id", "title", "level", "status",
            "starts_at", "ends_at", "hangar_id", "layout_id", "notes",
            "created_at", "updated_at",
        }).AddRow(10, 5, "C-check", "OPERATIONAL", "DRAFT", at(8), at(12), nil, nil, nil, at(1), at(1)))

    e, err := repo.GetByID(context.Background(), 10)
    require.NoError(t, err)
    assert.Nil(t, e.HangarID)
    assert.Nil(t, e.LayoutID)
    assert.Nil(t, e.Notes)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewEventRepo(db)

    mock.ExpectQuery("FROM events WHERE id").
        WithArgs(uint64(99)).
        WillReturnError(sql.ErrNoRows)

    _, err := repo.GetByID(context.Background(), 99)
    assert.ErrorIs(t, err, ErrEventNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFieldsTxMissingRow(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewEventRepo(db)

    mock.ExpectBegin()
    mock.ExpectExec("UPDATE events SET title =").
        WillReturnResult(sqlmock.NewResult(0, 0))
    // zero rows affected could also be a no-op edit, so existence is re-checked
    mock.ExpectQuery("SELECT id FROM events WHERE id").
        WithArgs(uint64(99)).
        WillReturnError(sql.ErrNoRows)
    mock.ExpectRollback()

    tx, err := db.BeginTx(context.Background(), nil)
    require.NoError(t, err)
    ev := &model.Event{ID: 99, Title: "C-check", Level: "OPERATIONAL", Status: "DRAFT", StartsAt: at(8), EndsAt: at(12)}
    uerr := repo.UpdateFieldsTx(context.Background(), tx, ev)
    require.NoError(t, tx.Rollback())

    assert.ErrorIs(t, uerr, ErrEventNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByIDNotFound(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewEventRepo(db)

    mock.ExpectExec("DELETE FROM events WHERE id").
        WithArgs(uint64(99)).
        WillReturnResult(sqlmock.NewResult(0, 0))

    err := repo.DeleteByID(context.Background(), 99)
    assert.ErrorIs(t, err, ErrEventNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStandLockTxWrongLayout(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewStandRepo(db)

    mock.ExpectBegin()
    mock.ExpectQuery("SELECT id FROM stands WHERE id = (.+) AND layout_id = (.+) FOR UPDATE").
        WithArgs(uint64(21), uint64(4)).
        WillReturnError(sql.ErrNoRows)
    mock.ExpectRollback()

    tx, err := db.BeginTx(context.Background(), nil)
    require.NoError(t, err)
    lerr := repo.LockTx(context.Background(), tx, 21, 4)
    require.NoError(t, tx.Rollback())

    assert.ErrorIs(t, lerr, ErrStandNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/Alkifr/hvp-v3/internal/model"
)

// AircraftRepo manages read access to the aircraft register.  Like
// hangars and layouts this is reference data maintained elsewhere.
type AircraftRepo struct {
    db *sql.DB
}

// NewAircraftRepo constructs an AircraftRepo with the given DB handle.
func NewAircraftRepo(db *sql.DB) *AircraftRepo {
    return &AircraftRepo{db: db}
}

// GetByID retrieves an aircraft by its ID.  It returns
// ErrAircraftNotFound if there is no matching row.
func (r *AircraftRepo) GetByID(ctx context.Context, id uint64) (*model.Aircraft, error) {
    const q = `SELECT id, tail_number, type_code FROM aircraft WHERE id = ?`
    var a model.Aircraft
    err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.TailNumber, &a.TypeCode)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrAircraftNotFound
        }
        return nil, err
    }
    return &a, nil
}

// List returns all aircraft ordered by tail number.
func (r *AircraftRepo) List(ctx context.Context) ([]model.Aircraft, error) {
    const q = `SELECT id, tail_number, type_code FROM aircraft ORDER BY tail_number ASC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    result := make([]model.Aircraft, 0)
    for rows.Next() {
        var a model.Aircraft
        if err := rows.Scan(&a.ID, &a.TailNumber, &a.TypeCode); err != nil {
            return nil, err
        }
        result = append(result, a)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/Alkifr/hvp-v3/internal/model"
)

// LayoutRepo manages read access to layouts and hangars.  Both are
// reference data maintained outside this service, so only lookups and
// listings are exposed.
type LayoutRepo struct {
    db *sql.DB
}

// NewLayoutRepo constructs a LayoutRepo with the given DB handle.
func NewLayoutRepo(db *sql.DB) *LayoutRepo {
    return &LayoutRepo{db: db}
}

// GetByID retrieves a layout by its ID.  It returns ErrLayoutNotFound
// if there is no matching row.
func (r *LayoutRepo) GetByID(ctx context.Context, id uint64) (*model.Layout, error) {
    const q = `SELECT id, hangar_id, name, is_active FROM layouts WHERE id = ?`
    var l model.Layout
    err := r.db.QueryRowContext(ctx, q, id).Scan(&l.ID, &l.HangarID, &l.Name, &l.IsActive)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrLayoutNotFound
        }
        return nil, err
    }
    return &l, nil
}

// ListByHangar returns the layouts of a hangar ordered by name.
func (r *LayoutRepo) ListByHangar(ctx context.Context, hangarID uint64) ([]model.Layout, error) {
    const q = `SELECT id, hangar_id, name, is_active FROM layouts WHERE hangar_id = ? ORDER BY name ASC`
    rows, err := r.db.QueryContext(ctx, q, hangarID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    result := make([]model.Layout, 0)
    for rows.Next() {
        var l model.Layout
        if err := rows.Scan(&l.ID, &l.HangarID, &l.Name, &l.IsActive); err != nil {
            return nil, err
        }
        result = append(result, l)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// ListHangars returns all hangars ordered by name.
func (r *LayoutRepo) ListHangars(ctx context.Context) ([]model.Hangar, error) {
    const q = `SELECT id, name FROM hangars ORDER BY name ASC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    result := make([]model.Hangar, 0)
    for rows.Next() {
        var h model.Hangar
        if err := rows.Scan(&h.ID, &h.Name); err != nil {
            return nil, err
        }
        result = append(result, h)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/Alkifr/hvp-v3/internal/model"
)

// StandRepo manages persistence for stands.
type StandRepo struct {
    db *sql.DB
}

// NewStandRepo constructs a StandRepo with the given DB handle.
func NewStandRepo(db *sql.DB) *StandRepo {
    return &StandRepo{db: db}
}

const standColumns = `id, layout_id, name, geom_x, geom_y, geom_w, geom_h, is_active, created_at, updated_at`

// GetByID retrieves a stand by its ID.  It returns ErrStandNotFound if
// there is no matching row.
func (r *StandRepo) GetByID(ctx context.Context, id uint64) (*model.Stand, error) {
    const q = `SELECT ` + standColumns + ` FROM stands WHERE id = ?`
    var s model.Stand
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &s.ID, &s.LayoutID, &s.Name, &s.GeomX, &s.GeomY, &s.GeomW, &s.GeomH,
        &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrStandNotFound
        }
        return nil, err
    }
    return &s, nil
}

// LockTx locks the stand row for the duration of the caller's
// transaction and verifies the stand belongs to the expected layout.
// Every placement write takes this lock before running the conflict
// check, which serializes concurrent placements targeting the same
// stand without blocking placements on other stands.  The conflict
// query itself joins events, and MySQL is picky about FOR UPDATE over
// joins, so the lock lives here on the plain stand row instead.
func (r *StandRepo) LockTx(ctx context.Context, tx *sql.Tx, standID, layoutID uint64) error {
    const q = `SELECT id FROM stands WHERE id = ? AND layout_id = ? FOR UPDATE`
    var id uint64
    if err := tx.QueryRowContext(ctx, q, standID, layoutID).Scan(&id); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrStandNotFound
        }
        return err
    }
    return nil
}

// ListByLayout returns all stands of a layout ordered by name.  Use the
// activeOnly flag to hide retired stands from the map.
func (r *StandRepo) ListByLayout(ctx context.Context, layoutID uint64, activeOnly bool) ([]model.Stand, error) {
    q := `SELECT ` + standColumns + ` FROM stands WHERE layout_id = ?`
    if activeOnly {
        q += ` AND is_active = TRUE`
    }
    q += ` ORDER BY name ASC`
    rows, err := r.db.QueryContext(ctx, q, layoutID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    result := make([]model.Stand, 0)
    for rows.Next() {
        var s model.Stand
        if err := rows.Scan(
            &s.ID, &s.LayoutID, &s.Name, &s.GeomX, &s.GeomY, &s.GeomW, &s.GeomH,
            &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        result = append(result, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

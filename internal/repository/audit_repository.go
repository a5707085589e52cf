package repository

import (
    "context"
    "database/sql"

    "github.com/Alkifr/hvp-v3/internal/model"
)

// AuditRepo appends to and reads the audit log.  The log is strictly
// append-only: there is no update or delete here, and the only delete
// path is the cascade when an event itself is removed.
type AuditRepo struct {
    db *sql.DB
}

// NewAuditRepo constructs an AuditRepo with the given DB handle.
func NewAuditRepo(db *sql.DB) *AuditRepo {
    return &AuditRepo{db: db}
}

// InsertTx appends one audit record inside the caller's transaction so
// the record commits or rolls back together with the mutation it
// describes.  The generated id and creation timestamp are populated on
// the given record.
func (r *AuditRepo) InsertTx(ctx context.Context, tx *sql.Tx, rec *model.AuditRecord) error {
    const q = `INSERT INTO audit_log (event_id, action, actor, reason, changes) VALUES (?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, rec.EventID, rec.Action, rec.Actor, rec.Reason, []byte(rec.Changes))
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    rec.ID = uint64(id)
    const sel = `SELECT created_at FROM audit_log WHERE id = ?`
    return tx.QueryRowContext(ctx, sel, rec.ID).Scan(&rec.CreatedAt)
}

// HistoryByEvent returns the audit records of an event, newest first.
// This is the read used by the history panel; it never participates in
// write transactions.
func (r *AuditRepo) HistoryByEvent(ctx context.Context, eventID uint64) ([]model.AuditRecord, error) {
    const q = `SELECT id, event_id, action, actor, reason, changes, created_at
               FROM audit_log WHERE event_id = ?
               ORDER BY created_at DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, eventID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    result := make([]model.AuditRecord, 0)
    for rows.Next() {
        var rec model.AuditRecord
        var reason sql.NullString
        var changes []byte
        if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Action, &rec.Actor, &reason, &changes, &rec.CreatedAt); err != nil {
            return nil, err
        }
        if reason.Valid {
            v := reason.String
            rec.Reason = &v
        }
        rec.Changes = changes
        result = append(result, rec)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

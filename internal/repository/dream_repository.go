package repository

import (
	"context"
	"database/sql"

	"github.com/morphea/morphea-backend/internal/model"
)

// DreamRepo owns the usage journal and the admission step of the quota
// guard. Record is the only writer of dreams_used, so the
// used <= allowed invariant holds under any number of concurrent
// requests.
type DreamRepo struct{ DB *sql.DB }

func NewDreamRepo(db *sql.DB) *DreamRepo { return &DreamRepo{DB: db} }

// Record applies one unit of consumption and journals the interpretation
// in a single transaction. The increment is conditional: it only lands
// while dreams_used is below dreams_allowed and the subscription has not
// expired. When the condition fails (another request won the last slot,
// or the plan lapsed between check and write) no row is journaled and
// admitted is false; the caller returns a limit-reached rejection.
func (r *DreamRepo) Record(ctx context.Context, d *model.Dream) (admitted bool, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE subscriptions
		 SET dreams_used = dreams_used + 1
		 WHERE user_id = ?
		   AND dreams_used < dreams_allowed
		   AND (expires_at IS NULL OR expires_at > UTC_TIMESTAMP())`,
		d.UserID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	ins, err := tx.ExecContext(ctx,
		`INSERT INTO dreams (user_id, name, email, message, interpretation, language)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.UserID, d.Name, d.Email, d.Message, d.Interpretation, d.Language)
	if err != nil {
		return false, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return false, err
	}
	d.ID = uint64(id)

	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

// ListByUser returns the user's journal, newest first.
func (r *DreamRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Dream, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, name, email, message, interpretation, language, created_at
		 FROM dreams WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	dreams := make([]model.Dream, 0)
	for rows.Next() {
		var (
			d      model.Dream
			interp sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Email, &d.Message, &interp, &d.Language, &d.CreatedAt); err != nil {
			return nil, err
		}
		if interp.Valid {
			d.Interpretation = interp.String
		}
		dreams = append(dreams, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dreams, nil
}

// CountByUser returns how many journal rows the user owns.
func (r *DreamRepo) CountByUser(ctx context.Context, userID uint64) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM dreams WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

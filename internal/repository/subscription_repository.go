package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/morphea/morphea-backend/internal/model"
)

// SubscriptionRepo reads and administers the entitlement ledger. The
// consumption side of the ledger (the conditional increment) lives in
// DreamRepo.Record, where it runs in the same transaction as the journal
// insert.
type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

// GetByUserID returns the user's subscription or ErrNoSubscription.
func (r *SubscriptionRepo) GetByUserID(ctx context.Context, userID uint64) (model.Subscription, error) {
	var (
		s         model.Subscription
		expiresAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, plan_name, dreams_allowed, dreams_used, created_at, expires_at
		 FROM subscriptions WHERE user_id = ? LIMIT 1`,
		userID).Scan(&s.ID, &s.UserID, &s.PlanName, &s.DreamsAllowed, &s.DreamsUsed, &s.CreatedAt, &expiresAt)
	if err == sql.ErrNoRows {
		return model.Subscription{}, ErrNoSubscription
	}
	if err != nil {
		return model.Subscription{}, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		s.ExpiresAt = &t
	}
	return s, nil
}

// Grant upserts the subscription for a user: the allowance and plan name
// are replaced, the consumption counter resets to zero and the expiry is
// overwritten (nil clears it). Used by the administrative grant endpoint.
func (r *SubscriptionRepo) Grant(ctx context.Context, userID uint64, planName string, dreamsAllowed uint32, expiresAt *time.Time) error {
	var exp interface{}
	if expiresAt != nil {
		exp = expiresAt.UTC().Format("2006-01-02 15:04:05")
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO subscriptions (user_id, plan_name, dreams_allowed, dreams_used, expires_at)
		 VALUES (?, ?, ?, 0, ?)
		 ON DUPLICATE KEY UPDATE
		   plan_name = VALUES(plan_name),
		   dreams_allowed = VALUES(dreams_allowed),
		   dreams_used = 0,
		   expires_at = VALUES(expires_at)`,
		userID, planName, dreamsAllowed, exp)
	return err
}

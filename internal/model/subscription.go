package model

import "time"

// Subscription is a user's entitlement to interpretation requests: an
// allowance, a consumption counter and an optional expiry.  Each user
// owns at most one row; an administrative grant replaces the allowance
// and resets the counter.  The invariant DreamsUsed <= DreamsAllowed is
// enforced by the conditional increment in the dream repository, never
// by this struct.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – owning user (unique).
//  PlanName      – plan label, e.g. "gratis" or "premium".
//  DreamsAllowed – how many interpretations the plan grants.
//  DreamsUsed    – how many have been consumed so far.
//  CreatedAt     – creation timestamp.
//  ExpiresAt     – optional expiry; nil means the plan never expires.
type Subscription struct {
    ID            uint64     // subscriptions.id
    UserID        uint64     // subscriptions.user_id
    PlanName      string     // subscriptions.plan_name
    DreamsAllowed uint32     // subscriptions.dreams_allowed
    DreamsUsed    uint32     // subscriptions.dreams_used
    CreatedAt     time.Time  // subscriptions.created_at
    ExpiresAt     *time.Time // subscriptions.expires_at (nullable)
}

// Remaining returns how many interpretations the subscription still
// covers.  The result can go negative if the counter was ever corrupted
// out of band; callers treat anything <= 0 as exhausted.
func (s Subscription) Remaining() int64 {
    return int64(s.DreamsAllowed) - int64(s.DreamsUsed)
}

// Expired reports whether the subscription has an expiry in the past.
func (s Subscription) Expired(now time.Time) bool {
    return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

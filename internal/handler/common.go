package handler // handler defines http handlers

import (
    "context"
    "errors"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/morphea/morphea-backend/internal/model"
)

// The handlers depend on narrow store interfaces rather than the concrete
// repository types so tests can swap in in-memory fakes. The repository
// package satisfies every one of them.

// UserStore persists and resolves user accounts.
type UserStore interface {
    Create(ctx context.Context, email, password, role string, cost int) (uint64, error)
    GetByEmail(ctx context.Context, email string) (model.User, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
    StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
    RevokeByHash(ctx context.Context, tokenHash string) error
}

// SubscriptionStore reads and administers the entitlement ledger.
type SubscriptionStore interface {
    GetByUserID(ctx context.Context, userID uint64) (model.Subscription, error)
    Grant(ctx context.Context, userID uint64, planName string, dreamsAllowed uint32, expiresAt *time.Time) error
}

// DreamStore journals admitted interpretation requests. Record performs
// the atomic conditional consumption described on DreamRepo.Record.
type DreamStore interface {
    Record(ctx context.Context, d *model.Dream) (bool, error)
    ListByUser(ctx context.Context, userID uint64) ([]model.Dream, error)
}

// getUserID extracts the authenticated user's id placed in the context by
// the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
    if id, ok := c.Get("user_id").(uint64); ok && id != 0 {
        return id, nil
    }
    return 0, errors.New("no user_id in context")
}

// getEmail extracts the authenticated user's email from the context.
func getEmail(c echo.Context) (string, error) {
    if e, ok := c.Get("email").(string); ok && e != "" {
        return e, nil
    }
    return "", errors.New("no email in context")
}

// reqCtx derives a bounded context for a database call from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

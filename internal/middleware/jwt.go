package middleware // middleware provides reusable HTTP middleware functions

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/morphea/morphea-backend/internal/model"
    "github.com/morphea/morphea-backend/internal/utils"
)

// UserResolver looks up the user behind a token's subject claim. It is
// satisfied by repository.UserRepo and by in-memory fakes in tests.
type UserResolver interface {
    GetByEmail(ctx context.Context, email string) (model.User, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and resolves its subject to a stored user. On success it injects
// "user_id", "email" and "role" into the request context for handlers to
// read via c.Get(). A token that verifies but whose subject no longer
// maps to a user is rejected: accounts can disappear while tokens are
// still in flight.
func JWTAuth(secret string, users UserResolver) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            email, role, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()
            u, err := users.GetByEmail(ctx, email)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user not found"})
            }
            if !u.IsActive {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account disabled"})
            }

            c.Set("user_id", u.ID)
            c.Set("email", u.Email)
            c.Set("role", role)
            return next(c)
        }
    }
}

package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/morphea/morphea-backend/internal/handler"
	"github.com/morphea/morphea-backend/internal/middleware"
)

// RegisterRoutes registers platform middleware and the routes that need
// neither authentication nor throttling. CORS is wide open because the
// browser frontend is served from a different origin. /healthz is used
// by load balancers to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.Use(echomw.CORS())
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration, login and session endpoints. None
// of these require an existing session; each handler generates or
// exchanges tokens itself. The rate limiter keys these by client IP
// since there is no authenticated identity yet.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	g := e.Group("", passthroughIfNil(limit))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

// RegisterAPI registers the bearer-protected application surface and the
// public plan catalogue. The JWT middleware resolves the token subject
// to a stored user before any handler runs; the administrative grant
// endpoint additionally demands the ADMIN role. The rate limiter is
// mounted after JWTAuth on protected groups so user-keyed bucket
// strategies see the resolved identity instead of "anon".
func RegisterAPI(e *echo.Echo, s *handler.SubscriptionHandler, d *handler.DreamHandler, jwtSecret string, users middleware.UserResolver, cache, limit echo.MiddlewareFunc) {
	limit = passthroughIfNil(limit)

	// The plan catalogue is the only cacheable response; everything else
	// is per-user.
	if cache != nil {
		e.GET("/plans", s.Plans, limit, cache)
	} else {
		e.GET("/plans", s.Plans, limit)
	}

	auth := e.Group("", middleware.JWTAuth(jwtSecret, users), limit)
	auth.GET("/me", s.Me)
	// Older clients call the original Spanish path; both serve the same handler.
	auth.GET("/suscripcion", s.Me)
	auth.POST("/interpretar", d.Interpret)
	auth.GET("/dreams", d.List)

	admin := e.Group("", middleware.JWTAuth(jwtSecret, users), middleware.RequireRole("ADMIN"), limit)
	admin.POST("/actualizar-suscripcion", s.Update)
}

func passthroughIfNil(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	if mw != nil {
		return mw
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error { return next(c) }
	}
}

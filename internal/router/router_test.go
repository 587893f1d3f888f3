package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/morphea/morphea-backend/internal/handler"
	"github.com/morphea/morphea-backend/internal/model"
	"github.com/morphea/morphea-backend/internal/repository"
	"github.com/morphea/morphea-backend/internal/utils"
)

const testSecret = "router-test-secret"

// singleUser serves exactly one account for both the JWT middleware and
// the handlers.
type singleUser struct{ u model.User }

func (s singleUser) GetByEmail(_ context.Context, email string) (model.User, error) {
	if email == s.u.Email {
		return s.u, nil
	}
	return model.User{}, repository.ErrUserNotFound
}

func (s singleUser) GetByID(_ context.Context, id uint64) (model.User, error) {
	if id == s.u.ID {
		return s.u, nil
	}
	return model.User{}, repository.ErrUserNotFound
}

func (s singleUser) Create(context.Context, string, string, string, int) (uint64, error) {
	return 0, repository.ErrEmailExists
}

type singleSub struct{ s model.Subscription }

func (f singleSub) GetByUserID(_ context.Context, userID uint64) (model.Subscription, error) {
	if userID == f.s.UserID {
		return f.s, nil
	}
	return model.Subscription{}, repository.ErrNoSubscription
}

func (f singleSub) Grant(context.Context, uint64, string, uint32, *time.Time) error { return nil }

type noopDreams struct{}

func (noopDreams) Record(context.Context, *model.Dream) (bool, error) { return true, nil }

func (noopDreams) ListByUser(context.Context, uint64) ([]model.Dream, error) { return nil, nil }

type fixedInterp struct{}

func (fixedInterp) Interpret(context.Context, string, string, string) (string, error) {
	return "ok", nil
}

func TestCORSPreflight(t *testing.T) {
	e := echo.New()
	RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodOptions, "/healthz", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestCORSHeaderOnSimpleRequest(t *testing.T) {
	e := echo.New()
	RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

// TestLimiterSeesAuthenticatedUser guards the middleware order on
// protected groups: the limiter must run after JWTAuth so user-keyed
// bucket strategies key on the real identity, not "anon".
func TestLimiterSeesAuthenticatedUser(t *testing.T) {
	user := model.User{ID: 7, Email: "ana@example.com", Role: "USER", IsActive: true}
	users := singleUser{u: user}
	subs := singleSub{s: model.Subscription{UserID: 7, PlanName: "gratis", DreamsAllowed: 1}}

	subHandler := handler.NewSubscriptionHandler(users, subs)
	dreamHandler := handler.NewDreamHandler(subs, noopDreams{}, fixedInterp{}, nil)

	var limiterUserID uint64
	limit := echo.MiddlewareFunc(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiterUserID, _ = c.Get("user_id").(uint64)
			return next(c)
		}
	})

	e := echo.New()
	RegisterAPI(e, subHandler, dreamHandler, testSecret, users, nil, limit)

	tok := bearerFor(t, user.Email)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tok)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if limiterUserID != 7 {
		t.Fatalf("limiter saw user_id = %d, want 7; it must run after authentication", limiterUserID)
	}
}

func TestAdminRouteRejectsUserRole(t *testing.T) {
	user := model.User{ID: 7, Email: "ana@example.com", Role: "USER", IsActive: true}
	users := singleUser{u: user}
	subs := singleSub{s: model.Subscription{UserID: 7, PlanName: "gratis", DreamsAllowed: 1}}

	e := echo.New()
	RegisterAPI(e, handler.NewSubscriptionHandler(users, subs),
		handler.NewDreamHandler(subs, noopDreams{}, fixedInterp{}, nil),
		testSecret, users, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/actualizar-suscripcion", nil)
	req.Header.Set("Authorization", bearerFor(t, user.Email))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func bearerFor(t *testing.T, email string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, email, "USER", 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + tok.Token
}

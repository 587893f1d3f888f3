package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/morphea/morphea-backend/internal/repository"
)

// SubscriptionHandler exposes the subscription state endpoint and the
// administrative grant operation.
type SubscriptionHandler struct {
	Users UserStore
	Subs  SubscriptionStore
}

func NewSubscriptionHandler(u UserStore, s SubscriptionStore) *SubscriptionHandler {
	return &SubscriptionHandler{Users: u, Subs: s}
}

type subscriptionResp struct {
	Email         string     `json:"email"`
	PlanName      string     `json:"plan_name"`
	DreamsAllowed uint32     `json:"dreams_allowed"`
	DreamsUsed    uint32     `json:"dreams_used"`
	Remaining     int64      `json:"remaining"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

type grantReq struct {
	Email         string `json:"email"`
	PlanName      string `json:"plan_name"`
	MaxDreams     uint32 `json:"max_dreams"`
	ExpiresInDays *int   `json:"expires_in_days"`
}

// Me returns the authenticated user's subscription state. Served at both
// /me and /suscripcion, the path older clients still call.
func (h *SubscriptionHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	email, err := getEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sub, err := h.Subs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoSubscription) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "subscription not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, subscriptionResp{
		Email:         email,
		PlanName:      sub.PlanName,
		DreamsAllowed: sub.DreamsAllowed,
		DreamsUsed:    sub.DreamsUsed,
		Remaining:     sub.Remaining(),
		CreatedAt:     sub.CreatedAt,
		ExpiresAt:     sub.ExpiresAt,
	})
}

// Update handles the administrative grant: it replaces the target user's
// allowance and plan, resets the consumption counter to zero and sets or
// clears the expiry. The route is registered behind RequireRole("ADMIN");
// there is no unauthenticated path to this operation.
func (h *SubscriptionHandler) Update(c echo.Context) error {
	var req grantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}
	plan := strings.TrimSpace(req.PlanName)
	if plan == "" {
		plan = "premium"
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var expiresAt *time.Time
	if req.ExpiresInDays != nil {
		if *req.ExpiresInDays <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "expires_in_days must be positive"})
		}
		t := time.Now().UTC().Add(time.Duration(*req.ExpiresInDays) * 24 * time.Hour)
		expiresAt = &t
	}

	if err := h.Subs.Grant(ctx, u.ID, plan, req.MaxDreams, expiresAt); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update subscription failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "subscription updated"})
}

// planInfo describes one entry of the public plan catalogue.
type planInfo struct {
	Name          string `json:"name"`
	DreamsAllowed uint32 `json:"dreams_allowed"`
	DurationDays  *int   `json:"duration_days"`
	Description   string `json:"description"`
}

// Plans returns the static plan catalogue. The route sits behind the
// Redis response cache; the payload never varies per user.
func (h *SubscriptionHandler) Plans(c echo.Context) error {
	month := 30
	return c.JSON(http.StatusOK, echo.Map{"plans": []planInfo{
		{Name: "gratis", DreamsAllowed: 1, DurationDays: nil, Description: "Una interpretación de regalo al registrarte."},
		{Name: "premium", DreamsAllowed: 10, DurationDays: &month, Description: "Diez interpretaciones durante un mes."},
	}})
}

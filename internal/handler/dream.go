package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/morphea/morphea-backend/internal/interpreter"
	"github.com/morphea/morphea-backend/internal/model"
	"github.com/morphea/morphea-backend/internal/queue"
	"github.com/morphea/morphea-backend/internal/repository"
)

// Publisher hands an interpreted-dream event to the notification queue.
// service/queue_publisher.PublishDreamInterpreted satisfies it.
type Publisher func(ctx context.Context, event queue.DreamInterpretedEvent) error

// DreamHandler implements the metered interpretation endpoint: check the
// ledger, call the language model, journal the result with an atomic
// quota consumption, then queue the notification email.
type DreamHandler struct {
	Subs    SubscriptionStore
	Dreams  DreamStore
	Interp  interpreter.Client
	Publish Publisher
}

func NewDreamHandler(subs SubscriptionStore, dreams DreamStore, interp interpreter.Client, publish Publisher) *DreamHandler {
	if subs == nil || dreams == nil || interp == nil {
		panic("nil dependency passed to NewDreamHandler")
	}
	return &DreamHandler{Subs: subs, Dreams: dreams, Interp: interp, Publish: publish}
}

type interpretReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Language string `json:"language"`
}

type interpretResp struct {
	Message     string `json:"message"`
	Status      string `json:"status"`
	Contenido   string `json:"contenido,omitempty"`
	EmailQueued *bool  `json:"email_queued,omitempty"`
}

// Interpret handles POST /interpretar.
//
// The quota is consumed by a conditional increment inside the same
// transaction that journals the dream, so racing requests can never
// admit more than dreams_allowed in total. The pre-check before the
// model call only exists to spare the upstream API when the ledger is
// already exhausted; the increment is what actually decides admission.
// A rejection is a 200 with status "limit-reached", never an error.
func (h *DreamHandler) Interpret(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	accountEmail, err := getEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req interpretReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "message is required"})
	}
	if req.Language != "en" {
		req.Language = "es"
	}
	recipient := strings.TrimSpace(req.Email)
	if recipient == "" {
		recipient = accountEmail
	}

	preCtx, preCancel := reqCtx(c)
	sub, err := h.Subs.GetByUserID(preCtx, userID)
	preCancel()
	if err != nil {
		if errors.Is(err, repository.ErrNoSubscription) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active subscription"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if sub.Remaining() <= 0 || sub.Expired(time.Now().UTC()) {
		return c.JSON(http.StatusOK, limitReached(req.Language))
	}

	// The model call gets its own generous deadline; it is far slower
	// than any database step and is deliberately outside the journal
	// transaction so a failure here leaves the quota untouched.
	genCtx, genCancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer genCancel()
	text, err := h.Interp.Interpret(genCtx, req.Name, req.Message, req.Language)
	if err != nil {
		log.Printf("interpret: generation failed for user_id=%d: %v", userID, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "upstream generation failure"})
	}

	// Fresh database budget: the pre-check context was sized for a quick
	// read and would already be past its deadline after a model call of
	// any realistic length.
	ctx, cancel := reqCtx(c)
	defer cancel()

	dream := &model.Dream{
		UserID:         userID,
		Name:           req.Name,
		Email:          recipient,
		Message:        req.Message,
		Interpretation: text,
		Language:       req.Language,
	}
	admitted, err := h.Dreams.Record(ctx, dream)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record failed"})
	}
	if !admitted {
		// Lost the last slot to a concurrent request, or the plan
		// expired between the check and the write.
		return c.JSON(http.StatusOK, limitReached(req.Language))
	}

	queued := false
	if h.Publish != nil {
		err := h.Publish(ctx, queue.DreamInterpretedEvent{
			DreamID:        dream.ID,
			UserID:         userID,
			Name:           req.Name,
			Email:          recipient,
			Interpretation: text,
			Language:       req.Language,
			InterpretedAt:  time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			log.Printf("interpret: publish failed for dream_id=%d: %v", dream.ID, err)
		}
		queued = err == nil
	}

	msg := "Interpretación enviada"
	if req.Language == "en" {
		msg = "Interpretation sent"
	}
	return c.JSON(http.StatusOK, interpretResp{
		Message:     msg,
		Status:      "sent",
		Contenido:   text,
		EmailQueued: &queued,
	})
}

func limitReached(language string) interpretResp {
	msg := "Has alcanzado el límite de interpretaciones de tu plan"
	if language == "en" {
		msg = "You have reached your plan's interpretation limit"
	}
	return interpretResp{Message: msg, Status: "limit-reached"}
}

type dreamResp struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Message        string    `json:"message"`
	Interpretation string    `json:"interpretation"`
	Language       string    `json:"language"`
	CreatedAt      time.Time `json:"created_at"`
}

// List returns the authenticated user's journal, newest first.
func (h *DreamHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	dreams, err := h.Dreams.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]dreamResp, 0, len(dreams))
	for _, d := range dreams {
		out = append(out, dreamResp{
			ID:             d.ID,
			Name:           d.Name,
			Message:        d.Message,
			Interpretation: d.Interpretation,
			Language:       d.Language,
			CreatedAt:      d.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"dreams": out})
}

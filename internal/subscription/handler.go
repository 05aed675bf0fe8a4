// AngelaMos | 2026
// handler.go

package subscription

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/talentmarket/internal/core"
	"github.com/carterperez-dev/talentmarket/internal/middleware"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountUserRoutes adds /select-tier to the authenticated /user router.
func (h *Handler) MountUserRoutes(r chi.Router) {
	r.Post("/select-tier", h.SelectTier)
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.With(authenticator).Post("/create-payment-intent", h.CreatePaymentIntent)
}

func (h *Handler) SelectTier(w http.ResponseWriter, r *http.Request) {
	var req SelectTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.SelectTier(
		r.Context(),
		callerFrom(r),
		req,
		r.Header.Get(IdempotencyKeyHeader),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if !req.Amount.IsPositive() {
		core.BadRequest(w, "amount must be positive")
		return
	}

	resp, err := h.service.CreatePaymentIntent(
		r.Context(),
		callerFrom(r),
		req,
		r.Header.Get(IdempotencyKeyHeader),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, resp)
}

func callerFrom(r *http.Request) Caller {
	return Caller{
		UserID: middleware.GetUserID(r.Context()),
		Role:   middleware.GetUserRole(r.Context()),
	}
}

func writeError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "resource")
		return
	}
	core.InternalServerError(w, err)
}

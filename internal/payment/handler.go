// AngelaMos | 2026
// handler.go

package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/talentmarket/internal/core"
)

const maxWebhookBytes = 65536

type Handler struct {
	service   *Service
	activator Activator
	validator *validator.Validate
}

func NewHandler(service *Service, activator Activator) *Handler {
	return &Handler{
		service:   service,
		activator: activator,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the provider webhook. It authenticates by signature.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/stripe/webhook", h.Webhook)
}

func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		core.BadRequest(w, "unreadable webhook body")
		return
	}

	event, err := h.service.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			core.BadRequest(w, "invalid signature")
			return
		}
		core.BadRequest(w, "malformed event")
		return
	}

	if err := h.service.ProcessEvent(r.Context(), event, h.activator); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]bool{"received": true})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/payments", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.List)
		r.Post("/{paymentID}/refund", h.Refund)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{
		Page:     atoiDefault(q.Get("page"), 1),
		PageSize: atoiDefault(q.Get("pageSize"), 20),
		Status:   q.Get("status"),
		UserID:   q.Get("userId"),
	}
	params.Normalize()

	payments, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToPaymentResponseList(payments), params.Page, params.PageSize, total)
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	var req RefundRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			core.BadRequest(w, "invalid request body")
			return
		}
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.Refund(r.Context(), chi.URLParam(r, "paymentID"), req.Amount)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "payment")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToPaymentResponse(p))
}

func atoiDefault(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

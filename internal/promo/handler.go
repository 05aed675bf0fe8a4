// AngelaMos | 2026
// handler.go

package promo

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/talentmarket/internal/core"
	"github.com/carterperez-dev/talentmarket/internal/middleware"
)

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, limiter func(http.Handler) http.Handler,
) {
	r.With(authenticator, limiter).Post("/validate-promo-code", h.Validate)
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Validate(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		WriteError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/promo-codes", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{promoID}", h.Get)
		r.Put("/{promoID}", h.Update)
		r.Delete("/{promoID}", h.Deactivate)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{
		Page:       atoiDefault(q.Get("page"), 1),
		PageSize:   atoiDefault(q.Get("pageSize"), 20),
		ActiveOnly: q.Get("active") == "true",
	}
	params.Normalize()

	codes, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToPromoResponseList(codes), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "promoID"))
	if err != nil {
		WriteError(w, err)
		return
	}

	core.OK(w, ToPromoResponse(p))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		WriteError(w, err)
		return
	}

	core.Created(w, ToPromoResponse(p))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.Update(r.Context(), chi.URLParam(r, "promoID"), req)
	if err != nil {
		WriteError(w, err)
		return
	}

	core.OK(w, ToPromoResponse(p))
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), chi.URLParam(r, "promoID")); err != nil {
		WriteError(w, err)
		return
	}

	core.NoContent(w)
}

// WriteError renders promo rejections as 422 with the rejection's own code.
func WriteError(w http.ResponseWriter, err error) {
	var rejection *Rejection
	switch {
	case errors.As(err, &rejection):
		core.JSONError(w, core.BusinessRuleError(rejection.Code, rejection.Message))
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "promo code")
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("promo code"))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}

func atoiDefault(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

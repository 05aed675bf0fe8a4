// AngelaMos | 2026
// handler.go

package pricing

import (
	"encoding/json"
	"errors"
	"net/http"

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
	optionalAuth func(http.Handler) http.Handler,
) {
	r.With(optionalAuth).Get("/pricing-tiers", h.ListTiers)
}

// ListTiers serves the catalog for ?role=, falling back to the caller's role.
func (h *Handler) ListTiers(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role == "" {
		role = middleware.GetUserRole(r.Context())
	}

	tiers, err := h.service.ListForRole(r.Context(), role)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "unknown role")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, tiers)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/pricing-tiers", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.AdminList)
		r.Post("/", h.Create)
		r.Get("/{tierID}", h.Get)
		r.Put("/{tierID}", h.Update)
		r.Delete("/{tierID}", h.Deactivate)
	})
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.service.ListAll(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToTierResponseList(tiers))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tier, err := h.service.GetTier(r.Context(), chi.URLParam(r, "tierID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToTierResponse(tier))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	tier, err := h.service.CreateTier(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToTierResponse(tier))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	tier, err := h.service.UpdateTier(r.Context(), chi.URLParam(r, "tierID"), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToTierResponse(tier))
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeactivateTier(r.Context(), chi.URLParam(r, "tierID")); err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "pricing tier")
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("tier"))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}

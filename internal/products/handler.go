package products

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tradepost/tradepost/internal/auth"
	"github.com/tradepost/tradepost/internal/platform/httpx"
	"github.com/tradepost/tradepost/internal/shared"
)

// Handler wires HTTP endpoints for the product resource.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	mw        auth.Middleware
	validator *validator.Validate

	// lowCostThreshold is the fallback max_cost for /low-cost.
	lowCostThreshold float64
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw auth.Middleware, lowCostThreshold float64) *Handler {
	return &Handler{
		logger:           logger,
		service:          service,
		mw:               mw,
		validator:        shared.NewValidator(),
		lowCostThreshold: lowCostThreshold,
	}
}

// MountRoutes registers product routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/low-cost", h.lowCost)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireUser)
		r.Get("/mine", h.mine)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Patch("/{id}", h.partialUpdate)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, pagination, err := h.service.List(r.Context(), shared.UserIDFromContext(r.Context()), parseFilters(r))
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListResponse{Items: items, Pagination: pagination})
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	items, pagination, err := h.service.Mine(r.Context(), shared.UserIDFromContext(r.Context()), parseFilters(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListResponse{Items: items, Pagination: pagination})
}

func (h *Handler) lowCost(w http.ResponseWriter, r *http.Request) {
	maxCost := h.lowCostThreshold
	if raw := r.URL.Query().Get("max_cost"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			httpx.RespondError(w, shared.FieldError("max_cost", "must be a positive number"))
			return
		}
		maxCost = parsed
	}

	items, pagination, err := h.service.LowCost(r.Context(), shared.UserIDFromContext(r.Context()), maxCost, parseFilters(r))
	if err != nil {
		h.logger.Error("list low-cost products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ListResponse{Items: items, Pagination: pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), idParam(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detailOf(product))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := shared.ValidationErrorFromTags(h.validator.Struct(req)); err != nil {
		httpx.RespondError(w, err)
		return
	}

	product, err := h.service.Create(r.Context(), shared.UserIDFromContext(r.Context()), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, detailOf(product))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := shared.ValidationErrorFromTags(h.validator.Struct(req)); err != nil {
		httpx.RespondError(w, err)
		return
	}

	product, err := h.service.Update(r.Context(), shared.UserIDFromContext(r.Context()), idParam(r), UpdateRequest{
		Name:        &req.Name,
		Description: &req.Description,
		Price:       &req.Price,
		Cost:        &req.Cost,
		Tax:         &req.Tax,
		Stock:       &req.Stock,
		Status:      req.Status,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detailOf(product))
}

func (h *Handler) partialUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := shared.ValidationErrorFromTags(h.validator.Struct(req)); err != nil {
		httpx.RespondError(w, err)
		return
	}

	product, err := h.service.Update(r.Context(), shared.UserIDFromContext(r.Context()), idParam(r), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detailOf(product))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), shared.UserIDFromContext(r.Context()), idParam(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func idParam(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func parseFilters(r *http.Request) shared.ListFilters {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return shared.ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
	}
}

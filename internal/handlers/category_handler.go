package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/securelearn/backend/internal/auth"
	"github.com/securelearn/backend/internal/models"
)

// CategoryService is the interface that wraps category business logic.
type CategoryService interface {
	// GetCategories retrieves all course categories.
	GetCategories(ctx context.Context) ([]models.Category, error)
	// CreateCategory creates a new category on behalf of the actor.
	CreateCategory(ctx context.Context, actor auth.Identity, req *models.CreateCategoryRequest) (*models.Category, error)
}

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	BaseHandler
	service CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(svc CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all category handler routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", h.GetAll)
		r.With(authMW).Post("/", h.Create)
	})
}

// GetAll handles GET /api/v1/categories
// @Summary List categories
// @Description Get all course categories
// @Tags categories
// @Produce json
// @Success 200 {array} models.Category
// @Failure 500 {object} map[string]string
// @Router /api/v1/categories [get]
func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetCategories(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, categories)
}

// Create handles POST /api/v1/categories
// @Summary Create category
// @Description Create a new course category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body models.CreateCategoryRequest true "Category"
// @Success 201 {object} models.Category
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	var req models.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.service.CreateCategory(r.Context(), identity, &req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, category)
}

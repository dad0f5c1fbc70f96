package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/securelearn/backend/internal/auth"
	"github.com/securelearn/backend/internal/models"
)

// CourseService is the interface that wraps course catalog business logic.
type CourseService interface {
	// GetCourses retrieves the catalog with optional title search and paging.
	GetCourses(ctx context.Context, search string, page, count int) ([]models.Course, error)
	// GetCourse retrieves a single course's metadata.
	GetCourse(ctx context.Context, id int) (*models.Course, error)
	// CreateCourse creates a course owned by the actor.
	CreateCourse(ctx context.Context, actor auth.Identity, req *models.CreateCourseRequest) (*models.Course, error)
	// UpdateCourse applies a partial update to a course the actor owns.
	UpdateCourse(ctx context.Context, actor auth.Identity, id int, req *models.UpdateCourseRequest) (*models.Course, error)
	// DeleteCourse deletes a course the actor owns.
	DeleteCourse(ctx context.Context, actor auth.Identity, id int) error
	// Enroll grants the actor access to a course's content.
	Enroll(ctx context.Context, actor auth.Identity, courseID int) (*models.Enrollment, error)
}

// CourseProgressService computes per-course completion for the actor.
type CourseProgressService interface {
	ComputeCourseProgress(ctx context.Context, actor auth.Identity, courseID int) (*models.CourseProgress, error)
}

// CourseHandler handles HTTP requests for the course catalog
type CourseHandler struct {
	BaseHandler
	service         CourseService
	progressService CourseProgressService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(svc CourseService, progressSvc CourseProgressService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		service:         svc,
		progressService: progressSvc,
		BaseHandler:     BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all course handler routes
func (h *CourseHandler) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Route("/api/v1/courses", func(r chi.Router) {
		r.Get("/", h.GetAll)
		r.Get("/{id}", h.GetByID)
		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Post("/{id}/enroll", h.Enroll)
			r.Get("/{id}/progress", h.GetProgress)
		})
	})
}

// GetAll handles GET /api/v1/courses
// @Summary List courses
// @Description Get the course catalog with optional title search and paging
// @Tags courses
// @Produce json
// @Param search query string false "Title search term"
// @Param page query int false "Page number, default 1"
// @Param count query int false "Page size, default 20"
// @Success 200 {array} models.Course
// @Failure 500 {object} map[string]string
// @Router /api/v1/courses [get]
func (h *CourseHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))

	courses, err := h.service.GetCourses(r.Context(), search, page, count)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, courses)
}

// GetByID handles GET /api/v1/courses/{id}
// @Summary Get course
// @Description Get a single course's metadata
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} map[string]string
// @Router /api/v1/courses/{id} [get]
func (h *CourseHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	course, err := h.service.GetCourse(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, course)
}

// Create handles POST /api/v1/courses
// @Summary Create course
// @Description Create a new course owned by the authenticated teacher
// @Tags courses
// @Accept json
// @Produce json
// @Param request body models.CreateCourseRequest true "Course"
// @Success 201 {object} models.Course
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/courses [post]
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	var req models.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	course, err := h.service.CreateCourse(r.Context(), identity, &req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, course)
}

// Update handles PUT /api/v1/courses/{id}
// @Summary Update course
// @Description Apply a partial update to a course the actor owns
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body models.UpdateCourseRequest true "Fields to update"
// @Success 200 {object} models.Course
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/courses/{id} [put]
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	var req models.UpdateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	course, err := h.service.UpdateCourse(r.Context(), identity, id, &req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, course)
}

// Delete handles DELETE /api/v1/courses/{id}
// @Summary Delete course
// @Description Delete a course the actor owns together with its content
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/courses/{id} [delete]
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	if err := h.service.DeleteCourse(r.Context(), identity, id); err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Enroll handles POST /api/v1/courses/{id}/enroll
// @Summary Enroll in course
// @Description Enroll the authenticated student into a course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 201 {object} models.Enrollment
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/courses/{id}/enroll [post]
func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	enrollment, err := h.service.Enroll(r.Context(), identity, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, enrollment)
}

// GetProgress handles GET /api/v1/courses/{id}/progress
// @Summary Get course progress
// @Description Get the authenticated student's completion percentage for a course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.CourseProgress
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/courses/{id}/progress [get]
func (h *CourseHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	progress, err := h.progressService.ComputeCourseProgress(r.Context(), identity, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, progress)
}

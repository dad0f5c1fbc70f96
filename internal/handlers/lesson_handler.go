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

// LessonService is the interface that wraps lesson and step business logic.
type LessonService interface {
	// GetLessons retrieves the ordered lessons of a course the actor may read.
	GetLessons(ctx context.Context, actor auth.Identity, courseID int) ([]models.Lesson, error)
	// GetLessonDetail retrieves a lesson together with its ordered steps.
	GetLessonDetail(ctx context.Context, actor auth.Identity, lessonID int) (*models.LessonDetail, error)
	// CreateLesson creates a lesson on a course the actor owns.
	CreateLesson(ctx context.Context, actor auth.Identity, req *models.CreateLessonRequest) (*models.Lesson, error)
	// UpdateLesson applies a partial update to a lesson.
	UpdateLesson(ctx context.Context, actor auth.Identity, id int, req *models.UpdateLessonRequest) (*models.Lesson, error)
	// DeleteLesson deletes a lesson and its dependent content.
	DeleteLesson(ctx context.Context, actor auth.Identity, id int) error
	// GetStep retrieves a single step the actor may read.
	GetStep(ctx context.Context, actor auth.Identity, id int) (*models.Step, error)
	// CreateStep creates a step on a lesson of a course the actor owns.
	CreateStep(ctx context.Context, actor auth.Identity, req *models.CreateStepRequest) (*models.Step, error)
	// DeleteStep deletes a step.
	DeleteStep(ctx context.Context, actor auth.Identity, id int) error
}

// StepProgressService records step completions.
type StepProgressService interface {
	MarkStepComplete(ctx context.Context, actor auth.Identity, stepID, score int) (*models.StepProgress, error)
}

// LessonHandler handles HTTP requests for lessons and steps
type LessonHandler struct {
	BaseHandler
	service         LessonService
	progressService StepProgressService
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(svc LessonService, progressSvc StepProgressService, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{
		service:         svc,
		progressService: progressSvc,
		BaseHandler:     BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all lesson handler routes
func (h *LessonHandler) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Route("/api/v1/lessons", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", h.Create)
		r.Get("/course/{courseID}", h.GetByCourse)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	r.Route("/api/v1/steps", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", h.CreateStep)
		r.Get("/{id}", h.GetStep)
		r.Delete("/{id}", h.DeleteStep)
		r.Post("/{id}/complete", h.CompleteStep)
	})
}

// GetByCourse handles GET /api/v1/lessons/course/{courseID}
// @Summary List lessons
// @Description Get the ordered lessons of a course
// @Tags lessons
// @Produce json
// @Param courseID path int true "Course ID"
// @Success 200 {array} models.Lesson
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/lessons/course/{courseID} [get]
func (h *LessonHandler) GetByCourse(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	courseID, err := strconv.Atoi(chi.URLParam(r, "courseID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	lessons, err := h.service.GetLessons(r.Context(), identity, courseID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, lessons)
}

// GetByID handles GET /api/v1/lessons/{id}
// @Summary Get lesson
// @Description Get a lesson together with its ordered steps
// @Tags lessons
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} models.LessonDetail
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/lessons/{id} [get]
func (h *LessonHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid lesson id")
		return
	}

	detail, err := h.service.GetLessonDetail(r.Context(), identity, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, detail)
}

// Create handles POST /api/v1/lessons
// @Summary Create lesson
// @Description Create a lesson on a course the actor owns
// @Tags lessons
// @Accept json
// @Produce json
// @Param request body models.CreateLessonRequest true "Lesson"
// @Success 201 {object} models.Lesson
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/lessons [post]
func (h *LessonHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	var req models.CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lesson, err := h.service.CreateLesson(r.Context(), identity, &req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, lesson)
}

// Update handles PUT /api/v1/lessons/{id}
// @Summary Update lesson
// @Description Apply a partial update to a lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Param request body models.UpdateLessonRequest true "Fields to update"
// @Success 200 {object} models.Lesson
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/lessons/{id} [put]
func (h *LessonHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid lesson id")
		return
	}

	var req models.UpdateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lesson, err := h.service.UpdateLesson(r.Context(), identity, id, &req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, lesson)
}

// Delete handles DELETE /api/v1/lessons/{id}
// @Summary Delete lesson
// @Description Delete a lesson and its dependent steps, quizzes and progress
// @Tags lessons
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/lessons/{id} [delete]
func (h *LessonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid lesson id")
		return
	}

	if err := h.service.DeleteLesson(r.Context(), identity, id); err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetStep handles GET /api/v1/steps/{id}
// @Summary Get step
// @Description Get a single lesson step
// @Tags steps
// @Produce json
// @Param id path int true "Step ID"
// @Success 200 {object} models.Step
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/steps/{id} [get]
func (h *LessonHandler) GetStep(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid step id")
		return
	}

	step, err := h.service.GetStep(r.Context(), identity, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, step)
}

// CreateStep handles POST /api/v1/steps
// @Summary Create step
// @Description Create a step on a lesson of a course the actor owns
// @Tags steps
// @Accept json
// @Produce json
// @Param request body models.CreateStepRequest true "Step"
// @Success 201 {object} models.Step
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/steps [post]
func (h *LessonHandler) CreateStep(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	var req models.CreateStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	step, err := h.service.CreateStep(r.Context(), identity, &req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, step)
}

// DeleteStep handles DELETE /api/v1/steps/{id}
// @Summary Delete step
// @Description Delete a lesson step
// @Tags steps
// @Produce json
// @Param id path int true "Step ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/steps/{id} [delete]
func (h *LessonHandler) DeleteStep(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid step id")
		return
	}

	if err := h.service.DeleteStep(r.Context(), identity, id); err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CompleteStep handles POST /api/v1/steps/{id}/complete
// @Summary Complete step
// @Description Mark a step completed for the authenticated student. Quiz steps require a passing result first.
// @Tags steps
// @Accept json
// @Produce json
// @Param id path int true "Step ID"
// @Param request body models.CompleteStepRequest false "Optional score"
// @Success 200 {object} models.StepProgress
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/steps/{id}/complete [post]
func (h *LessonHandler) CompleteStep(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid step id")
		return
	}

	// Body is optional; a missing or empty body means no score.
	var req models.CompleteStepRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	progress, err := h.progressService.MarkStepComplete(r.Context(), identity, id, req.Score)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, progress)
}

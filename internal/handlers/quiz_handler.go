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

// QuizReadService is the interface that wraps quiz read and delete logic.
type QuizReadService interface {
	// GetQuizzesForLesson retrieves the student-facing quizzes of a lesson,
	// with correctness flags scrubbed.
	GetQuizzesForLesson(ctx context.Context, actor auth.Identity, lessonID int) ([]models.QuizView, error)
	// GetMyResults retrieves the actor's attempt history, newest first.
	GetMyResults(ctx context.Context, actor auth.Identity) ([]models.ResultListItem, error)
	// DeleteQuiz deletes a quiz on a course the actor owns.
	DeleteQuiz(ctx context.Context, actor auth.Identity, id int) error
}

// QuizScoringService grades submissions.
type QuizScoringService interface {
	Submit(ctx context.Context, studentID, quizID int, answers []models.SubmittedAnswer) (*models.SubmissionResult, error)
}

// QuizHandler handles HTTP requests for quizzes and results
type QuizHandler struct {
	BaseHandler
	service        QuizReadService
	scoringService QuizScoringService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(svc QuizReadService, scoringSvc QuizScoringService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		service:        svc,
		scoringService: scoringSvc,
		BaseHandler:    BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all quiz handler routes
func (h *QuizHandler) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Route("/api/v1/quizzes", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/lesson/{lessonID}", h.GetByLesson)
		r.Get("/my-results", h.GetMyResults)
		r.Post("/{id}/submit", h.Submit)
		r.Delete("/{id}", h.Delete)
	})
}

// GetByLesson handles GET /api/v1/quizzes/lesson/{lessonID}
// @Summary Get lesson quizzes
// @Description Get the quizzes of a lesson without correctness flags
// @Tags quizzes
// @Produce json
// @Param lessonID path int true "Lesson ID"
// @Success 200 {array} models.QuizView
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/quizzes/lesson/{lessonID} [get]
func (h *QuizHandler) GetByLesson(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	lessonID, err := strconv.Atoi(chi.URLParam(r, "lessonID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid lesson id")
		return
	}

	views, err := h.service.GetQuizzesForLesson(r.Context(), identity, lessonID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, views)
}

// Submit handles POST /api/v1/quizzes/{id}/submit
// @Summary Submit quiz answers
// @Description Grade a quiz submission and record the attempt
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param request body models.QuizSubmissionRequest true "Answers"
// @Success 200 {object} models.SubmissionResult
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/quizzes/{id}/submit [post]
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	quizID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid quiz id")
		return
	}

	var req models.QuizSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.scoringService.Submit(r.Context(), identity.UserID, quizID, req.Answers)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// GetMyResults handles GET /api/v1/quizzes/my-results
// @Summary Get my results
// @Description Get the authenticated student's quiz attempt history
// @Tags quizzes
// @Produce json
// @Success 200 {array} models.ResultListItem
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/quizzes/my-results [get]
func (h *QuizHandler) GetMyResults(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	results, err := h.service.GetMyResults(r.Context(), identity)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, results)
}

// Delete handles DELETE /api/v1/quizzes/{id}
// @Summary Delete quiz
// @Description Delete a quiz on a course the actor owns
// @Tags quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/quizzes/{id} [delete]
func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid quiz id")
		return
	}

	if err := h.service.DeleteQuiz(r.Context(), identity, id); err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

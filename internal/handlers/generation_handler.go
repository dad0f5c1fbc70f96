package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/securelearn/backend/internal/auth"
	"github.com/securelearn/backend/internal/models"
)

// maxUploadSize bounds the source document accepted for course generation
const maxUploadSize = 10 << 20 // 10 MB

// GenerationService is the interface that wraps AI-assisted content creation.
type GenerationService interface {
	// GeneratePreview produces draft questions without persisting them.
	GeneratePreview(ctx context.Context, actor auth.Identity, req models.GeneratePreviewRequest) ([]models.NormalizedQuestion, error)
	// SaveGenerated persists reviewed questions into a new or existing quiz
	// and returns the quiz id.
	SaveGenerated(ctx context.Context, actor auth.Identity, req models.SaveGeneratedRequest) (int, error)
	// GenerateCourseFromFile extracts text from an uploaded document and
	// returns a course outline draft.
	GenerateCourseFromFile(ctx context.Context, actor auth.Identity, file io.Reader, filename string) (*models.CourseDraft, error)
}

// GenerationHandler handles HTTP requests for AI-assisted content creation
type GenerationHandler struct {
	BaseHandler
	service GenerationService
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(svc GenerationService, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all generation handler routes
func (h *GenerationHandler) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Route("/api/v1/ai", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/generate-preview", h.GeneratePreview)
		r.Post("/save-generated", h.SaveGenerated)
		r.Post("/generate-course-from-file", h.GenerateCourseFromFile)
	})
}

// GeneratePreview handles POST /api/v1/ai/generate-preview
// @Summary Preview generated questions
// @Description Generate draft quiz questions from lesson text or custom text without saving them
// @Tags ai
// @Accept json
// @Produce json
// @Param request body models.GeneratePreviewRequest true "Source and options"
// @Success 200 {array} models.NormalizedQuestion
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/ai/generate-preview [post]
func (h *GenerationHandler) GeneratePreview(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	var req models.GeneratePreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	questions, err := h.service.GeneratePreview(r.Context(), identity, req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// SaveGenerated handles POST /api/v1/ai/save-generated
// @Summary Save generated questions
// @Description Persist reviewed questions into a new or existing quiz
// @Tags ai
// @Accept json
// @Produce json
// @Param request body models.SaveGeneratedRequest true "Questions to save"
// @Success 201 {object} map[string]int
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/ai/save-generated [post]
func (h *GenerationHandler) SaveGenerated(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	var req models.SaveGeneratedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quizID, err := h.service.SaveGenerated(r.Context(), identity, req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]int{"quiz_id": quizID})
}

// GenerateCourseFromFile handles POST /api/v1/ai/generate-course-from-file
// @Summary Generate course draft from document
// @Description Extract text from an uploaded PDF or DOCX and generate a course outline draft
// @Tags ai
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Source document (pdf or docx)"
// @Success 200 {object} models.CourseDraft
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/ai/generate-course-from-file [post]
func (h *GenerationHandler) GenerateCourseFromFile(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.GetIdentity(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	draft, err := h.service.GenerateCourseFromFile(r.Context(), identity, file, header.Filename)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, draft)
}

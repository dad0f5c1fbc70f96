package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/auth"
	"github.com/securelearn/backend/internal/models"
	"github.com/securelearn/backend/internal/storage"
)

const (
	defaultQuestionCount = 5
	maxQuestionCount     = 20
	defaultDifficulty    = "medium"
)

// supportedUploadExtensions lists the document types the extraction service
// can handle. Anything else is rejected before upload.
var supportedUploadExtensions = map[string]bool{
	"pdf":  true,
	"docx": true,
}

// QuestionGenerator produces draft content from source text
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, text string, count int, difficulty string) ([]byte, error)
	GenerateCourseDraft(ctx context.Context, text string) (*models.CourseDraft, error)
}

// TextExtractor converts an uploaded document into plain text
type TextExtractor interface {
	Extract(ctx context.Context, file io.Reader, extension string) (string, error)
}

// UploadStorage persists uploaded source documents
type UploadStorage interface {
	Create(id, kind string) (io.WriteCloser, error)
	Open(id, kind string) (io.ReadCloser, error)
}

// IngestionLessonRepository defines lesson persistence needed for ingestion
type IngestionLessonRepository interface {
	GetByID(ctx context.Context, id int) (*models.Lesson, error)
}

// IngestionStepRepository defines step persistence needed for ingestion
type IngestionStepRepository interface {
	GetByLessonID(ctx context.Context, lessonID int) ([]models.Step, error)
}

// IngestionCourseRepository defines course persistence needed for ingestion
type IngestionCourseRepository interface {
	GetOwnerID(ctx context.Context, courseID int) (int, error)
}

// IngestionQuizRepository defines quiz persistence needed for ingestion
type IngestionQuizRepository interface {
	GetByID(ctx context.Context, id int) (*models.Quiz, error)
	CreateGraph(ctx context.Context, quiz *models.Quiz, questions []models.NormalizedQuestion) error
	AppendQuestions(ctx context.Context, quizID int, questions []models.NormalizedQuestion) error
}

type ingestionService struct {
	lessonRepo    IngestionLessonRepository
	stepRepo      IngestionStepRepository
	courseRepo    IngestionCourseRepository
	quizRepo      IngestionQuizRepository
	generator     QuestionGenerator
	extractor     TextExtractor
	uploads       UploadStorage
	minTextLength int
	logger        *zap.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	lessonRepo IngestionLessonRepository,
	stepRepo IngestionStepRepository,
	courseRepo IngestionCourseRepository,
	quizRepo IngestionQuizRepository,
	generator QuestionGenerator,
	extractor TextExtractor,
	uploads UploadStorage,
	minTextLength int,
	logger *zap.Logger,
) *ingestionService {
	return &ingestionService{
		lessonRepo:    lessonRepo,
		stepRepo:      stepRepo,
		courseRepo:    courseRepo,
		quizRepo:      quizRepo,
		generator:     generator,
		extractor:     extractor,
		uploads:       uploads,
		minTextLength: minTextLength,
		logger:        logger,
	}
}

// GeneratePreview produces draft questions without persisting anything. The
// source text comes either from the lesson's text steps or from custom text,
// never both.
func (s *ingestionService) GeneratePreview(ctx context.Context, actor auth.Identity, req models.GeneratePreviewRequest) ([]models.NormalizedQuestion, error) {
	if req.LessonID != 0 && req.CustomText != "" {
		return nil, fmt.Errorf("%w: lesson_id and custom_text are mutually exclusive", apperrors.ErrValidation)
	}

	var text string
	switch {
	case req.LessonID != 0:
		lesson, err := s.lessonRepo.GetByID(ctx, req.LessonID)
		if err != nil {
			return nil, err
		}
		if err := s.requireCourseWrite(ctx, actor, lesson.CourseID, ResourceQuiz); err != nil {
			return nil, err
		}
		text, err = s.lessonText(ctx, lesson.ID)
		if err != nil {
			return nil, err
		}
	case strings.TrimSpace(req.CustomText) != "":
		text = req.CustomText
	default:
		return nil, fmt.Errorf("%w: lesson_id or custom_text is required", apperrors.ErrValidation)
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no source text available", apperrors.ErrValidation)
	}

	count := req.Count
	if count <= 0 {
		count = defaultQuestionCount
	}
	if count > maxQuestionCount {
		count = maxQuestionCount
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = defaultDifficulty
	}

	raw, err := s.generator.GenerateQuestions(ctx, text, count, difficulty)
	if err != nil {
		return nil, err
	}

	questions := NormalizeGenerated(raw)
	s.logger.Info("generated question preview",
		zap.Int("requested", count),
		zap.Int("usable", len(questions)),
	)

	return questions, nil
}

// SaveGenerated persists reviewed questions into a quiz. With a quiz id the
// questions are appended to it; without one a new quiz is created. Existing
// questions are never modified or removed.
func (s *ingestionService) SaveGenerated(ctx context.Context, actor auth.Identity, req models.SaveGeneratedRequest) (int, error) {
	if req.LessonID == 0 {
		return 0, fmt.Errorf("%w: lesson_id is required", apperrors.ErrValidation)
	}

	lesson, err := s.lessonRepo.GetByID(ctx, req.LessonID)
	if err != nil {
		return 0, err
	}

	if err := s.requireCourseWrite(ctx, actor, lesson.CourseID, ResourceQuiz); err != nil {
		return 0, err
	}

	questions := sanitizeQuestions(req.Questions)
	if len(questions) == 0 {
		return 0, fmt.Errorf("%w: no usable questions", apperrors.ErrValidation)
	}

	if req.QuizID != nil {
		quiz, err := s.quizRepo.GetByID(ctx, *req.QuizID)
		if err != nil {
			return 0, err
		}
		if quiz.LessonID != lesson.ID {
			return 0, fmt.Errorf("%w: quiz does not belong to lesson", apperrors.ErrValidation)
		}
		if err := s.quizRepo.AppendQuestions(ctx, quiz.ID, questions); err != nil {
			return 0, err
		}
		s.logger.Info("appended generated questions",
			zap.Int("quiz_id", quiz.ID),
			zap.Int("count", len(questions)),
		)
		return quiz.ID, nil
	}

	title := strings.TrimSpace(req.QuizTitle)
	if title == "" {
		title = "Test: " + lesson.Title
	}

	quiz := &models.Quiz{LessonID: lesson.ID, Title: title}
	if err := s.quizRepo.CreateGraph(ctx, quiz, questions); err != nil {
		return 0, err
	}

	s.logger.Info("created quiz from generated questions",
		zap.Int("quiz_id", quiz.ID),
		zap.Int("count", len(questions)),
	)

	return quiz.ID, nil
}

// GenerateCourseFromFile extracts text from an uploaded document and returns
// a generated course outline. The upload is kept on disk; the draft itself is
// never persisted.
func (s *ingestionService) GenerateCourseFromFile(ctx context.Context, actor auth.Identity, file io.Reader, filename string) (*models.CourseDraft, error) {
	if actor.UserID == 0 {
		return nil, fmt.Errorf("%w", apperrors.ErrUnauthorized)
	}

	ext := fileExtension(filename)
	if !supportedUploadExtensions[ext] {
		return nil, fmt.Errorf("%w: unsupported file type %q", apperrors.ErrValidation, ext)
	}

	id := storage.GenerateFileName(ext)
	dst, err := s.uploads.Create(id, "documents")
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	stored, err := s.uploads.Open(id, "documents")
	if err != nil {
		return nil, fmt.Errorf("failed to read stored upload: %w", err)
	}
	defer stored.Close()

	text, err := s.extractor.Extract(ctx, stored, ext)
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(text)) < s.minTextLength {
		return nil, fmt.Errorf("%w: document contains no usable text", apperrors.ErrExtraction)
	}

	draft, err := s.generator.GenerateCourseDraft(ctx, text)
	if err != nil {
		return nil, err
	}

	s.logger.Info("generated course draft from upload",
		zap.String("file", id),
		zap.Int("lessons", len(draft.Lessons)),
	)

	return draft, nil
}

// requireCourseWrite resolves the course owner and runs the access gate for a
// write on the given resource kind
func (s *ingestionService) requireCourseWrite(ctx context.Context, actor auth.Identity, courseID int, kind ResourceKind) error {
	ownerID, err := s.courseRepo.GetOwnerID(ctx, courseID)
	if err != nil {
		return err
	}

	res := GateResource{Kind: kind, CourseOwnerID: ownerID}
	if decision := Decide(actor, res, ActionWrite); !decision.Allowed {
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, decision.Reason)
	}

	return nil
}

// lessonText concatenates the content of the lesson's text steps
func (s *ingestionService) lessonText(ctx context.Context, lessonID int) (string, error) {
	steps, err := s.stepRepo.GetByLessonID(ctx, lessonID)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, step := range steps {
		if step.StepType == models.StepTypeText && strings.TrimSpace(step.Content) != "" {
			parts = append(parts, step.Content)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// sanitizeQuestions drops unusable reviewed questions and repairs correctness
// indicators the same way normalization does: an indicator matching no option
// falls back to the first one.
func sanitizeQuestions(questions []models.NormalizedQuestion) []models.NormalizedQuestion {
	var out []models.NormalizedQuestion
	for _, q := range questions {
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			continue
		}

		var options []string
		for _, option := range q.Options {
			option = strings.TrimSpace(option)
			if option != "" {
				options = append(options, option)
			}
		}
		if len(options) == 0 {
			continue
		}
		q.Options = options

		q.CorrectOption = strings.TrimSpace(q.CorrectOption)
		if !containsOption(options, q.CorrectOption) {
			q.CorrectOption = options[0]
		}

		out = append(out, q)
	}

	return out
}

func containsOption(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}

// fileExtension returns the lowercase extension without the dot
func fileExtension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/auth"
	"github.com/securelearn/backend/internal/models"
)

// ContentLessonRepository defines lesson persistence
type ContentLessonRepository interface {
	GetByID(ctx context.Context, id int) (*models.Lesson, error)
	GetByCourseID(ctx context.Context, courseID int) ([]models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, id int, req *models.UpdateLessonRequest) error
	Delete(ctx context.Context, id int) error
}

// ContentStepRepository defines step persistence
type ContentStepRepository interface {
	GetByID(ctx context.Context, id int) (*models.Step, error)
	GetByLessonID(ctx context.Context, lessonID int) ([]models.Step, error)
	Create(ctx context.Context, step *models.Step) error
	Delete(ctx context.Context, id int) error
}

// ContentCourseRepository defines course persistence needed for gating
type ContentCourseRepository interface {
	GetOwnerID(ctx context.Context, courseID int) (int, error)
}

// ContentEnrollmentRepository defines enrollment persistence needed for gating
type ContentEnrollmentRepository interface {
	Exists(ctx context.Context, studentID, courseID int) (bool, error)
}

type contentService struct {
	lessonRepo     ContentLessonRepository
	stepRepo       ContentStepRepository
	courseRepo     ContentCourseRepository
	enrollmentRepo ContentEnrollmentRepository
	logger         *zap.Logger
}

// NewContentService creates a new lesson and step content service
func NewContentService(
	lessonRepo ContentLessonRepository,
	stepRepo ContentStepRepository,
	courseRepo ContentCourseRepository,
	enrollmentRepo ContentEnrollmentRepository,
	logger *zap.Logger,
) *contentService {
	return &contentService{
		lessonRepo:     lessonRepo,
		stepRepo:       stepRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		logger:         logger,
	}
}

// GetLessons retrieves the ordered lessons of a course. Requires enrollment
// or ownership.
func (s *contentService) GetLessons(ctx context.Context, actor auth.Identity, courseID int) ([]models.Lesson, error) {
	if err := s.gate(ctx, actor, courseID, ResourceLesson, ActionReadContent); err != nil {
		return nil, err
	}

	return s.lessonRepo.GetByCourseID(ctx, courseID)
}

// GetLessonDetail retrieves a lesson together with its ordered steps.
// Requires enrollment or ownership.
func (s *contentService) GetLessonDetail(ctx context.Context, actor auth.Identity, lessonID int) (*models.LessonDetail, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	if err := s.gate(ctx, actor, lesson.CourseID, ResourceLesson, ActionReadContent); err != nil {
		return nil, err
	}

	steps, err := s.stepRepo.GetByLessonID(ctx, lesson.ID)
	if err != nil {
		return nil, err
	}

	return &models.LessonDetail{Lesson: *lesson, Steps: steps}, nil
}

// CreateLesson creates a lesson on a course the actor owns
func (s *contentService) CreateLesson(ctx context.Context, actor auth.Identity, req *models.CreateLessonRequest) (*models.Lesson, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if req.CourseID == 0 {
		return nil, fmt.Errorf("%w: courseId is required", apperrors.ErrValidation)
	}

	if err := s.gate(ctx, actor, req.CourseID, ResourceLesson, ActionWrite); err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		CourseID: req.CourseID,
		Title:    req.Title,
		Order:    req.Order,
	}
	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, err
	}

	s.logger.Info("lesson created",
		zap.Int("lesson_id", lesson.ID),
		zap.Int("course_id", lesson.CourseID),
	)

	return lesson, nil
}

// UpdateLesson applies a partial update to a lesson on a course the actor owns
func (s *contentService) UpdateLesson(ctx context.Context, actor auth.Identity, id int, req *models.UpdateLessonRequest) (*models.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.gate(ctx, actor, lesson.CourseID, ResourceLesson, ActionWrite); err != nil {
		return nil, err
	}

	if err := s.lessonRepo.Update(ctx, id, req); err != nil {
		return nil, err
	}

	return s.lessonRepo.GetByID(ctx, id)
}

// DeleteLesson deletes a lesson on a course the actor owns. Steps, quizzes
// and progress rows go with it via the schema's cascades.
func (s *contentService) DeleteLesson(ctx context.Context, actor auth.Identity, id int) error {
	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.gate(ctx, actor, lesson.CourseID, ResourceLesson, ActionWrite); err != nil {
		return err
	}

	return s.lessonRepo.Delete(ctx, id)
}

// GetStep retrieves a single step. Requires enrollment or ownership.
func (s *contentService) GetStep(ctx context.Context, actor auth.Identity, id int) (*models.Step, error) {
	step, err := s.stepRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lesson, err := s.lessonRepo.GetByID(ctx, step.LessonID)
	if err != nil {
		return nil, err
	}

	if err := s.gate(ctx, actor, lesson.CourseID, ResourceStep, ActionReadContent); err != nil {
		return nil, err
	}

	return step, nil
}

// CreateStep creates a step on a lesson of a course the actor owns
func (s *contentService) CreateStep(ctx context.Context, actor auth.Identity, req *models.CreateStepRequest) (*models.Step, error) {
	if req.LessonID == 0 {
		return nil, fmt.Errorf("%w: lessonId is required", apperrors.ErrValidation)
	}
	if !models.ValidStepType(req.StepType) {
		return nil, fmt.Errorf("%w: unknown step type %q", apperrors.ErrValidation, req.StepType)
	}

	lesson, err := s.lessonRepo.GetByID(ctx, req.LessonID)
	if err != nil {
		return nil, err
	}

	if err := s.gate(ctx, actor, lesson.CourseID, ResourceStep, ActionWrite); err != nil {
		return nil, err
	}

	step := &models.Step{
		LessonID:     req.LessonID,
		Title:        req.Title,
		StepType:     req.StepType,
		Content:      req.Content,
		FileURL:      req.FileURL,
		ScenarioData: req.ScenarioData,
		Order:        req.Order,
	}
	if err := s.stepRepo.Create(ctx, step); err != nil {
		return nil, err
	}

	s.logger.Info("step created",
		zap.Int("step_id", step.ID),
		zap.Int("lesson_id", step.LessonID),
		zap.String("step_type", string(step.StepType)),
	)

	return step, nil
}

// DeleteStep deletes a step on a lesson of a course the actor owns
func (s *contentService) DeleteStep(ctx context.Context, actor auth.Identity, id int) error {
	step, err := s.stepRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	lesson, err := s.lessonRepo.GetByID(ctx, step.LessonID)
	if err != nil {
		return err
	}

	if err := s.gate(ctx, actor, lesson.CourseID, ResourceStep, ActionWrite); err != nil {
		return err
	}

	return s.stepRepo.Delete(ctx, id)
}

// gate resolves ownership and enrollment, then runs the access gate
func (s *contentService) gate(ctx context.Context, actor auth.Identity, courseID int, kind ResourceKind, action Action) error {
	ownerID, err := s.courseRepo.GetOwnerID(ctx, courseID)
	if err != nil {
		return err
	}

	enrolled := false
	if actor.UserID != 0 && action == ActionReadContent {
		enrolled, err = s.enrollmentRepo.Exists(ctx, actor.UserID, courseID)
		if err != nil {
			return err
		}
	}

	res := GateResource{Kind: kind, CourseOwnerID: ownerID, Enrolled: enrolled}
	if decision := Decide(actor, res, action); !decision.Allowed {
		if actor.UserID == 0 {
			return fmt.Errorf("%w", apperrors.ErrUnauthorized)
		}
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, decision.Reason)
	}

	return nil
}

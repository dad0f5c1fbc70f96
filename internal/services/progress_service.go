package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/auth"
	"github.com/securelearn/backend/internal/models"
)

// ProgressStepRepository defines step persistence needed for progress tracking
type ProgressStepRepository interface {
	GetByID(ctx context.Context, id int) (*models.Step, error)
	CountByCourseID(ctx context.Context, courseID int) (int, error)
}

// ProgressLessonRepository defines lesson persistence needed for progress
// tracking
type ProgressLessonRepository interface {
	GetByID(ctx context.Context, id int) (*models.Lesson, error)
}

// ProgressCourseRepository defines course persistence needed for progress
// tracking
type ProgressCourseRepository interface {
	GetOwnerID(ctx context.Context, courseID int) (int, error)
}

// ProgressEnrollmentRepository defines enrollment persistence needed for
// progress tracking
type ProgressEnrollmentRepository interface {
	Exists(ctx context.Context, studentID, courseID int) (bool, error)
}

// ProgressQuizRepository defines quiz persistence needed for progress tracking
type ProgressQuizRepository interface {
	GetByLessonID(ctx context.Context, lessonID int) ([]models.Quiz, error)
}

// ProgressResultRepository defines result persistence needed for progress
// tracking
type ProgressResultRepository interface {
	HasPassingResultForLesson(ctx context.Context, studentID, lessonID, threshold int) (bool, error)
}

// ProgressRepository defines step progress persistence
type ProgressRepository interface {
	Upsert(ctx context.Context, progress *models.StepProgress) error
	CountCompletedByCourse(ctx context.Context, studentID, courseID int) (int, error)
}

type progressService struct {
	progressRepo   ProgressRepository
	stepRepo       ProgressStepRepository
	lessonRepo     ProgressLessonRepository
	courseRepo     ProgressCourseRepository
	enrollmentRepo ProgressEnrollmentRepository
	quizRepo       ProgressQuizRepository
	resultRepo     ProgressResultRepository
	logger         *zap.Logger
}

// NewProgressService creates a new progress service
func NewProgressService(
	progressRepo ProgressRepository,
	stepRepo ProgressStepRepository,
	lessonRepo ProgressLessonRepository,
	courseRepo ProgressCourseRepository,
	enrollmentRepo ProgressEnrollmentRepository,
	quizRepo ProgressQuizRepository,
	resultRepo ProgressResultRepository,
	logger *zap.Logger,
) *progressService {
	return &progressService{
		progressRepo:   progressRepo,
		stepRepo:       stepRepo,
		lessonRepo:     lessonRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		quizRepo:       quizRepo,
		resultRepo:     resultRepo,
		logger:         logger,
	}
}

// MarkStepComplete records that the actor completed a step. Completion is
// idempotent: repeating it updates the existing row rather than duplicating
// it. For quiz steps whose lesson carries at least one quiz, the actor must
// first hold a passing result on that lesson.
func (s *progressService) MarkStepComplete(ctx context.Context, actor auth.Identity, stepID, score int) (*models.StepProgress, error) {
	step, err := s.stepRepo.GetByID(ctx, stepID)
	if err != nil {
		return nil, err
	}

	lesson, err := s.lessonRepo.GetByID(ctx, step.LessonID)
	if err != nil {
		return nil, err
	}

	ownerID, err := s.courseRepo.GetOwnerID(ctx, lesson.CourseID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.enrollmentRepo.Exists(ctx, actor.UserID, lesson.CourseID)
	if err != nil {
		return nil, err
	}

	res := GateResource{Kind: ResourceStep, CourseOwnerID: ownerID, Enrolled: enrolled}
	if decision := Decide(actor, res, ActionReadContent); !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, decision.Reason)
	}

	if step.StepType == models.StepTypeQuiz && actor.UserID != ownerID && !actor.IsAdmin() {
		quizzes, err := s.quizRepo.GetByLessonID(ctx, step.LessonID)
		if err != nil {
			return nil, err
		}
		if len(quizzes) > 0 {
			passed, err := s.resultRepo.HasPassingResultForLesson(ctx, actor.UserID, step.LessonID, PassThreshold)
			if err != nil {
				return nil, err
			}
			if !passed {
				return nil, fmt.Errorf("%w: quiz not passed", apperrors.ErrForbidden)
			}
		}
	}

	progress := &models.StepProgress{
		StudentID:   actor.UserID,
		StepID:      step.ID,
		IsCompleted: true,
		ScoreEarned: score,
	}
	if err := s.progressRepo.Upsert(ctx, progress); err != nil {
		return nil, err
	}

	s.logger.Info("step completed",
		zap.Int("student_id", actor.UserID),
		zap.Int("step_id", step.ID),
		zap.Int("score", score),
	)

	return progress, nil
}

// ComputeCourseProgress derives the actor's completion percentage for a
// course. Progress is never stored at the course level; it is recomputed from
// step completions on each read. A course with zero steps reports zero.
func (s *progressService) ComputeCourseProgress(ctx context.Context, actor auth.Identity, courseID int) (*models.CourseProgress, error) {
	// Resolve the course first so a dangling id reports not found rather
	// than an empty zero-progress shell.
	if _, err := s.courseRepo.GetOwnerID(ctx, courseID); err != nil {
		return nil, err
	}

	progress := &models.CourseProgress{CourseID: courseID}
	if actor.UserID == 0 {
		return progress, nil
	}

	total, err := s.stepRepo.CountByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	progress.TotalSteps = total
	if total == 0 {
		return progress, nil
	}

	completed, err := s.progressRepo.CountCompletedByCourse(ctx, actor.UserID, courseID)
	if err != nil {
		return nil, err
	}

	progress.CompletedSteps = completed
	progress.Percentage = completed * 100 / total
	return progress, nil
}

package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/auth"
	"github.com/securelearn/backend/internal/models"
)

// QuizRepository defines quiz persistence for the read and delete paths
type QuizRepository interface {
	GetByID(ctx context.Context, id int) (*models.Quiz, error)
	GetByLessonID(ctx context.Context, lessonID int) ([]models.Quiz, error)
	GetView(ctx context.Context, quizID int) (*models.QuizView, error)
	Delete(ctx context.Context, id int) error
}

// QuizLessonRepository defines lesson persistence needed for gating
type QuizLessonRepository interface {
	GetByID(ctx context.Context, id int) (*models.Lesson, error)
}

// QuizCourseRepository defines course persistence needed for gating
type QuizCourseRepository interface {
	GetOwnerID(ctx context.Context, courseID int) (int, error)
}

// QuizEnrollmentRepository defines enrollment persistence needed for gating
type QuizEnrollmentRepository interface {
	Exists(ctx context.Context, studentID, courseID int) (bool, error)
}

// QuizResultRepository defines result persistence for the history view
type QuizResultRepository interface {
	GetByStudentID(ctx context.Context, studentID int) ([]models.ResultListItem, error)
}

type quizService struct {
	quizRepo       QuizRepository
	lessonRepo     QuizLessonRepository
	courseRepo     QuizCourseRepository
	enrollmentRepo QuizEnrollmentRepository
	resultRepo     QuizResultRepository
	logger         *zap.Logger
}

// NewQuizService creates a new quiz service
func NewQuizService(
	quizRepo QuizRepository,
	lessonRepo QuizLessonRepository,
	courseRepo QuizCourseRepository,
	enrollmentRepo QuizEnrollmentRepository,
	resultRepo QuizResultRepository,
	logger *zap.Logger,
) *quizService {
	return &quizService{
		quizRepo:       quizRepo,
		lessonRepo:     lessonRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		resultRepo:     resultRepo,
		logger:         logger,
	}
}

// GetQuizzesForLesson retrieves the student-facing quizzes of a lesson.
// Correctness flags never leave the service layer on this path.
func (s *quizService) GetQuizzesForLesson(ctx context.Context, actor auth.Identity, lessonID int) ([]models.QuizView, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	if err := s.gate(ctx, actor, lesson.CourseID, ActionReadContent); err != nil {
		return nil, err
	}

	quizzes, err := s.quizRepo.GetByLessonID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	views := make([]models.QuizView, 0, len(quizzes))
	for _, quiz := range quizzes {
		view, err := s.quizRepo.GetView(ctx, quiz.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	return views, nil
}

// GetMyResults retrieves the actor's attempt history, newest first
func (s *quizService) GetMyResults(ctx context.Context, actor auth.Identity) ([]models.ResultListItem, error) {
	if actor.UserID == 0 {
		return nil, fmt.Errorf("%w", apperrors.ErrUnauthorized)
	}

	return s.resultRepo.GetByStudentID(ctx, actor.UserID)
}

// DeleteQuiz deletes a quiz on a course the actor owns
func (s *quizService) DeleteQuiz(ctx context.Context, actor auth.Identity, id int) error {
	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	lesson, err := s.lessonRepo.GetByID(ctx, quiz.LessonID)
	if err != nil {
		return err
	}

	if err := s.gate(ctx, actor, lesson.CourseID, ActionWrite); err != nil {
		return err
	}

	if err := s.quizRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("quiz deleted",
		zap.Int("quiz_id", id),
		zap.Int("actor_id", actor.UserID),
	)

	return nil
}

// gate resolves ownership and enrollment, then runs the access gate
func (s *quizService) gate(ctx context.Context, actor auth.Identity, courseID int, action Action) error {
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

	res := GateResource{Kind: ResourceQuiz, CourseOwnerID: ownerID, Enrolled: enrolled}
	if decision := Decide(actor, res, action); !decision.Allowed {
		if actor.UserID == 0 {
			return fmt.Errorf("%w", apperrors.ErrUnauthorized)
		}
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, decision.Reason)
	}

	return nil
}

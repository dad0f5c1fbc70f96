package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/models"
)

// PassThreshold is the fixed score (percent) at or above which an attempt
// counts as passed.
const PassThreshold = 70

// maxSubmissionAnswers bounds a single submission
const maxSubmissionAnswers = 50

const (
	StatusPass = "Pass"
	StatusFail = "Fail"
)

// ScoringQuizRepository defines quiz persistence needed for grading
type ScoringQuizRepository interface {
	GetByID(ctx context.Context, id int) (*models.Quiz, error)
	CountQuestions(ctx context.Context, quizID int) (int, error)
	IsCorrectChoice(ctx context.Context, choiceID, questionID int) (bool, error)
}

// ScoringResultRepository defines result persistence needed for grading
type ScoringResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
}

type scoringService struct {
	quizRepo   ScoringQuizRepository
	resultRepo ScoringResultRepository
	logger     *zap.Logger
}

// NewScoringService creates a new scoring service
func NewScoringService(quizRepo ScoringQuizRepository, resultRepo ScoringResultRepository, logger *zap.Logger) *scoringService {
	return &scoringService{
		quizRepo:   quizRepo,
		resultRepo: resultRepo,
		logger:     logger,
	}
}

// Submit grades a quiz submission against stored correctness and records the
// attempt. The score is the percentage of the quiz's questions answered
// correctly: unanswered questions count against the score, and answers
// referencing unknown questions or choices count as wrong, never as errors.
func (s *scoringService) Submit(ctx context.Context, studentID, quizID int, answers []models.SubmittedAnswer) (*models.SubmissionResult, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: answers are required", apperrors.ErrValidation)
	}
	if len(answers) > maxSubmissionAnswers {
		return nil, fmt.Errorf("%w: too many answers", apperrors.ErrValidation)
	}

	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	total, err := s.quizRepo.CountQuestions(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: quiz %d", apperrors.ErrEmptyQuiz, quiz.ID)
	}

	// Duplicate answers to the same question: only the first one counts.
	seen := make(map[int]bool, len(answers))
	correctCount := 0
	for _, answer := range answers {
		if seen[answer.QuestionID] {
			continue
		}
		seen[answer.QuestionID] = true

		correct, err := s.quizRepo.IsCorrectChoice(ctx, answer.ChoiceID, answer.QuestionID)
		if err != nil {
			return nil, err
		}
		if correct {
			correctCount++
		}
	}

	score := correctCount * 100 / total

	result := &models.Result{
		StudentID: studentID,
		QuizID:    quiz.ID,
		Score:     score,
	}
	if err := s.resultRepo.Create(ctx, result); err != nil {
		return nil, err
	}

	status := StatusFail
	if score >= PassThreshold {
		status = StatusPass
	}

	s.logger.Info("quiz submission graded",
		zap.Int("student_id", studentID),
		zap.Int("quiz_id", quiz.ID),
		zap.Int("score", score),
		zap.String("status", status),
	)

	return &models.SubmissionResult{
		Score:          score,
		CorrectCount:   correctCount,
		TotalQuestions: total,
		Status:         status,
	}, nil
}

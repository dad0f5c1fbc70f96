package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/models"
)

type stepProgressRepository struct {
	db *sql.DB
}

// NewStepProgressRepository creates a new step progress repository
func NewStepProgressRepository(db *sql.DB) *stepProgressRepository {
	return &stepProgressRepository{
		db: db,
	}
}

// Upsert creates or replaces the progress row for the (student, step) pair.
// Last write wins; scores are replaced, not accumulated.
func (r *stepProgressRepository) Upsert(ctx context.Context, progress *models.StepProgress) error {
	query := `
		INSERT INTO step_progress (student_id, step_id, is_completed, score_earned)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			is_completed = VALUES(is_completed),
			score_earned = VALUES(score_earned),
			completed_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query,
		progress.StudentID,
		progress.StepID,
		progress.IsCompleted,
		progress.ScoreEarned,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert step progress: %w", err)
	}

	return nil
}

// CountCompletedByCourse counts the distinct steps of a course the student
// has completed
func (r *stepProgressRepository) CountCompletedByCourse(ctx context.Context, studentID, courseID int) (int, error) {
	query := `
		SELECT COUNT(DISTINCT sp.step_id)
		FROM step_progress sp
		JOIN lesson_steps s ON s.id = sp.step_id
		JOIN lessons l ON l.id = s.lesson_id
		WHERE sp.student_id = ? AND l.course_id = ? AND sp.is_completed = 1
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, studentID, courseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed steps: %w", err)
	}

	return count, nil
}

// GetByStudentAndStep retrieves the progress row for the (student, step) pair
func (r *stepProgressRepository) GetByStudentAndStep(ctx context.Context, studentID, stepID int) (*models.StepProgress, error) {
	query := `
		SELECT id, student_id, step_id, is_completed, score_earned, completed_at
		FROM step_progress
		WHERE student_id = ? AND step_id = ?
		LIMIT 1
	`

	var progress models.StepProgress
	err := r.db.QueryRowContext(ctx, query, studentID, stepID).Scan(
		&progress.ID,
		&progress.StudentID,
		&progress.StepID,
		&progress.IsCompleted,
		&progress.ScoreEarned,
		&progress.CompletedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("step progress %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get step progress: %w", err)
	}

	return &progress, nil
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/securelearn/backend/internal/models"
)

type resultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new quiz result repository
func NewResultRepository(db *sql.DB) *resultRepository {
	return &resultRepository{
		db: db,
	}
}

// Create records a graded attempt. Every submission creates a new row.
func (r *resultRepository) Create(ctx context.Context, result *models.Result) error {
	query := `INSERT INTO results (student_id, quiz_id, score) VALUES (?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, result.StudentID, result.QuizID, result.Score)
	if err != nil {
		return fmt.Errorf("failed to create result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	result.ID = int(id)
	return nil
}

// GetByStudentID retrieves a student's attempt history, newest first
func (r *resultRepository) GetByStudentID(ctx context.Context, studentID int) ([]models.ResultListItem, error) {
	query := `
		SELECT r.id, q.title, l.title, r.score, r.completed_at
		FROM results r
		JOIN quizzes q ON q.id = r.quiz_id
		JOIN lessons l ON l.id = q.lesson_id
		WHERE r.student_id = ?
		ORDER BY r.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []models.ResultListItem
	for rows.Next() {
		var item models.ResultListItem
		err := rows.Scan(
			&item.ID,
			&item.QuizTitle,
			&item.LessonTitle,
			&item.Score,
			&item.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

// HasPassingResultForLesson checks whether the student holds at least one
// result meeting the threshold on any quiz of the lesson.
func (r *resultRepository) HasPassingResultForLesson(ctx context.Context, studentID, lessonID, threshold int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM results r
			JOIN quizzes q ON q.id = r.quiz_id
			WHERE r.student_id = ? AND q.lesson_id = ? AND r.score >= ?
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, studentID, lessonID, threshold).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check passing result: %w", err)
	}

	return exists, nil
}

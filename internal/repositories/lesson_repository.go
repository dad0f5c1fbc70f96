package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/models"
)

type lessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB) *lessonRepository {
	return &lessonRepository{
		db: db,
	}
}

// GetByID retrieves a lesson by its ID
func (r *lessonRepository) GetByID(ctx context.Context, id int) (*models.Lesson, error) {
	query := `
		SELECT id, course_id, title, ` + "`order`" + `
		FROM lessons
		WHERE id = ?
		LIMIT 1
	`

	var lesson models.Lesson
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.CourseID,
		&lesson.Title,
		&lesson.Order,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("lesson %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson by id: %w", err)
	}

	return &lesson, nil
}

// GetByCourseID retrieves all lessons for a course, sorted by order
func (r *lessonRepository) GetByCourseID(ctx context.Context, courseID int) ([]models.Lesson, error) {
	query := `
		SELECT id, course_id, title, ` + "`order`" + `
		FROM lessons
		WHERE course_id = ?
		ORDER BY ` + "`order`" + `
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []models.Lesson
	for rows.Next() {
		var lesson models.Lesson
		err := rows.Scan(
			&lesson.ID,
			&lesson.CourseID,
			&lesson.Title,
			&lesson.Order,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lessons, nil
}

// Create creates a new lesson
func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	query := `
		INSERT INTO lessons (course_id, title, ` + "`order`" + `)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		lesson.CourseID,
		lesson.Title,
		lesson.Order,
	)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	lesson.ID = int(id)
	return nil
}

// Update updates a lesson (partial update)
func (r *lessonRepository) Update(ctx context.Context, id int, req *models.UpdateLessonRequest) error {
	var setParts []string
	var args []any

	if req.Title != "" {
		setParts = append(setParts, "title = ?")
		args = append(args, req.Title)
	}
	if req.Order != nil {
		setParts = append(setParts, "`order` = ?")
		args = append(args, *req.Order)
	}

	if len(setParts) == 0 {
		return fmt.Errorf("%w: no fields to update", apperrors.ErrValidation)
	}

	query := fmt.Sprintf(`UPDATE lessons SET %s WHERE id = ?`, strings.Join(setParts, ", "))
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("lesson %w", apperrors.ErrNotFound)
	}

	return nil
}

// Delete deletes a lesson by ID
func (r *lessonRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM lessons WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("lesson %w", apperrors.ErrNotFound)
	}

	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/models"
)

type stepRepository struct {
	db *sql.DB
}

// NewStepRepository creates a new lesson step repository
func NewStepRepository(db *sql.DB) *stepRepository {
	return &stepRepository{
		db: db,
	}
}

// GetByID retrieves a step by its ID
func (r *stepRepository) GetByID(ctx context.Context, id int) (*models.Step, error) {
	query := `
		SELECT id, lesson_id, title, step_type, content, file_url, scenario_data, ` + "`order`" + `
		FROM lesson_steps
		WHERE id = ?
		LIMIT 1
	`

	var step models.Step
	var title, content, fileURL sql.NullString
	var scenarioData []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&step.ID,
		&step.LessonID,
		&title,
		&step.StepType,
		&content,
		&fileURL,
		&scenarioData,
		&step.Order,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("step %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get step by id: %w", err)
	}

	step.Title = title.String
	step.Content = content.String
	step.FileURL = fileURL.String
	step.ScenarioData = scenarioData
	return &step, nil
}

// GetByLessonID retrieves all steps for a lesson, sorted by order
func (r *stepRepository) GetByLessonID(ctx context.Context, lessonID int) ([]models.Step, error) {
	query := `
		SELECT id, lesson_id, title, step_type, content, file_url, scenario_data, ` + "`order`" + `
		FROM lesson_steps
		WHERE lesson_id = ?
		ORDER BY ` + "`order`" + `
	`

	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}
	defer rows.Close()

	var steps []models.Step
	for rows.Next() {
		var step models.Step
		var title, content, fileURL sql.NullString
		var scenarioData []byte
		err := rows.Scan(
			&step.ID,
			&step.LessonID,
			&title,
			&step.StepType,
			&content,
			&fileURL,
			&scenarioData,
			&step.Order,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		step.Title = title.String
		step.Content = content.String
		step.FileURL = fileURL.String
		step.ScenarioData = scenarioData
		steps = append(steps, step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return steps, nil
}

// CountByCourseID counts all steps belonging to a course
func (r *stepRepository) CountByCourseID(ctx context.Context, courseID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM lesson_steps s
		JOIN lessons l ON l.id = s.lesson_id
		WHERE l.course_id = ?
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, courseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count steps: %w", err)
	}

	return count, nil
}

// Create creates a new lesson step
func (r *stepRepository) Create(ctx context.Context, step *models.Step) error {
	query := `
		INSERT INTO lesson_steps (lesson_id, title, step_type, content, file_url, scenario_data, ` + "`order`" + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var scenarioData any
	if len(step.ScenarioData) > 0 {
		scenarioData = []byte(step.ScenarioData)
	}

	result, err := r.db.ExecContext(ctx, query,
		step.LessonID,
		step.Title,
		step.StepType,
		step.Content,
		step.FileURL,
		scenarioData,
		step.Order,
	)
	if err != nil {
		return fmt.Errorf("failed to create step: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	step.ID = int(id)
	return nil
}

// Delete deletes a step by ID
func (r *stepRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM lesson_steps WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete step: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("step %w", apperrors.ErrNotFound)
	}

	return nil
}

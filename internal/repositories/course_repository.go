package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/models"
)

type courseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *sql.DB) *courseRepository {
	return &courseRepository{
		db: db,
	}
}

// GetAll retrieves all courses with optional title search and pagination
func (r *courseRepository) GetAll(ctx context.Context, search string, page, count int) ([]models.Course, error) {
	var whereClause string
	var args []any
	if search != "" {
		whereClause = "WHERE title LIKE ?"
		args = append(args, "%"+search+"%")
	}

	query := fmt.Sprintf(`
		SELECT id, category_id, teacher_id, title, short_description, cover_image, description, price, created_at, updated_at
		FROM courses
		%s
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, whereClause)
	args = append(args, count, (page-1)*count)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var course models.Course
		var shortDescription, coverImage sql.NullString
		err := rows.Scan(
			&course.ID,
			&course.CategoryID,
			&course.TeacherID,
			&course.Title,
			&shortDescription,
			&coverImage,
			&course.Description,
			&course.Price,
			&course.CreatedAt,
			&course.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		course.ShortDescription = shortDescription.String
		course.CoverImage = coverImage.String
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return courses, nil
}

// GetByID retrieves a course by its ID
func (r *courseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	query := `
		SELECT id, category_id, teacher_id, title, short_description, cover_image, description, price, created_at, updated_at
		FROM courses
		WHERE id = ?
		LIMIT 1
	`

	var course models.Course
	var shortDescription, coverImage sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.CategoryID,
		&course.TeacherID,
		&course.Title,
		&shortDescription,
		&coverImage,
		&course.Description,
		&course.Price,
		&course.CreatedAt,
		&course.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("course %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	course.ShortDescription = shortDescription.String
	course.CoverImage = coverImage.String
	return &course, nil
}

// GetOwnerID retrieves the teacher id that owns a course
func (r *courseRepository) GetOwnerID(ctx context.Context, id int) (int, error) {
	query := `SELECT teacher_id FROM courses WHERE id = ? LIMIT 1`

	var ownerID int
	err := r.db.QueryRowContext(ctx, query, id).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("course %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get course owner: %w", err)
	}

	return ownerID, nil
}

// Create creates a new course
func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (category_id, teacher_id, title, short_description, cover_image, description, price)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		course.CategoryID,
		course.TeacherID,
		course.Title,
		course.ShortDescription,
		course.CoverImage,
		course.Description,
		course.Price,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	course.ID = int(id)
	return nil
}

// Update updates a course (partial update)
func (r *courseRepository) Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error {
	var setParts []string
	var args []any

	if req.CategoryID != nil {
		setParts = append(setParts, "category_id = ?")
		args = append(args, *req.CategoryID)
	}
	if req.Title != "" {
		setParts = append(setParts, "title = ?")
		args = append(args, req.Title)
	}
	if req.ShortDescription != "" {
		setParts = append(setParts, "short_description = ?")
		args = append(args, req.ShortDescription)
	}
	if req.CoverImage != "" {
		setParts = append(setParts, "cover_image = ?")
		args = append(args, req.CoverImage)
	}
	if req.Description != "" {
		setParts = append(setParts, "description = ?")
		args = append(args, req.Description)
	}
	if req.Price != "" {
		setParts = append(setParts, "price = ?")
		args = append(args, req.Price)
	}

	if len(setParts) == 0 {
		return fmt.Errorf("%w: no fields to update", apperrors.ErrValidation)
	}

	query := fmt.Sprintf(`UPDATE courses SET %s WHERE id = ?`, strings.Join(setParts, ", "))
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("course %w", apperrors.ErrNotFound)
	}

	return nil
}

// Delete deletes a course by ID. Lessons, steps, quizzes and learner records
// cascade at the schema level.
func (r *courseRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM courses WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("course %w", apperrors.ErrNotFound)
	}

	return nil
}

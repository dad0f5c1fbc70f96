package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/securelearn/backend/internal/models"
)

type enrollmentRepository struct {
	db *sql.DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *sql.DB) *enrollmentRepository {
	return &enrollmentRepository{
		db: db,
	}
}

// Exists checks if an enrollment exists for the (student, course) pair
func (r *enrollmentRepository) Exists(ctx context.Context, studentID, courseID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = ? AND course_id = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, studentID, courseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment existence: %w", err)
	}

	return exists, nil
}

// Create creates a new enrollment
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	query := `INSERT INTO enrollments (student_id, course_id) VALUES (?, ?)`

	result, err := r.db.ExecContext(ctx, query, enrollment.StudentID, enrollment.CourseID)
	if err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	enrollment.ID = int(id)
	return nil
}

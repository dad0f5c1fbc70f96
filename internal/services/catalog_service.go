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

// CatalogCategoryRepository defines category persistence
type CatalogCategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
}

// CatalogCourseRepository defines course persistence
type CatalogCourseRepository interface {
	GetAll(ctx context.Context, search string, page, count int) ([]models.Course, error)
	GetByID(ctx context.Context, id int) (*models.Course, error)
	GetOwnerID(ctx context.Context, id int) (int, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error
	Delete(ctx context.Context, id int) error
}

// CatalogEnrollmentRepository defines enrollment persistence
type CatalogEnrollmentRepository interface {
	Exists(ctx context.Context, studentID, courseID int) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
}

type catalogService struct {
	categoryRepo   CatalogCategoryRepository
	courseRepo     CatalogCourseRepository
	enrollmentRepo CatalogEnrollmentRepository
	logger         *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	categoryRepo CatalogCategoryRepository,
	courseRepo CatalogCourseRepository,
	enrollmentRepo CatalogEnrollmentRepository,
	logger *zap.Logger,
) *catalogService {
	return &catalogService{
		categoryRepo:   categoryRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		logger:         logger,
	}
}

// GetCategories retrieves all course categories
func (s *catalogService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.GetAll(ctx)
}

// CreateCategory creates a new category
func (s *catalogService) CreateCategory(ctx context.Context, actor auth.Identity, req *models.CreateCategoryRequest) (*models.Category, error) {
	if decision := Decide(actor, GateResource{Kind: ResourceCategory}, ActionWrite); !decision.Allowed {
		if actor.UserID == 0 {
			return nil, fmt.Errorf("%w", apperrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, decision.Reason)
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}

	category := &models.Category{
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// GetCourses retrieves the course catalog, optionally filtered by a search
// term. Metadata is public: no identity is required.
func (s *catalogService) GetCourses(ctx context.Context, search string, page, count int) ([]models.Course, error) {
	if page < 1 {
		page = 1
	}
	if count < 1 || count > 100 {
		count = 20
	}

	return s.courseRepo.GetAll(ctx, search, page, count)
}

// GetCourse retrieves a single course's metadata
func (s *catalogService) GetCourse(ctx context.Context, id int) (*models.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

// CreateCourse creates a new course owned by the actor
func (s *catalogService) CreateCourse(ctx context.Context, actor auth.Identity, req *models.CreateCourseRequest) (*models.Course, error) {
	if actor.UserID == 0 {
		return nil, fmt.Errorf("%w", apperrors.ErrUnauthorized)
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if req.CategoryID == 0 {
		return nil, fmt.Errorf("%w: categoryId is required", apperrors.ErrValidation)
	}

	course := &models.Course{
		CategoryID:       req.CategoryID,
		TeacherID:        actor.UserID,
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		CoverImage:       req.CoverImage,
		Description:      req.Description,
		Price:            req.Price,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info("course created",
		zap.Int("course_id", course.ID),
		zap.Int("teacher_id", actor.UserID),
	)

	return course, nil
}

// UpdateCourse applies a partial update to a course the actor owns
func (s *catalogService) UpdateCourse(ctx context.Context, actor auth.Identity, id int, req *models.UpdateCourseRequest) (*models.Course, error) {
	if err := s.requireOwner(ctx, actor, id); err != nil {
		return nil, err
	}

	if err := s.courseRepo.Update(ctx, id, req); err != nil {
		return nil, err
	}

	return s.courseRepo.GetByID(ctx, id)
}

// DeleteCourse deletes a course the actor owns together with its dependent
// content (cascaded by the schema)
func (s *catalogService) DeleteCourse(ctx context.Context, actor auth.Identity, id int) error {
	if err := s.requireOwner(ctx, actor, id); err != nil {
		return err
	}

	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("course deleted",
		zap.Int("course_id", id),
		zap.Int("actor_id", actor.UserID),
	)

	return nil
}

// Enroll grants the actor access to a course's content. Enrolling twice is
// idempotent.
func (s *catalogService) Enroll(ctx context.Context, actor auth.Identity, courseID int) (*models.Enrollment, error) {
	if actor.UserID == 0 {
		return nil, fmt.Errorf("%w", apperrors.ErrUnauthorized)
	}

	// Resolve the course so enrolling in a dangling id reports not found.
	if _, err := s.courseRepo.GetOwnerID(ctx, courseID); err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{
		StudentID: actor.UserID,
		CourseID:  courseID,
	}

	exists, err := s.enrollmentRepo.Exists(ctx, actor.UserID, courseID)
	if err != nil {
		return nil, err
	}
	if exists {
		return enrollment, nil
	}

	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	s.logger.Info("student enrolled",
		zap.Int("student_id", actor.UserID),
		zap.Int("course_id", courseID),
	)

	return enrollment, nil
}

// requireOwner runs the access gate for a write on the course
func (s *catalogService) requireOwner(ctx context.Context, actor auth.Identity, courseID int) error {
	ownerID, err := s.courseRepo.GetOwnerID(ctx, courseID)
	if err != nil {
		return err
	}

	res := GateResource{Kind: ResourceCourse, CourseOwnerID: ownerID}
	if decision := Decide(actor, res, ActionWrite); !decision.Allowed {
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, decision.Reason)
	}

	return nil
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/models"
)

// mockCategoryRepository is a mock implementation of
// CatalogCategoryRepository
type mockCategoryRepository struct {
	categories []models.Category
	err        error
}

func (m *mockCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if m.err != nil {
		return m.err
	}
	category.ID = 1
	return nil
}

// mockLessonRepository is a mock implementation of the lesson repository
// interfaces
type mockLessonRepository struct {
	lesson  *models.Lesson
	lessons []models.Lesson
	err     error
}

func (m *mockLessonRepository) GetByID(ctx context.Context, id int) (*models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.lesson == nil {
		return nil, fmt.Errorf("lesson %w", apperrors.ErrNotFound)
	}
	return m.lesson, nil
}

func (m *mockLessonRepository) GetByCourseID(ctx context.Context, courseID int) ([]models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.lessons, nil
}

func (m *mockLessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if m.err != nil {
		return m.err
	}
	lesson.ID = 1
	return nil
}

func (m *mockLessonRepository) Update(ctx context.Context, id int, req *models.UpdateLessonRequest) error {
	return m.err
}

func (m *mockLessonRepository) Delete(ctx context.Context, id int) error {
	return m.err
}

// mockCourseRepository is a mock implementation of the course repository
// interfaces
type mockCourseRepository struct {
	ownerID int
	course  *models.Course
	courses []models.Course
	err     error
}

func (m *mockCourseRepository) GetOwnerID(ctx context.Context, courseID int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.ownerID == 0 {
		return 0, fmt.Errorf("course %w", apperrors.ErrNotFound)
	}
	return m.ownerID, nil
}

func (m *mockCourseRepository) GetAll(ctx context.Context, search string, page, count int) ([]models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.courses, nil
}

func (m *mockCourseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.course == nil {
		return nil, fmt.Errorf("course %w", apperrors.ErrNotFound)
	}
	return m.course, nil
}

func (m *mockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	if m.err != nil {
		return m.err
	}
	course.ID = 1
	return nil
}

func (m *mockCourseRepository) Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error {
	return m.err
}

func (m *mockCourseRepository) Delete(ctx context.Context, id int) error {
	return m.err
}

// mockEnrollmentRepository is a mock implementation of the enrollment
// repository interfaces
type mockEnrollmentRepository struct {
	enrolled bool
	created  *models.Enrollment
	err      error
}

func (m *mockEnrollmentRepository) Exists(ctx context.Context, studentID, courseID int) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.enrolled, nil
}

func (m *mockEnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.err != nil {
		return m.err
	}
	enrollment.ID = 1
	m.created = enrollment
	return nil
}

// mockStepRepository is a mock implementation of the step repository
// interfaces
type mockStepRepository struct {
	step       *models.Step
	steps      []models.Step
	totalSteps int
	err        error
}

func (m *mockStepRepository) GetByID(ctx context.Context, id int) (*models.Step, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.step == nil {
		return nil, fmt.Errorf("step %w", apperrors.ErrNotFound)
	}
	return m.step, nil
}

func (m *mockStepRepository) GetByLessonID(ctx context.Context, lessonID int) ([]models.Step, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.steps, nil
}

func (m *mockStepRepository) CountByCourseID(ctx context.Context, courseID int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.totalSteps, nil
}

func (m *mockStepRepository) Create(ctx context.Context, step *models.Step) error {
	if m.err != nil {
		return m.err
	}
	step.ID = 1
	return nil
}

func (m *mockStepRepository) Delete(ctx context.Context, id int) error {
	return m.err
}

// mockQuizRepository is a mock implementation of the quiz repository
// interfaces
type mockQuizRepository struct {
	quiz           *models.Quiz
	quizzes        []models.Quiz
	view           *models.QuizView
	questionCount  int
	correctChoices map[int]int // choiceID -> questionID it is correct for
	createdQuiz    *models.Quiz
	createdWith    []models.NormalizedQuestion
	appendedToQuiz int
	appended       []models.NormalizedQuestion
	err            error
}

func (m *mockQuizRepository) GetByID(ctx context.Context, id int) (*models.Quiz, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.quiz == nil {
		return nil, fmt.Errorf("quiz %w", apperrors.ErrNotFound)
	}
	return m.quiz, nil
}

func (m *mockQuizRepository) GetByLessonID(ctx context.Context, lessonID int) ([]models.Quiz, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.quizzes, nil
}

func (m *mockQuizRepository) GetView(ctx context.Context, quizID int) (*models.QuizView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.view, nil
}

func (m *mockQuizRepository) CountQuestions(ctx context.Context, quizID int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.questionCount, nil
}

func (m *mockQuizRepository) IsCorrectChoice(ctx context.Context, choiceID, questionID int) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.correctChoices[choiceID] == questionID, nil
}

func (m *mockQuizRepository) CreateGraph(ctx context.Context, quiz *models.Quiz, questions []models.NormalizedQuestion) error {
	if m.err != nil {
		return m.err
	}
	quiz.ID = 42
	m.createdQuiz = quiz
	m.createdWith = questions
	return nil
}

func (m *mockQuizRepository) AppendQuestions(ctx context.Context, quizID int, questions []models.NormalizedQuestion) error {
	if m.err != nil {
		return m.err
	}
	m.appendedToQuiz = quizID
	m.appended = questions
	return nil
}

func (m *mockQuizRepository) Delete(ctx context.Context, id int) error {
	return m.err
}

// mockResultRepository is a mock implementation of the result repository
// interfaces
type mockResultRepository struct {
	created *models.Result
	items   []models.ResultListItem
	passing bool
	err     error
}

func (m *mockResultRepository) Create(ctx context.Context, result *models.Result) error {
	if m.err != nil {
		return m.err
	}
	result.ID = 1
	m.created = result
	return nil
}

func (m *mockResultRepository) GetByStudentID(ctx context.Context, studentID int) ([]models.ResultListItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockResultRepository) HasPassingResultForLesson(ctx context.Context, studentID, lessonID, threshold int) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.passing, nil
}

// mockProgressRepository is a mock implementation of ProgressRepository
type mockProgressRepository struct {
	upserted  *models.StepProgress
	completed int
	err       error
}

func (m *mockProgressRepository) Upsert(ctx context.Context, progress *models.StepProgress) error {
	if m.err != nil {
		return m.err
	}
	m.upserted = progress
	return nil
}

func (m *mockProgressRepository) CountCompletedByCourse(ctx context.Context, studentID, courseID int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.completed, nil
}

// mockGenerator is a mock implementation of QuestionGenerator
type mockGenerator struct {
	raw           []byte
	draft         *models.CourseDraft
	err           error
	gotText       string
	gotCount      int
	gotDifficulty string
}

func (m *mockGenerator) GenerateQuestions(ctx context.Context, text string, count int, difficulty string) ([]byte, error) {
	m.gotText = text
	m.gotCount = count
	m.gotDifficulty = difficulty
	if m.err != nil {
		return nil, m.err
	}
	return m.raw, nil
}

func (m *mockGenerator) GenerateCourseDraft(ctx context.Context, text string) (*models.CourseDraft, error) {
	m.gotText = text
	if m.err != nil {
		return nil, m.err
	}
	return m.draft, nil
}

// mockExtractor is a mock implementation of TextExtractor
type mockExtractor struct {
	text string
	err  error
}

func (m *mockExtractor) Extract(ctx context.Context, file io.Reader, extension string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

// mockUploadStorage keeps uploads in memory
type mockUploadStorage struct {
	files map[string]*bytes.Buffer
}

func newMockUploadStorage() *mockUploadStorage {
	return &mockUploadStorage{files: make(map[string]*bytes.Buffer)}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func (m *mockUploadStorage) Create(id, kind string) (io.WriteCloser, error) {
	buf := &bytes.Buffer{}
	m.files[kind+"/"+id] = buf
	return nopWriteCloser{buf}, nil
}

func (m *mockUploadStorage) Open(id, kind string) (io.ReadCloser, error) {
	buf, ok := m.files[kind+"/"+id]
	if !ok {
		return nil, fmt.Errorf("file not found")
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

package integration

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/securelearn/backend/internal/auth"
	"github.com/securelearn/backend/internal/config"
	"github.com/securelearn/backend/internal/handlers"
	"github.com/securelearn/backend/internal/models"
	"github.com/securelearn/backend/internal/repositories"
	"github.com/securelearn/backend/internal/services"
)

const testJWTSecret = "integration-test-secret"

const (
	teacherUserID = 10
	studentUserID = 20
)

var (
	testDB     *sql.DB
	testRouter chi.Router
	testLogger *zap.Logger
)

// TestMain sets up and tears down the test environment. Integration tests
// need a running MySQL instance configured through TEST_DB_* variables; the
// suite is skipped entirely when none is configured.
func TestMain(m *testing.M) {
	var err error
	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	if cfg.Database.Host == "" {
		fmt.Println("TEST_DB_HOST not set, skipping integration tests")
		os.Exit(0)
	}

	testDB, err = sql.Open("mysql", cfg.DSN())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}
	if err = testDB.Ping(); err != nil {
		panic(fmt.Sprintf("Failed to ping test database: %v", err))
	}

	setupTestSchema(testDB)
	testRouter = setupTestRouter(testDB, testLogger)

	code := m.Run()

	if testDB != nil {
		testDB.Close()
	}
	os.Exit(code)
}

// setupTestSchema creates the tables the suite needs. Mirrors the production
// migrations without foreign keys so tables can be truncated in any order.
func setupTestSchema(db *sql.DB) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id INT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS courses (
			id INT AUTO_INCREMENT PRIMARY KEY,
			category_id INT NOT NULL,
			teacher_id INT NOT NULL,
			title VARCHAR(255) NOT NULL,
			short_description VARCHAR(500),
			cover_image VARCHAR(500),
			description TEXT NOT NULL,
			price DECIMAL(10,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS lessons (
			id INT AUTO_INCREMENT PRIMARY KEY,
			course_id INT NOT NULL,
			title VARCHAR(255) NOT NULL,
			` + "`order`" + ` INT NOT NULL DEFAULT 0
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS lesson_steps (
			id INT AUTO_INCREMENT PRIMARY KEY,
			lesson_id INT NOT NULL,
			title VARCHAR(255),
			step_type ENUM('text', 'video_url', 'video_file', 'simulation_chat', 'simulation_email', 'quiz') NOT NULL,
			content TEXT,
			file_url VARCHAR(500),
			scenario_data JSON,
			` + "`order`" + ` INT NOT NULL DEFAULT 0
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS enrollments (
			id INT AUTO_INCREMENT PRIMARY KEY,
			student_id INT NOT NULL,
			course_id INT NOT NULL,
			enrolled_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_enrollments_student_course (student_id, course_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS quizzes (
			id INT AUTO_INCREMENT PRIMARY KEY,
			lesson_id INT NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS questions (
			id INT AUTO_INCREMENT PRIMARY KEY,
			quiz_id INT NOT NULL,
			text TEXT NOT NULL,
			explanation TEXT
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS choices (
			id INT AUTO_INCREMENT PRIMARY KEY,
			question_id INT NOT NULL,
			text VARCHAR(1000) NOT NULL,
			is_correct BOOLEAN NOT NULL DEFAULT FALSE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS results (
			id INT AUTO_INCREMENT PRIMARY KEY,
			student_id INT NOT NULL,
			quiz_id INT NOT NULL,
			score INT NOT NULL,
			completed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS step_progress (
			id INT AUTO_INCREMENT PRIMARY KEY,
			student_id INT NOT NULL,
			step_id INT NOT NULL,
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			score_earned INT NOT NULL DEFAULT 0,
			completed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_progress_student_step (student_id, step_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			panic(fmt.Sprintf("Failed to create test schema: %v", err))
		}
	}
}

// setupTestRouter wires the full service stack onto a router, the same way
// main does, minus the outbound AI and extractor clients.
func setupTestRouter(db *sql.DB, logger *zap.Logger) chi.Router {
	tokenValidator := auth.NewTokenValidator(testJWTSecret)
	authMiddleware := auth.Middleware(tokenValidator)

	categoryRepo := repositories.NewCategoryRepository(db)
	courseRepo := repositories.NewCourseRepository(db)
	lessonRepo := repositories.NewLessonRepository(db)
	stepRepo := repositories.NewStepRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)
	quizRepo := repositories.NewQuizRepository(db)
	resultRepo := repositories.NewResultRepository(db)
	progressRepo := repositories.NewStepProgressRepository(db)

	catalogService := services.NewCatalogService(categoryRepo, courseRepo, enrollmentRepo, logger)
	contentService := services.NewContentService(lessonRepo, stepRepo, courseRepo, enrollmentRepo, logger)
	quizService := services.NewQuizService(quizRepo, lessonRepo, courseRepo, enrollmentRepo, resultRepo, logger)
	scoringService := services.NewScoringService(quizRepo, resultRepo, logger)
	progressService := services.NewProgressService(progressRepo, stepRepo, lessonRepo, courseRepo, enrollmentRepo, quizRepo, resultRepo, logger)

	categoryHandler := handlers.NewCategoryHandler(catalogService, logger)
	courseHandler := handlers.NewCourseHandler(catalogService, progressService, logger)
	lessonHandler := handlers.NewLessonHandler(contentService, progressService, logger)
	quizHandler := handlers.NewQuizHandler(quizService, scoringService, logger)

	r := chi.NewRouter()
	categoryHandler.RegisterRoutes(r, authMiddleware)
	courseHandler.RegisterRoutes(r, authMiddleware)
	lessonHandler.RegisterRoutes(r, authMiddleware)
	quizHandler.RegisterRoutes(r, authMiddleware)

	return r
}

// issueToken signs an access token the way the identity service does.
func issueToken(t *testing.T, userID, role int) string {
	t.Helper()

	claims := jwt.MapClaims{
		"type":    "access",
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err, "Failed to sign test token")
	return token
}

// seededCourse holds the ids created by seedLearningData.
type seededCourse struct {
	courseID   int
	lessonID   int
	textStepID int
	quizStepID int
	quizID     int
	// correct[questionID] is the correct choice id, wrong[questionID] a wrong one
	correct map[int]int
	wrong   map[int]int
}

// seedLearningData inserts one course with a lesson, a text step, a quiz step
// and a two-question quiz owned by teacherUserID.
func seedLearningData(t *testing.T, db *sql.DB) seededCourse {
	t.Helper()
	cleanupLearningData(t, db)

	insert := func(query string, args ...any) int {
		res, err := db.Exec(query, args...)
		require.NoError(t, err, "Failed to seed test data")
		id, err := res.LastInsertId()
		require.NoError(t, err)
		return int(id)
	}

	categoryID := insert("INSERT INTO categories (title, description) VALUES (?, ?)", "Phishing", "Recognizing phishing attempts")
	courseID := insert(
		"INSERT INTO courses (category_id, teacher_id, title, description, price) VALUES (?, ?, ?, ?, ?)",
		categoryID, teacherUserID, "Phishing Basics", "Spotting suspicious emails", "0",
	)
	lessonID := insert("INSERT INTO lessons (course_id, title, `order`) VALUES (?, ?, ?)", courseID, "Anatomy of a phishing email", 1)
	textStepID := insert(
		"INSERT INTO lesson_steps (lesson_id, title, step_type, content, `order`) VALUES (?, ?, ?, ?, ?)",
		lessonID, "Reading headers", "text", "Always check the sender domain.", 1,
	)
	quizStepID := insert(
		"INSERT INTO lesson_steps (lesson_id, title, step_type, `order`) VALUES (?, ?, ?, ?)",
		lessonID, "Knowledge check", "quiz", 2,
	)
	quizID := insert("INSERT INTO quizzes (lesson_id, title, description) VALUES (?, ?, ?)", lessonID, "Phishing check", "")

	sc := seededCourse{
		courseID:   courseID,
		lessonID:   lessonID,
		textStepID: textStepID,
		quizStepID: quizStepID,
		quizID:     quizID,
		correct:    make(map[int]int),
		wrong:      make(map[int]int),
	}

	questions := []struct{ text, right, wrong string }{
		{"What should you verify first in a suspicious email?", "The sender domain", "The font"},
		{"A link text says bank.com but points elsewhere. What do you do?", "Report it", "Click it"},
	}
	for _, q := range questions {
		questionID := insert("INSERT INTO questions (quiz_id, text) VALUES (?, ?)", quizID, q.text)
		sc.correct[questionID] = insert("INSERT INTO choices (question_id, text, is_correct) VALUES (?, ?, TRUE)", questionID, q.right)
		sc.wrong[questionID] = insert("INSERT INTO choices (question_id, text, is_correct) VALUES (?, ?, FALSE)", questionID, q.wrong)
	}

	return sc
}

// cleanupLearningData removes all seeded rows
func cleanupLearningData(t *testing.T, db *sql.DB) {
	t.Helper()
	tables := []string{
		"step_progress", "results", "choices", "questions", "quizzes",
		"enrollments", "lesson_steps", "lessons", "courses", "categories",
	}
	for _, table := range tables {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err, "Failed to cleanup test data")
	}
}

// doJSON performs a request against the test router and decodes the response
// body into out when it is non-nil.
func doJSON(t *testing.T, method, path, token string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)

	if out != nil && w.Code < 300 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

func TestIntegration_QuizFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	sc := seedLearningData(t, testDB)
	defer cleanupLearningData(t, testDB)

	studentToken := issueToken(t, studentUserID, auth.RoleStudent)

	// Content is hidden until the student enrolls.
	w := doJSON(t, http.MethodGet, fmt.Sprintf("/api/v1/lessons/course/%d", sc.courseID), studentToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/enroll", sc.courseID), studentToken, nil, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Enrolling twice is a no-op, not an error.
	w = doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/enroll", sc.courseID), studentToken, nil, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var lessons []models.Lesson
	w = doJSON(t, http.MethodGet, fmt.Sprintf("/api/v1/lessons/course/%d", sc.courseID), studentToken, nil, &lessons)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, lessons, 1)

	// The student-facing quiz must not leak correctness flags.
	var quizzes []models.QuizView
	w = doJSON(t, http.MethodGet, fmt.Sprintf("/api/v1/quizzes/lesson/%d", sc.lessonID), studentToken, nil, &quizzes)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, quizzes, 1)
	require.Len(t, quizzes[0].Questions, 2)
	assert.NotContains(t, w.Body.String(), "isCorrect")

	// The quiz step cannot be completed before a passing attempt.
	w = doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/steps/%d/complete", sc.quizStepID), studentToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A half-right submission scores 50 and fails.
	answers := make([]models.SubmittedAnswer, 0, 2)
	first := true
	for questionID := range sc.correct {
		choiceID := sc.correct[questionID]
		if !first {
			choiceID = sc.wrong[questionID]
		}
		answers = append(answers, models.SubmittedAnswer{QuestionID: questionID, ChoiceID: choiceID})
		first = false
	}
	var result models.SubmissionResult
	w = doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/quizzes/%d/submit", sc.quizID), studentToken,
		models.QuizSubmissionRequest{Answers: answers}, &result)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, services.StatusFail, result.Status)

	// Still gated: 50 is below the pass threshold.
	w = doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/steps/%d/complete", sc.quizStepID), studentToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// An all-correct retake passes.
	answers = answers[:0]
	for questionID, choiceID := range sc.correct {
		answers = append(answers, models.SubmittedAnswer{QuestionID: questionID, ChoiceID: choiceID})
	}
	w = doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/quizzes/%d/submit", sc.quizID), studentToken,
		models.QuizSubmissionRequest{Answers: answers}, &result)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, services.StatusPass, result.Status)

	// Both attempts were recorded, newest first.
	var history []models.ResultListItem
	w = doJSON(t, http.MethodGet, "/api/v1/quizzes/my-results", studentToken, nil, &history)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, history, 2)

	// Now the quiz step completes, and the text step too.
	w = doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/steps/%d/complete", sc.quizStepID), studentToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/steps/%d/complete", sc.textStepID), studentToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var progress models.CourseProgress
	w = doJSON(t, http.MethodGet, fmt.Sprintf("/api/v1/courses/%d/progress", sc.courseID), studentToken, nil, &progress)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, progress.CompletedSteps)
	assert.Equal(t, 2, progress.TotalSteps)
	assert.Equal(t, 100, progress.Percentage)
}

func TestIntegration_OwnerBypassesQuizGate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	sc := seedLearningData(t, testDB)
	defer cleanupLearningData(t, testDB)

	ownerToken := issueToken(t, teacherUserID, auth.RoleTeacher)

	// The course owner reads content and completes the quiz step without a
	// passing result.
	w := doJSON(t, http.MethodGet, fmt.Sprintf("/api/v1/lessons/course/%d", sc.courseID), ownerToken, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/steps/%d/complete", sc.quizStepID), ownerToken, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIntegration_AnonymousAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	sc := seedLearningData(t, testDB)
	defer cleanupLearningData(t, testDB)

	// Catalog metadata is public.
	w := doJSON(t, http.MethodGet, "/api/v1/courses", "", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, http.MethodGet, fmt.Sprintf("/api/v1/courses/%d", sc.courseID), "", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, http.MethodGet, "/api/v1/categories", "", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Content requires a token.
	w = doJSON(t, http.MethodGet, fmt.Sprintf("/api/v1/lessons/course/%d", sc.courseID), "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(t, http.MethodGet, fmt.Sprintf("/api/v1/quizzes/lesson/%d", sc.lessonID), "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

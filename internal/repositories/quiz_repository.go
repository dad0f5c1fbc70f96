package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/models"
)

type quizRepository struct {
	db *sql.DB
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *sql.DB) *quizRepository {
	return &quizRepository{
		db: db,
	}
}

// GetByID retrieves a quiz by its ID
func (r *quizRepository) GetByID(ctx context.Context, id int) (*models.Quiz, error) {
	query := `
		SELECT id, lesson_id, title, description
		FROM quizzes
		WHERE id = ?
		LIMIT 1
	`

	var quiz models.Quiz
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&quiz.ID,
		&quiz.LessonID,
		&quiz.Title,
		&description,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("quiz %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz by id: %w", err)
	}

	quiz.Description = description.String
	return &quiz, nil
}

// GetByLessonID retrieves all quizzes attached to a lesson
func (r *quizRepository) GetByLessonID(ctx context.Context, lessonID int) ([]models.Quiz, error) {
	query := `
		SELECT id, lesson_id, title, description
		FROM quizzes
		WHERE lesson_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []models.Quiz
	for rows.Next() {
		var quiz models.Quiz
		var description sql.NullString
		err := rows.Scan(&quiz.ID, &quiz.LessonID, &quiz.Title, &description)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		quiz.Description = description.String
		quizzes = append(quizzes, quiz)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return quizzes, nil
}

// GetView retrieves the student-facing shape of a quiz: questions with their
// choices, correctness flags omitted.
func (r *quizRepository) GetView(ctx context.Context, quizID int) (*models.QuizView, error) {
	quiz, err := r.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT q.id, q.text, c.id, c.text
		FROM questions q
		JOIN choices c ON c.question_id = q.id
		WHERE q.quiz_id = ?
		ORDER BY q.id, c.id
	`

	rows, err := r.db.QueryContext(ctx, query, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz questions: %w", err)
	}
	defer rows.Close()

	view := &models.QuizView{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
	}

	index := make(map[int]int)
	for rows.Next() {
		var questionID, choiceID int
		var questionText, choiceText string
		if err := rows.Scan(&questionID, &questionText, &choiceID, &choiceText); err != nil {
			return nil, fmt.Errorf("failed to scan quiz question: %w", err)
		}

		i, ok := index[questionID]
		if !ok {
			view.Questions = append(view.Questions, models.QuestionView{
				ID:   questionID,
				Text: questionText,
			})
			i = len(view.Questions) - 1
			index[questionID] = i
		}
		view.Questions[i].Choices = append(view.Questions[i].Choices, models.ChoiceView{
			ID:   choiceID,
			Text: choiceText,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return view, nil
}

// CountQuestions counts the questions belonging to a quiz
func (r *quizRepository) CountQuestions(ctx context.Context, quizID int) (int, error) {
	query := `SELECT COUNT(*) FROM questions WHERE quiz_id = ?`

	var count int
	err := r.db.QueryRowContext(ctx, query, quizID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}

	return count, nil
}

// IsCorrectChoice checks whether a choice with the given id belongs to the
// given question and is flagged correct.
func (r *quizRepository) IsCorrectChoice(ctx context.Context, choiceID, questionID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM choices WHERE id = ? AND question_id = ? AND is_correct = 1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, choiceID, questionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check choice correctness: %w", err)
	}

	return exists, nil
}

// CreateGraph creates a quiz together with its questions and choices in one
// transaction. Either the whole batch commits or none of it does.
func (r *quizRepository) CreateGraph(ctx context.Context, quiz *models.Quiz, questions []models.NormalizedQuestion) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO quizzes (lesson_id, title, description) VALUES (?, ?, ?)`,
		quiz.LessonID, quiz.Title, quiz.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	quizID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := insertQuestions(ctx, tx, int(quizID), questions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	quiz.ID = int(quizID)
	return nil
}

// AppendQuestions appends questions and choices to an existing quiz in one
// transaction. Existing questions are never touched.
func (r *quizRepository) AppendQuestions(ctx context.Context, quizID int, questions []models.NormalizedQuestion) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertQuestions(ctx, tx, quizID, questions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// insertQuestions inserts one question row plus one choice row per option
func insertQuestions(ctx context.Context, tx *sql.Tx, quizID int, questions []models.NormalizedQuestion) error {
	for _, question := range questions {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO questions (quiz_id, text, explanation) VALUES (?, ?, ?)`,
			quizID, question.Text, question.Explanation,
		)
		if err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}

		questionID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		// Only the first occurrence of the correct text is flagged, so
		// duplicated option strings cannot yield two correct choices.
		marked := false
		for _, option := range question.Options {
			isCorrect := !marked && option == question.CorrectOption
			if isCorrect {
				marked = true
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO choices (question_id, text, is_correct) VALUES (?, ?, ?)`,
				questionID, option, isCorrect,
			)
			if err != nil {
				return fmt.Errorf("failed to create choice: %w", err)
			}
		}
	}

	return nil
}

// Delete deletes a quiz by ID
func (r *quizRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM quizzes WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("quiz %w", apperrors.ErrNotFound)
	}

	return nil
}

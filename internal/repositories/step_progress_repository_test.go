package repositories

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securelearn/backend/internal/models"
)

// setupStepProgressRepository creates a step progress repository with a mock
// database
func setupStepProgressRepository(t *testing.T) (*stepProgressRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewStepProgressRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestStepProgressRepository_Upsert(t *testing.T) {
	repo, mock, cleanup := setupStepProgressRepository(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO step_progress (student_id, step_id, is_completed, score_earned)")).
		WithArgs(5, 7, true, 80).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(context.Background(), &models.StepProgress{
		StudentID:   5,
		StepID:      7,
		IsCompleted: true,
		ScoreEarned: 80,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStepProgressRepository_Upsert_RepeatCompletionDoesNotDuplicate(t *testing.T) {
	repo, mock, cleanup := setupStepProgressRepository(t)
	defer cleanup()

	// Same (student, step) pair twice: the second write updates in place,
	// which MySQL reports as two affected rows.
	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
		WithArgs(5, 7, true, 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
		WithArgs(5, 7, true, 90).
		WillReturnResult(sqlmock.NewResult(0, 2))

	progress := &models.StepProgress{StudentID: 5, StepID: 7, IsCompleted: true}
	require.NoError(t, repo.Upsert(context.Background(), progress))

	progress.ScoreEarned = 90
	require.NoError(t, repo.Upsert(context.Background(), progress))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStepProgressRepository_CountCompletedByCourse(t *testing.T) {
	repo, mock, cleanup := setupStepProgressRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"count"}).AddRow(3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT sp.step_id)")).
		WithArgs(5, 2).
		WillReturnRows(rows)

	count, err := repo.CountCompletedByCourse(context.Background(), 5, 2)

	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

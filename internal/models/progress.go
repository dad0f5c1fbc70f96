package models

import "time"

// StepProgress records a student's completion state for one step. Upserted on
// each completion event, keyed by the unique (student, step) pair.
type StepProgress struct {
	ID          int       `json:"id"`
	StudentID   int       `json:"studentId"`
	StepID      int       `json:"stepId"`
	IsCompleted bool      `json:"isCompleted"`
	ScoreEarned int       `json:"scoreEarned"`
	CompletedAt time.Time `json:"completedAt"`
}

package models

import "time"

// Result is one graded quiz attempt. Every submission creates a new row;
// "best" or "latest" is a query-time concept.
type Result struct {
	ID          int       `json:"id"`
	StudentID   int       `json:"studentId,omitempty"`
	QuizID      int       `json:"quizId"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

// ResultListItem is a result row joined with quiz and lesson titles for the
// profile history view
type ResultListItem struct {
	ID          int       `json:"id"`
	QuizTitle   string    `json:"quizTitle"`
	LessonTitle string    `json:"lessonTitle"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

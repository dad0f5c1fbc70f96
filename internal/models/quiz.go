package models

// Quiz represents a quiz attached to a lesson
type Quiz struct {
	ID          int    `json:"id"`
	LessonID    int    `json:"lessonId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Question represents a quiz question
type Question struct {
	ID          int    `json:"id"`
	QuizID      int    `json:"quizId,omitempty"`
	Text        string `json:"text"`
	Explanation string `json:"explanation,omitempty"`
}

// Choice represents an answer option of a question
type Choice struct {
	ID         int    `json:"id"`
	QuestionID int    `json:"questionId,omitempty"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"isCorrect"`
}

// ChoiceView is the student-facing choice shape. Correctness flags are never
// serialized to learners.
type ChoiceView struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// QuestionView is the student-facing question shape
type QuestionView struct {
	ID      int          `json:"id"`
	Text    string       `json:"text"`
	Choices []ChoiceView `json:"choices"`
}

// QuizView is the student-facing quiz shape
type QuizView struct {
	ID          int            `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Questions   []QuestionView `json:"questions"`
}

// SubmittedAnswer is a single (question, choice) pair of a quiz submission
type SubmittedAnswer struct {
	QuestionID int `json:"question_id"`
	ChoiceID   int `json:"choice_id"`
}

// QuizSubmissionRequest represents a quiz submission
type QuizSubmissionRequest struct {
	Answers []SubmittedAnswer `json:"answers"`
}

// SubmissionResult is the graded outcome of a quiz submission
type SubmissionResult struct {
	Score          int    `json:"score"`
	CorrectCount   int    `json:"correct_count"`
	TotalQuestions int    `json:"total_questions"`
	Status         string `json:"status"`
}

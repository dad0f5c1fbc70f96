package models

// NormalizedQuestion is the canonical shape produced from heterogeneous
// generation output before persistence.
type NormalizedQuestion struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
	Explanation   string   `json:"explanation"`
}

// GeneratePreviewRequest asks for draft questions without persisting them.
// Exactly one of LessonID or CustomText supplies the source material.
type GeneratePreviewRequest struct {
	LessonID   int    `json:"lesson_id,omitempty"`
	CustomText string `json:"custom_text,omitempty"`
	Count      int    `json:"count"`
	Difficulty string `json:"difficulty"`
}

// SaveGeneratedRequest persists previously previewed questions into a quiz
type SaveGeneratedRequest struct {
	LessonID  int                  `json:"lesson_id"`
	Questions []NormalizedQuestion `json:"questions"`
	QuizID    *int                 `json:"quiz_id,omitempty"`
	QuizTitle string               `json:"quiz_title,omitempty"`
}

// CourseDraftLesson is one lesson of a generated course outline
type CourseDraftLesson struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// CourseDraft is the generated course outline returned by the upload flow.
// Nothing is persisted; the teacher reviews the draft first.
type CourseDraft struct {
	CourseTitle       string              `json:"course_title"`
	CourseDescription string              `json:"course_description"`
	Lessons           []CourseDraftLesson `json:"lessons"`
}

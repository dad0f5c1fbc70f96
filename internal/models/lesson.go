package models

// Lesson represents a lesson in a course
type Lesson struct {
	ID       int    `json:"id"`
	CourseID int    `json:"courseId,omitempty"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
}

// CreateLessonRequest represents a request to create a lesson
type CreateLessonRequest struct {
	CourseID int    `json:"courseId"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
}

// UpdateLessonRequest represents a request to update a lesson (partial update)
type UpdateLessonRequest struct {
	Title string `json:"title,omitempty"`
	Order *int   `json:"order,omitempty"`
}

// LessonDetail represents a lesson together with its ordered steps
type LessonDetail struct {
	Lesson
	Steps []Step `json:"steps"`
}

package models

import "time"

// Course represents a training course. TeacherID references the external
// identity service's user id.
type Course struct {
	ID               int       `json:"id"`
	CategoryID       int       `json:"categoryId"`
	TeacherID        int       `json:"teacherId"`
	Title            string    `json:"title"`
	ShortDescription string    `json:"shortDescription,omitempty"`
	CoverImage       string    `json:"coverImage,omitempty"`
	Description      string    `json:"description"`
	Price            string    `json:"price"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// CreateCourseRequest represents a request to create a course
type CreateCourseRequest struct {
	CategoryID       int    `json:"categoryId"`
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	CoverImage       string `json:"coverImage"`
	Description      string `json:"description"`
	Price            string `json:"price"`
}

// UpdateCourseRequest represents a request to update a course (partial update)
type UpdateCourseRequest struct {
	CategoryID       *int   `json:"categoryId,omitempty"`
	Title            string `json:"title,omitempty"`
	ShortDescription string `json:"shortDescription,omitempty"`
	CoverImage       string `json:"coverImage,omitempty"`
	Description      string `json:"description,omitempty"`
	Price            string `json:"price,omitempty"`
}

// CourseProgress represents a student's completion percentage for a course
type CourseProgress struct {
	CourseID       int `json:"courseId"`
	CompletedSteps int `json:"completedSteps"`
	TotalSteps     int `json:"totalSteps"`
	Percentage     int `json:"percentage"`
}

package models

import "time"

// Enrollment grants a student read access to a course's lesson content.
// The (student, course) pair is unique.
type Enrollment struct {
	ID         int       `json:"id"`
	StudentID  int       `json:"studentId"`
	CourseID   int       `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

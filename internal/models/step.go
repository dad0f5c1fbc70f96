package models

import "encoding/json"

// StepType enumerates the kinds of content a lesson step can carry
type StepType string

const (
	StepTypeText            StepType = "text"
	StepTypeVideoURL        StepType = "video_url"
	StepTypeVideoFile       StepType = "video_file"
	StepTypeSimulationChat  StepType = "simulation_chat"
	StepTypeSimulationEmail StepType = "simulation_email"
	StepTypeQuiz            StepType = "quiz"
)

// ValidStepType reports whether t is a known step type
func ValidStepType(t StepType) bool {
	switch t {
	case StepTypeText, StepTypeVideoURL, StepTypeVideoFile,
		StepTypeSimulationChat, StepTypeSimulationEmail, StepTypeQuiz:
		return true
	default:
		return false
	}
}

// Step represents the smallest orderable content unit inside a lesson.
// ScenarioData is an opaque JSON payload used only by the simulation kinds.
type Step struct {
	ID           int             `json:"id"`
	LessonID     int             `json:"lessonId,omitempty"`
	Title        string          `json:"title,omitempty"`
	StepType     StepType        `json:"stepType"`
	Content      string          `json:"content,omitempty"`
	FileURL      string          `json:"fileUrl,omitempty"`
	ScenarioData json.RawMessage `json:"scenarioData,omitempty"`
	Order        int             `json:"order"`
}

// CreateStepRequest represents a request to create a lesson step
type CreateStepRequest struct {
	LessonID     int             `json:"lessonId"`
	Title        string          `json:"title"`
	StepType     StepType        `json:"stepType"`
	Content      string          `json:"content"`
	FileURL      string          `json:"fileUrl"`
	ScenarioData json.RawMessage `json:"scenarioData"`
	Order        int             `json:"order"`
}

// CompleteStepRequest represents an optional score payload for step completion
type CompleteStepRequest struct {
	Score int `json:"score"`
}

package models

// Category represents a course category
type Category struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

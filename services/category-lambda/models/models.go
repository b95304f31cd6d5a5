package models

import "time"

// Category groups a user's goals under a name unique to that user
type Category struct {
	ID        int       `json:"id" db:"Id"`
	UserID    int       `json:"-" db:"UserId"`
	Name      string    `json:"name" db:"Name"`
	CreatedAt time.Time `json:"createdDate" db:"CreatedAt"`
}

// CreateCategoryRequest represents category creation body
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// UpdateCategoryRequest represents category rename body
type UpdateCategoryRequest struct {
	Name string `json:"name"`
}

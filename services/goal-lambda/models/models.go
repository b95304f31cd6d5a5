package models

import "time"

// Goal statuses
const (
	StatusInProgress = "InProgress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// ValidStatus reports whether s is a known goal status
func ValidStatus(s string) bool {
	return s == StatusInProgress || s == StatusCompleted || s == StatusCancelled
}

// Goal represents one tracked goal belonging to a user
type Goal struct {
	ID           int        `json:"id" db:"Id"`
	UserID       int        `json:"-" db:"UserId"`
	Title        string     `json:"title" db:"Title"`
	Description  string     `json:"description,omitempty" db:"Description"`
	Status       string     `json:"status" db:"Status"`
	DueDate      *time.Time `json:"dueDate,omitempty" db:"DueDate"`
	CategoryID   *int       `json:"goalCategoryId,omitempty" db:"GoalCategoryId"`
	CategoryName string     `json:"categoryName,omitempty" db:"-"`
	CreatedAt    time.Time  `json:"createdDate" db:"CreatedAt"`
}

// CreateGoalRequest represents goal creation body
type CreateGoalRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	CategoryID  *int       `json:"goalCategoryId"`
}

// UpdateGoalRequest represents goal update body
type UpdateGoalRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	CategoryID  *int       `json:"goalCategoryId"`
}

// ListGoalsQuery captures pagination and filters for goal listing
type ListGoalsQuery struct {
	Page       int
	PageSize   int
	Status     string
	CategoryID *int
}

// GoalPage is one page of goals plus paging metadata
type GoalPage struct {
	Items      []Goal `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalCount int    `json:"totalCount"`
}

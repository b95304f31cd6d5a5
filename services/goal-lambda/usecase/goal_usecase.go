package usecase

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/goal-tracker-services/common/errors"
	"github.com/goal-tracker-services/services/goal-lambda/models"
	"github.com/goal-tracker-services/services/goal-lambda/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GoalStore is the goal persistence surface the use case depends on
type GoalStore interface {
	CategoryBelongsToUser(ctx context.Context, categoryID, userID int) (bool, error)
	Create(ctx context.Context, goal *models.Goal) error
	FindByID(ctx context.Context, goalID, userID int) (*models.Goal, error)
	List(ctx context.Context, userID int, q models.ListGoalsQuery) (*models.GoalPage, error)
	Update(ctx context.Context, goal *models.Goal) error
	Delete(ctx context.Context, goalID, userID int) error
}

// GoalUseCase handles goal business logic. Every operation is scoped to
// the calling user; a goal owned by someone else is reported as missing,
// never as forbidden.
type GoalUseCase struct {
	goals GoalStore
}

// NewGoalUseCase wires the use case with the MySQL repository
func NewGoalUseCase() *GoalUseCase {
	return &GoalUseCase{goals: repository.NewGoalRepository()}
}

// NewGoalUseCaseWith wires the use case with an explicit store
func NewGoalUseCaseWith(goals GoalStore) *GoalUseCase {
	return &GoalUseCase{goals: goals}
}

func validateTitle(title string) string {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "Title is required."
	}
	if len(trimmed) < 3 || len(trimmed) > 100 {
		return "Title must be between 3 and 100 characters."
	}
	return ""
}

// CreateGoal creates a goal for the user
func (uc *GoalUseCase) CreateGoal(ctx context.Context, userID int, req models.CreateGoalRequest) (*models.Goal, error) {
	if msg := validateTitle(req.Title); msg != "" {
		return nil, apperrors.ValidationError(msg)
	}
	if len(req.Description) > 500 {
		return nil, apperrors.ValidationError("Description cannot exceed 500 characters.")
	}

	if req.CategoryID != nil {
		owned, err := uc.goals.CategoryBelongsToUser(ctx, *req.CategoryID, userID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if !owned {
			return nil, apperrors.NotFound("category", "Category not found.")
		}
	}

	goal := &models.Goal{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      models.StatusInProgress,
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
	}
	if err := uc.goals.Create(ctx, goal); err != nil {
		return nil, apperrors.Database(err)
	}

	return goal, nil
}

// GetGoal returns one of the user's goals
func (uc *GoalUseCase) GetGoal(ctx context.Context, userID, goalID int) (*models.Goal, error) {
	goal, err := uc.goals.FindByID(ctx, goalID, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if goal == nil {
		return nil, apperrors.NotFound("goal", "Goal not found.")
	}
	return goal, nil
}

// ListGoals returns one page of the user's goals
func (uc *GoalUseCase) ListGoals(ctx context.Context, userID int, q models.ListGoalsQuery) (*models.GoalPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	if q.Status != "" && !models.ValidStatus(q.Status) {
		return nil, apperrors.ValidationError("Invalid status value.")
	}

	page, err := uc.goals.List(ctx, userID, q)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return page, nil
}

// UpdateGoal rewrites a goal the user owns
func (uc *GoalUseCase) UpdateGoal(ctx context.Context, userID, goalID int, req models.UpdateGoalRequest) error {
	if msg := validateTitle(req.Title); msg != "" {
		return apperrors.ValidationError(msg)
	}
	if len(req.Description) > 500 {
		return apperrors.ValidationError("Description cannot exceed 500 characters.")
	}
	if req.Status == "" {
		req.Status = models.StatusInProgress
	}
	if !models.ValidStatus(req.Status) {
		return apperrors.ValidationError("Invalid status value.")
	}

	if req.CategoryID != nil {
		owned, err := uc.goals.CategoryBelongsToUser(ctx, *req.CategoryID, userID)
		if err != nil {
			return apperrors.Database(err)
		}
		if !owned {
			return apperrors.NotFound("category", "Category not found.")
		}
	}

	goal := &models.Goal{
		ID:          goalID,
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
	}
	if err := uc.goals.Update(ctx, goal); err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return apperrors.NotFound("goal", "Goal not found.")
		}
		return apperrors.Database(err)
	}
	return nil
}

// DeleteGoal removes a goal the user owns
func (uc *GoalUseCase) DeleteGoal(ctx context.Context, userID, goalID int) error {
	if err := uc.goals.Delete(ctx, goalID, userID); err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return apperrors.NotFound("goal", "Goal not found.")
		}
		return apperrors.Database(err)
	}
	return nil
}

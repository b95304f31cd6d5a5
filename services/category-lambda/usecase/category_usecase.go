package usecase

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/goal-tracker-services/common/errors"
	"github.com/goal-tracker-services/services/category-lambda/models"
	"github.com/goal-tracker-services/services/category-lambda/repository"
)

// CategoryStore is the category persistence surface
type CategoryStore interface {
	ExistsByName(ctx context.Context, userID int, name string) (bool, error)
	Create(ctx context.Context, category *models.Category) error
	List(ctx context.Context, userID int) ([]models.Category, error)
	Rename(ctx context.Context, categoryID, userID int, name string) error
	Delete(ctx context.Context, categoryID, userID int) error
}

// CategoryUseCase handles goal category business logic
type CategoryUseCase struct {
	categories CategoryStore
}

// NewCategoryUseCase wires the use case with the MySQL repository
func NewCategoryUseCase() *CategoryUseCase {
	return &CategoryUseCase{categories: repository.NewCategoryRepository()}
}

// NewCategoryUseCaseWith wires the use case with an explicit store
func NewCategoryUseCaseWith(categories CategoryStore) *CategoryUseCase {
	return &CategoryUseCase{categories: categories}
}

func validateName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "Category name is required."
	}
	if len(trimmed) < 2 || len(trimmed) > 100 {
		return "Category name must be between 2 and 100 characters."
	}
	return ""
}

// CreateCategory creates a category; names are unique per user
func (uc *CategoryUseCase) CreateCategory(ctx context.Context, userID int, req models.CreateCategoryRequest) (*models.Category, error) {
	if msg := validateName(req.Name); msg != "" {
		return nil, apperrors.ValidationError(msg)
	}
	name := strings.TrimSpace(req.Name)

	taken, err := uc.categories.ExistsByName(ctx, userID, name)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if taken {
		return nil, apperrors.AlreadyExists("category", "A category with this name already exists.")
	}

	category := &models.Category{UserID: userID, Name: name}
	if err := uc.categories.Create(ctx, category); err != nil {
		return nil, apperrors.Database(err)
	}

	return category, nil
}

// ListCategories returns all of the user's categories
func (uc *CategoryUseCase) ListCategories(ctx context.Context, userID int) ([]models.Category, error) {
	categories, err := uc.categories.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return categories, nil
}

// RenameCategory renames a category the user owns
func (uc *CategoryUseCase) RenameCategory(ctx context.Context, userID, categoryID int, req models.UpdateCategoryRequest) error {
	if msg := validateName(req.Name); msg != "" {
		return apperrors.ValidationError(msg)
	}
	name := strings.TrimSpace(req.Name)

	taken, err := uc.categories.ExistsByName(ctx, userID, name)
	if err != nil {
		return apperrors.Database(err)
	}
	if taken {
		return apperrors.AlreadyExists("category", "A category with this name already exists.")
	}

	if err := uc.categories.Rename(ctx, categoryID, userID, name); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return apperrors.NotFound("category", "Category not found.")
		}
		return apperrors.Database(err)
	}
	return nil
}

// DeleteCategory deletes a category the user owns; its goals keep
// existing without a category.
func (uc *CategoryUseCase) DeleteCategory(ctx context.Context, userID, categoryID int) error {
	if err := uc.categories.Delete(ctx, categoryID, userID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return apperrors.NotFound("category", "Category not found.")
		}
		return apperrors.Database(err)
	}
	return nil
}

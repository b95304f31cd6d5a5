package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goal-tracker-services/common/db"
	"github.com/goal-tracker-services/services/category-lambda/models"
)

// ErrCategoryNotFound covers both a missing row and a row owned by
// another user.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepository handles goal category data access
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{
		db: db.GetDB(),
	}
}

// ExistsByName checks if the user already has a category with this name
func (r *CategoryRepository) ExistsByName(ctx context.Context, userID int, name string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM GoalCategories WHERE UserId = ? AND Name = ?`,
		userID, name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new category for the user
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO GoalCategories (UserId, Name, CreatedAt) VALUES (?, ?, UTC_TIMESTAMP())`,
		category.UserID, category.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	categoryID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	category.ID = int(categoryID)
	return nil
}

// List returns all of the user's categories ordered by name
func (r *CategoryRepository) List(ctx context.Context, userID int) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT Id, UserId, Name, CreatedAt FROM GoalCategories WHERE UserId = ? ORDER BY Name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.UserID, &category.Name, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// Rename changes a category name; ownership is part of the WHERE clause
func (r *CategoryRepository) Rename(ctx context.Context, categoryID, userID int, name string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE GoalCategories SET Name = ? WHERE Id = ? AND UserId = ?`,
		name, categoryID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to rename category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// Delete removes a category and detaches its goals in one transaction.
// The goals survive with no category rather than being deleted.
func (r *CategoryRepository) Delete(ctx context.Context, categoryID, userID int) error {
	return db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE Goals SET GoalCategoryId = NULL WHERE GoalCategoryId = ? AND UserId = ?`,
			categoryID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to detach goals: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM GoalCategories WHERE Id = ? AND UserId = ?`,
			categoryID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return ErrCategoryNotFound
		}

		return nil
	})
}

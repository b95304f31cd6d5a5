package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goal-tracker-services/common/db"
	"github.com/goal-tracker-services/services/goal-lambda/models"
)

// ErrGoalNotFound covers both a missing row and a row owned by another
// user; the two are indistinguishable on purpose.
var ErrGoalNotFound = errors.New("goal not found")

// GoalRepository handles goal data access
type GoalRepository struct {
	db *sql.DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository() *GoalRepository {
	return &GoalRepository{
		db: db.GetDB(),
	}
}

// CategoryBelongsToUser checks a category reference before it is
// attached to a goal.
func (r *GoalRepository) CategoryBelongsToUser(ctx context.Context, categoryID, userID int) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM GoalCategories WHERE Id = ? AND UserId = ?`,
		categoryID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new goal for the user
func (r *GoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	query := `
		INSERT INTO Goals (UserId, Title, Description, Status, DueDate, GoalCategoryId, CreatedAt)
		VALUES (?, ?, ?, ?, ?, ?, UTC_TIMESTAMP())
	`

	result, err := r.db.ExecContext(ctx, query,
		goal.UserID, goal.Title, goal.Description, goal.Status, goal.DueDate, goal.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	goalID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	goal.ID = int(goalID)
	return nil
}

// FindByID returns a goal only when it belongs to the user
func (r *GoalRepository) FindByID(ctx context.Context, goalID, userID int) (*models.Goal, error) {
	query := `
		SELECT g.Id, g.UserId, g.Title, g.Description, g.Status, g.DueDate, g.GoalCategoryId, g.CreatedAt,
		       COALESCE(c.Name, '')
		FROM Goals g
		LEFT JOIN GoalCategories c ON c.Id = g.GoalCategoryId
		WHERE g.Id = ? AND g.UserId = ?
	`

	var goal models.Goal
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, query, goalID, userID).Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&description,
		&goal.Status,
		&goal.DueDate,
		&goal.CategoryID,
		&goal.CreatedAt,
		&goal.CategoryName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}
	goal.Description = description.String

	return &goal, nil
}

// List returns one page of the user's goals, newest first
func (r *GoalRepository) List(ctx context.Context, userID int, q models.ListGoalsQuery) (*models.GoalPage, error) {
	where := []string{"g.UserId = ?"}
	args := []interface{}{userID}

	if q.Status != "" {
		where = append(where, "g.Status = ?")
		args = append(args, q.Status)
	}
	if q.CategoryID != nil {
		where = append(where, "g.GoalCategoryId = ?")
		args = append(args, *q.CategoryID)
	}
	condition := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM Goals g WHERE " + condition
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count goals: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT g.Id, g.UserId, g.Title, g.Description, g.Status, g.DueDate, g.GoalCategoryId, g.CreatedAt,
		       COALESCE(c.Name, '')
		FROM Goals g
		LEFT JOIN GoalCategories c ON c.Id = g.GoalCategoryId
		WHERE %s
		ORDER BY g.CreatedAt DESC, g.Id DESC
		LIMIT ? OFFSET ?
	`, condition)
	args = append(args, q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	page := &models.GoalPage{
		Items:      []models.Goal{},
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalCount: total,
	}
	for rows.Next() {
		var goal models.Goal
		var description sql.NullString
		err := rows.Scan(
			&goal.ID,
			&goal.UserID,
			&goal.Title,
			&description,
			&goal.Status,
			&goal.DueDate,
			&goal.CategoryID,
			&goal.CreatedAt,
			&goal.CategoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goal.Description = description.String
		page.Items = append(page.Items, goal)
	}

	return page, rows.Err()
}

// Update rewrites a goal's mutable fields; ownership is part of the
// WHERE clause so a foreign id looks like a missing row.
func (r *GoalRepository) Update(ctx context.Context, goal *models.Goal) error {
	query := `
		UPDATE Goals
		SET Title = ?, Description = ?, Status = ?, DueDate = ?, GoalCategoryId = ?
		WHERE Id = ? AND UserId = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		goal.Title, goal.Description, goal.Status, goal.DueDate, goal.CategoryID,
		goal.ID, goal.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

// Delete removes a goal owned by the user
func (r *GoalRepository) Delete(ctx context.Context, goalID, userID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM Goals WHERE Id = ? AND UserId = ?`,
		goalID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

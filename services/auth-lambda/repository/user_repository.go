package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goal-tracker-services/common/db"
	"github.com/goal-tracker-services/common/hash"
	"github.com/goal-tracker-services/services/auth-lambda/models"
)

// ErrUserNotFound is returned when no matching user row exists
var ErrUserNotFound = errors.New("user not found")

// UserRepository handles user data access
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		db: db.GetDB(),
	}
}

const userColumns = `Id, Username, Email, Firstname, Lastname, PasswordHash, Role, IsDeleted, CreatedAt`

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Firstname,
		&user.Lastname,
		&user.PasswordHash,
		&user.Role,
		&user.IsDeleted,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// FindByUsernameOrEmail finds a user by login identifier. Soft-deleted
// rows are returned so the caller can reject them without revealing
// whether the account ever existed.
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM Users WHERE Username = ? OR Email = ?`, userColumns)
	return scanUser(r.db.QueryRowContext(ctx, query, identifier, identifier))
}

// FindByEmail finds a non-deleted user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM Users WHERE Email = ? AND IsDeleted = 0`, userColumns)
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// FindByID finds a non-deleted user by id
func (r *UserRepository) FindByID(ctx context.Context, userID int) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM Users WHERE Id = ? AND IsDeleted = 0`, userColumns)
	return scanUser(r.db.QueryRowContext(ctx, query, userID))
}

// ExistsByUsername checks if the username is already taken
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Users WHERE Username = ?`, username).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// ExistsByEmail checks if the email is already registered
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Users WHERE Email = ?`, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// CreateUser inserts a new user with an already-hashed password
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (int, error) {
	if user.Role == "" {
		user.Role = "User"
	}

	query := `
		INSERT INTO Users (Username, Email, Firstname, Lastname, PasswordHash, Role, IsDeleted, CreatedAt)
		VALUES (?, ?, ?, ?, ?, ?, 0, UTC_TIMESTAMP())
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.Firstname,
		user.Lastname,
		user.PasswordHash,
		user.Role,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	userID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return int(userID), nil
}

// UpdatePassword replaces the stored password hash for a user
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE Users SET PasswordHash = ? WHERE Id = ? AND IsDeleted = 0`,
		passwordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpdateUser updates user details (Admin)
func (r *UserRepository) UpdateUser(ctx context.Context, req models.AdminUpdateUserRequest) error {
	var updates []string
	var args []interface{}

	if req.Firstname != "" {
		updates = append(updates, "Firstname = ?")
		args = append(args, req.Firstname)
	}
	if req.Lastname != "" {
		updates = append(updates, "Lastname = ?")
		args = append(args, req.Lastname)
	}
	if req.Role != "" {
		updates = append(updates, "Role = ?")
		args = append(args, req.Role)
	}
	if req.Password != "" {
		passwordHash, err := hash.HashPassword(req.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		updates = append(updates, "PasswordHash = ?")
		args = append(args, passwordHash)
	}

	if len(updates) == 0 {
		return errors.New("nothing to update")
	}

	query := "UPDATE Users SET " + strings.Join(updates, ", ") + " WHERE Id = ? AND IsDeleted = 0"
	args = append(args, req.ID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SoftDeleteUser marks a user as deleted; the row is kept for audit
func (r *UserRepository) SoftDeleteUser(ctx context.Context, userID int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE Users SET IsDeleted = 1 WHERE Id = ? AND IsDeleted = 0`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to soft delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ListUsers returns all non-deleted users ordered by username
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT Id, Username, Email, Firstname, Lastname, Role, CreatedAt
		FROM Users
		WHERE IsDeleted = 0
		ORDER BY Username
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.Firstname,
			&user.Lastname,
			&user.Role,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

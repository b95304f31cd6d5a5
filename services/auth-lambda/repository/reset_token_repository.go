package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goal-tracker-services/common/db"
	"github.com/goal-tracker-services/services/auth-lambda/models"
)

// ErrTokenNotRedeemable is returned when a reset token is missing,
// already used, or past its expiry.
var ErrTokenNotRedeemable = errors.New("reset token is not redeemable")

// ResetTokenRepository handles password reset token data access
type ResetTokenRepository struct {
	db *sql.DB
}

// NewResetTokenRepository creates a new reset token repository
func NewResetTokenRepository() *ResetTokenRepository {
	return &ResetTokenRepository{
		db: db.GetDB(),
	}
}

// Create stores a new reset token
func (r *ResetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	query := `
		INSERT INTO PasswordResetTokens (UserId, Token, ExpiresAt, IsUsed, CreatedAt, IpAddress)
		VALUES (?, ?, ?, 0, UTC_TIMESTAMP(), ?)
	`

	result, err := r.db.ExecContext(ctx, query, token.UserID, token.Token, token.ExpiresAt, token.IPAddress)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	tokenID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	token.ID = int(tokenID)
	return nil
}

// FindByToken looks up a token by its opaque value; returns nil when absent
func (r *ResetTokenRepository) FindByToken(ctx context.Context, tokenValue string) (*models.PasswordResetToken, error) {
	query := `
		SELECT Id, UserId, Token, ExpiresAt, IsUsed, CreatedAt, IpAddress
		FROM PasswordResetTokens
		WHERE Token = ?
	`

	var token models.PasswordResetToken
	err := r.db.QueryRowContext(ctx, query, tokenValue).Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.ExpiresAt,
		&token.IsUsed,
		&token.CreatedAt,
		&token.IPAddress,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query reset token: %w", err)
	}

	return &token, nil
}

// ListActiveForUser returns the user's still-redeemable tokens, most
// recently issued first.
func (r *ResetTokenRepository) ListActiveForUser(ctx context.Context, userID int) ([]models.PasswordResetToken, error) {
	query := `
		SELECT Id, UserId, Token, ExpiresAt, IsUsed, CreatedAt, IpAddress
		FROM PasswordResetTokens
		WHERE UserId = ? AND IsUsed = 0 AND ExpiresAt > UTC_TIMESTAMP()
		ORDER BY CreatedAt DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active reset tokens: %w", err)
	}
	defer rows.Close()

	var tokens []models.PasswordResetToken
	for rows.Next() {
		var token models.PasswordResetToken
		err := rows.Scan(
			&token.ID,
			&token.UserID,
			&token.Token,
			&token.ExpiresAt,
			&token.IsUsed,
			&token.CreatedAt,
			&token.IPAddress,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reset token: %w", err)
		}
		tokens = append(tokens, token)
	}

	return tokens, rows.Err()
}

// InvalidateActiveForUser marks every still-active token of a user as
// used, so only the most recently issued token can redeem.
func (r *ResetTokenRepository) InvalidateActiveForUser(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE PasswordResetTokens SET IsUsed = 1 WHERE UserId = ? AND IsUsed = 0`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to invalidate reset tokens: %w", err)
	}
	return nil
}

// Consume redeems a token and applies the new password hash in one
// transaction. The conditional UPDATE only matches an unused, unexpired
// row, so concurrent redemption attempts race for a single winner; the
// losers see zero rows and get ErrTokenNotRedeemable.
func (r *ResetTokenRepository) Consume(ctx context.Context, tokenValue string, newPasswordHash string) error {
	return db.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE PasswordResetTokens
			SET IsUsed = 1
			WHERE Token = ? AND IsUsed = 0 AND ExpiresAt > UTC_TIMESTAMP()
		`, tokenValue)
		if err != nil {
			return fmt.Errorf("failed to mark reset token used: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return ErrTokenNotRedeemable
		}

		result, err = tx.ExecContext(ctx, `
			UPDATE Users
			SET PasswordHash = ?
			WHERE Id = (SELECT UserId FROM PasswordResetTokens WHERE Token = ?) AND IsDeleted = 0
		`, newPasswordHash, tokenValue)
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}

		rows, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}

package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goal-tracker-services/common/config"
	"github.com/goal-tracker-services/common/email"
	apperrors "github.com/goal-tracker-services/common/errors"
	"github.com/goal-tracker-services/common/hash"
	"github.com/goal-tracker-services/common/jwt"
	"github.com/goal-tracker-services/common/logger"
	"github.com/goal-tracker-services/common/ratelimit"
	"github.com/goal-tracker-services/common/recaptcha"
	"github.com/goal-tracker-services/common/validator"
	"github.com/goal-tracker-services/services/auth-lambda/models"
	"github.com/goal-tracker-services/services/auth-lambda/repository"
)

// RecoveryAcceptedMessage is the single response body for recovery
// requests. Registered and unregistered addresses must produce this
// exact message so the endpoint cannot be used to probe for accounts.
const RecoveryAcceptedMessage = "If the email address is registered, a password reset link has been sent."

// UserStore is the user persistence surface the use case depends on
type UserStore interface {
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, userID int) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) (int, error)
	UpdateUser(ctx context.Context, req models.AdminUpdateUserRequest) error
	SoftDeleteUser(ctx context.Context, userID int) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// ResetTokenStore is the reset token persistence surface
type ResetTokenStore interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	FindByToken(ctx context.Context, tokenValue string) (*models.PasswordResetToken, error)
	ListActiveForUser(ctx context.Context, userID int) ([]models.PasswordResetToken, error)
	InvalidateActiveForUser(ctx context.Context, userID int) error
	Consume(ctx context.Context, tokenValue string, newPasswordHash string) error
}

// Mailer sends transactional mail for the auth flows
type Mailer interface {
	SendPasswordRecoveryEmail(to, username, resetLink string) error
	SendPasswordResetConfirmation(to, username string) error
	SendWelcomeEmail(to, username string) error
}

// CaptchaVerifier checks client-supplied CAPTCHA tokens
type CaptchaVerifier interface {
	Validate(ctx context.Context, token, remoteIP string) bool
}

// RecoveryLimiter throttles password recovery requests per identifier
type RecoveryLimiter interface {
	IsAllowed(identifier string) bool
	RetryAfter(identifier string) (time.Duration, bool)
}

// AuthUseCase handles authentication business logic
type AuthUseCase struct {
	users   UserStore
	tokens  ResetTokenStore
	mailer  Mailer
	captcha CaptchaVerifier
	limiter RecoveryLimiter
	cfg     *config.AuthConfig
	log     *logger.Logger
	now     func() time.Time
}

// NewAuthUseCase wires the use case with production dependencies
func NewAuthUseCase() *AuthUseCase {
	cfg := config.LoadAuthConfig()
	return NewAuthUseCaseWith(
		repository.NewUserRepository(),
		repository.NewResetTokenRepository(),
		email.NewEmailService(nil),
		recaptcha.NewCaptchaService(nil),
		ratelimit.NewRecoveryLimiter(cfg.RecoveryMaxRequests, cfg.RecoveryWindowMins),
		cfg,
	)
}

// NewAuthUseCaseWith wires the use case with explicit dependencies
func NewAuthUseCaseWith(users UserStore, tokens ResetTokenStore, mailer Mailer, captcha CaptchaVerifier, limiter RecoveryLimiter, cfg *config.AuthConfig) *AuthUseCase {
	return &AuthUseCase{
		users:   users,
		tokens:  tokens,
		mailer:  mailer,
		captcha: captcha,
		limiter: limiter,
		cfg:     cfg,
		log:     logger.Default(),
		now:     time.Now,
	}
}

// Login authenticates a user and issues a session token. Every failure
// mode maps to one identical error so callers cannot tell an unknown
// account from a wrong password or a deactivated account.
func (uc *AuthUseCase) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	identifier := strings.TrimSpace(req.UsernameOrEmail)
	if identifier == "" || req.Password == "" {
		return nil, apperrors.ValidationError("Username and password are required.")
	}

	user, err := uc.users.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.InvalidCredentials()
	}

	if !hash.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, apperrors.InvalidCredentials()
	}

	if user.IsDeleted {
		return nil, apperrors.InvalidCredentials()
	}

	hours := uc.cfg.SessionHours
	if req.KeepLoggedIn {
		hours = uc.cfg.ExtendedSessionHours
	}

	token, err := jwt.GenerateToken(user.ID, user.Username, user.Email, user.Role, hours,
		uc.cfg.JWTSecretKey, uc.cfg.JWTIssuer, uc.cfg.JWTAudience)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to generate token.")
	}

	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}

// Register creates a new account. Unlike login, conflicts are reported
// distinctly: the caller already knows the values they submitted.
func (uc *AuthUseCase) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if msg := validator.GetUsernameError(req.Username); msg != "" {
		return nil, apperrors.ValidationError(msg)
	}
	if msg := validator.GetEmailError(req.Email); msg != "" {
		return nil, apperrors.ValidationError(msg)
	}
	if msg := validator.GetPasswordError(req.Password); msg != "" {
		return nil, apperrors.ValidationError(msg)
	}

	usernameTaken, err := uc.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if usernameTaken {
		return nil, apperrors.AlreadyExists("username", "Username is already taken.")
	}

	emailTaken, err := uc.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if emailTaken {
		return nil, apperrors.AlreadyExists("email", "Email is already registered.")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to hash password.")
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		Firstname:    strings.TrimSpace(req.Firstname),
		Lastname:     strings.TrimSpace(req.Lastname),
		PasswordHash: passwordHash,
		Role:         "User",
	}

	userID, err := uc.users.CreateUser(ctx, &user)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	user.ID = userID
	user.CreatedAt = uc.now()

	if err := uc.mailer.SendWelcomeEmail(user.Email, user.Username); err != nil {
		uc.log.Error("failed to send welcome email", "email", user.Email, "error", err)
	}

	token, err := jwt.GenerateToken(user.ID, user.Username, user.Email, user.Role, uc.cfg.SessionHours,
		uc.cfg.JWTSecretKey, uc.cfg.JWTIssuer, uc.cfg.JWTAudience)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to generate token.")
	}

	return &models.AuthResponse{
		Token: token,
		User:  user,
	}, nil
}

// RequestPasswordRecovery starts the recovery flow. The rate limit is
// checked before anything else so attackers cannot burn CAPTCHA or
// database work, and the outcome is identical whether or not the email
// belongs to an account.
func (uc *AuthUseCase) RequestPasswordRecovery(ctx context.Context, req models.ForgotPasswordRequest, clientIP string) error {
	if msg := validator.GetEmailError(req.Email); msg != "" {
		return apperrors.ValidationError(msg)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !uc.limiter.IsAllowed(email) {
		retryAfter, _ := uc.limiter.RetryAfter(email)
		uc.log.Warn("password recovery rate limited", "email", email, "retry_after", retryAfter)
		return apperrors.RateLimited(retryAfter)
	}

	// CAPTCHA is verified only when the client supplied a token;
	// deployments without CAPTCHA never send one, and the flow must keep
	// working there. A supplied token still has to pass.
	if captchaToken := strings.TrimSpace(req.CaptchaToken); captchaToken != "" {
		if !uc.captcha.Validate(ctx, captchaToken, clientIP) {
			return apperrors.CaptchaFailed()
		}
	}

	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.Database(err)
	}
	if user == nil {
		// Unknown address: report success without doing anything.
		uc.log.Info("password recovery requested for unknown email")
		return nil
	}

	// Supersede any still-active tokens so only the newest link redeems.
	active, err := uc.tokens.ListActiveForUser(ctx, user.ID)
	if err != nil {
		return apperrors.Database(err)
	}
	if len(active) > 0 {
		if err := uc.tokens.InvalidateActiveForUser(ctx, user.ID); err != nil {
			return apperrors.Database(err)
		}
	}

	tokenValue, err := newResetTokenValue()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to generate reset token.")
	}

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     tokenValue,
		ExpiresAt: uc.now().Add(uc.cfg.ResetTokenTTL()),
		IPAddress: clientIP,
	}
	if err := uc.tokens.Create(ctx, token); err != nil {
		return apperrors.Database(err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", uc.cfg.BaseURL, tokenValue)
	if err := uc.mailer.SendPasswordRecoveryEmail(user.Email, user.Username, resetLink); err != nil {
		// Mail delivery problems never surface to the caller: a failure
		// response here would reveal that the account exists.
		uc.log.Error("failed to send recovery email", "user_id", user.ID, "error", err)
	}

	uc.log.Info("password recovery token issued", "user_id", user.ID)
	return nil
}

// ResetPassword redeems a reset token and applies the new password.
// Missing, used and expired tokens are indistinguishable to the caller.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if strings.TrimSpace(req.Token) == "" {
		return apperrors.ValidationError("Reset token is required.")
	}
	if msg := validator.GetResetPasswordError(req.NewPassword); msg != "" {
		return apperrors.ValidationError(msg)
	}

	token, err := uc.tokens.FindByToken(ctx, req.Token)
	if err != nil {
		return apperrors.Database(err)
	}
	if token == nil || !token.IsActive(uc.now()) {
		return apperrors.NotFound("reset token", "Invalid or expired reset token.")
	}

	passwordHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to hash password.")
	}

	if err := uc.tokens.Consume(ctx, req.Token, passwordHash); err != nil {
		if errors.Is(err, repository.ErrTokenNotRedeemable) || errors.Is(err, repository.ErrUserNotFound) {
			// Lost the race against a concurrent redemption, the token
			// expired between lookup and consume, or the account was
			// deactivated after the token was issued. All of these look
			// the same to the caller.
			return apperrors.NotFound("reset token", "Invalid or expired reset token.")
		}
		return apperrors.Database(err)
	}

	user, err := uc.users.FindByID(ctx, token.UserID)
	if err == nil && user != nil {
		if mailErr := uc.mailer.SendPasswordResetConfirmation(user.Email, user.Username); mailErr != nil {
			uc.log.Error("failed to send reset confirmation email", "user_id", user.ID, "error", mailErr)
		}
	}

	uc.log.Info("password reset completed", "user_id", token.UserID)
	return nil
}

// ValidateResetToken reports whether a token could still be redeemed.
// It never consumes the token; the UI calls this before showing the
// new-password form.
func (uc *AuthUseCase) ValidateResetToken(ctx context.Context, tokenValue string) (bool, error) {
	if strings.TrimSpace(tokenValue) == "" {
		return false, nil
	}

	token, err := uc.tokens.FindByToken(ctx, tokenValue)
	if err != nil {
		return false, apperrors.Database(err)
	}
	if token == nil {
		return false, nil
	}

	return token.IsActive(uc.now()), nil
}

// ============================================================
// Admin User Management Methods
// ============================================================

// AdminUpdateUser updates user details on behalf of an administrator
func (uc *AuthUseCase) AdminUpdateUser(ctx context.Context, req models.AdminUpdateUserRequest) error {
	if req.ID == 0 {
		return apperrors.ValidationError("User id is required.")
	}
	if req.Role != "" && req.Role != "User" && req.Role != "Admin" {
		return apperrors.ValidationError("Role must be User or Admin.")
	}
	if req.Password != "" {
		if msg := validator.GetPasswordError(req.Password); msg != "" {
			return apperrors.ValidationError(msg)
		}
	}

	if err := uc.users.UpdateUser(ctx, req); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.NotFound("user", "User not found.")
		}
		return apperrors.Database(err)
	}
	return nil
}

// AdminDeleteUser soft deletes a user account
func (uc *AuthUseCase) AdminDeleteUser(ctx context.Context, userID int) error {
	if err := uc.users.SoftDeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.NotFound("user", "User not found.")
		}
		return apperrors.Database(err)
	}
	return nil
}

// ListUsers returns all active users
func (uc *AuthUseCase) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := uc.users.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return users, nil
}

// newResetTokenValue builds an opaque token value: a UUID plus 16 bytes
// from crypto/rand, hex encoded. Unguessable and safe in a URL.
func newResetTokenValue() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "") + hex.EncodeToString(buf), nil
}

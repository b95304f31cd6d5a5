package usecase

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/goal-tracker-services/common/config"
	apperrors "github.com/goal-tracker-services/common/errors"
	"github.com/goal-tracker-services/common/hash"
	"github.com/goal-tracker-services/common/jwt"
	"github.com/goal-tracker-services/common/recaptcha"
	"github.com/goal-tracker-services/services/auth-lambda/models"
	"github.com/goal-tracker-services/services/auth-lambda/repository"
)

// ============================================================
// Fakes
// ============================================================

type fakeUserStore struct {
	users  []*models.User
	nextID int
}

func (f *fakeUserStore) FindByUsernameOrEmail(_ context.Context, identifier string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == identifier || u.Email == identifier {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) && !u.IsDeleted {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, userID int) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == userID && !u.IsDeleted {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *models.User) (int, error) {
	f.nextID++
	user.ID = f.nextID
	f.users = append(f.users, user)
	return user.ID, nil
}

func (f *fakeUserStore) UpdateUser(_ context.Context, req models.AdminUpdateUserRequest) error {
	for _, u := range f.users {
		if u.ID == req.ID && !u.IsDeleted {
			if req.Role != "" {
				u.Role = req.Role
			}
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (f *fakeUserStore) SoftDeleteUser(_ context.Context, userID int) error {
	for _, u := range f.users {
		if u.ID == userID && !u.IsDeleted {
			u.IsDeleted = true
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (f *fakeUserStore) ListUsers(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if !u.IsDeleted {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeTokenStore struct {
	tokens          map[string]*models.PasswordResetToken
	appliedHashes   map[int]string
	now             func() time.Time
	nextID          int
	invalidateCalls int
	consumeErr      error
}

func newFakeTokenStore(now func() time.Time) *fakeTokenStore {
	return &fakeTokenStore{
		tokens:        make(map[string]*models.PasswordResetToken),
		appliedHashes: make(map[int]string),
		now:           now,
	}
}

func (f *fakeTokenStore) Create(_ context.Context, token *models.PasswordResetToken) error {
	f.nextID++
	token.ID = f.nextID
	token.CreatedAt = f.now()
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeTokenStore) FindByToken(_ context.Context, tokenValue string) (*models.PasswordResetToken, error) {
	if t, ok := f.tokens[tokenValue]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeTokenStore) ListActiveForUser(_ context.Context, userID int) ([]models.PasswordResetToken, error) {
	var out []models.PasswordResetToken
	for _, t := range f.tokens {
		if t.UserID == userID && t.IsActive(f.now()) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTokenStore) InvalidateActiveForUser(_ context.Context, userID int) error {
	f.invalidateCalls++
	for _, t := range f.tokens {
		if t.UserID == userID && !t.IsUsed {
			t.IsUsed = true
		}
	}
	return nil
}

func (f *fakeTokenStore) Consume(_ context.Context, tokenValue string, newPasswordHash string) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	t, ok := f.tokens[tokenValue]
	if !ok || !t.IsActive(f.now()) {
		return repository.ErrTokenNotRedeemable
	}
	t.IsUsed = true
	f.appliedHashes[t.UserID] = newPasswordHash
	return nil
}

type fakeMailer struct {
	recoveryTo    []string
	recoveryLinks []string
	confirmTo     []string
	welcomeTo     []string
	failRecovery  bool
}

func (f *fakeMailer) SendPasswordRecoveryEmail(to, _, resetLink string) error {
	f.recoveryTo = append(f.recoveryTo, to)
	f.recoveryLinks = append(f.recoveryLinks, resetLink)
	if f.failRecovery {
		return contextDeadlineErr{}
	}
	return nil
}

func (f *fakeMailer) SendPasswordResetConfirmation(to, _ string) error {
	f.confirmTo = append(f.confirmTo, to)
	return nil
}

func (f *fakeMailer) SendWelcomeEmail(to, _ string) error {
	f.welcomeTo = append(f.welcomeTo, to)
	return nil
}

type contextDeadlineErr struct{}

func (contextDeadlineErr) Error() string { return "smtp: connection timed out" }

type fakeCaptcha struct {
	ok     bool
	called int
}

func (f *fakeCaptcha) Validate(_ context.Context, _, _ string) bool {
	f.called++
	return f.ok
}

type fakeLimiter struct {
	allowed bool
	retry   time.Duration
}

func (f *fakeLimiter) IsAllowed(string) bool { return f.allowed }
func (f *fakeLimiter) RetryAfter(string) (time.Duration, bool) {
	return f.retry, !f.allowed
}

// ============================================================
// Harness
// ============================================================

func testConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecretKey:         "test-secret-key",
		JWTIssuer:            "https://localhost:5001",
		JWTAudience:          "https://localhost:5001",
		SessionHours:         8,
		ExtendedSessionHours: 168,
		RecoveryMaxRequests:  3,
		RecoveryWindowMins:   15,
		ResetTokenTTLMinutes: 60,
		BaseURL:              "http://localhost:3000",
	}
}

type harness struct {
	uc      *AuthUseCase
	users   *fakeUserStore
	tokens  *fakeTokenStore
	mailer  *fakeMailer
	captcha *fakeCaptcha
	limiter *fakeLimiter
	clock   *time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	current := time.Now()
	clock := &current
	now := func() time.Time { return *clock }

	users := &fakeUserStore{}
	tokens := newFakeTokenStore(now)
	mailer := &fakeMailer{}
	captcha := &fakeCaptcha{ok: true}
	limiter := &fakeLimiter{allowed: true}

	uc := NewAuthUseCaseWith(users, tokens, mailer, captcha, limiter, testConfig())
	uc.now = now

	return &harness{uc: uc, users: users, tokens: tokens, mailer: mailer, captcha: captcha, limiter: limiter, clock: clock}
}

func (h *harness) addUser(t *testing.T, username, email, password string) *models.User {
	t.Helper()
	passwordHash, err := hash.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         "User",
	}
	h.users.nextID++
	user.ID = h.users.nextID
	h.users.users = append(h.users.users, user)
	return user
}

// ============================================================
// Login
// ============================================================

func TestLogin_Success(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "alice", "alice@example.com", "Abc@1234")

	resp, err := h.uc.Login(context.Background(), models.LoginRequest{
		UsernameOrEmail: "alice",
		Password:        "Abc@1234",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Token == "" {
		t.Error("Login() returned empty token")
	}
	if resp.User.Username != "alice" {
		t.Errorf("user = %q, want alice", resp.User.Username)
	}

	// Email works as the identifier too.
	if _, err := h.uc.Login(context.Background(), models.LoginRequest{
		UsernameOrEmail: "alice@example.com",
		Password:        "Abc@1234",
	}); err != nil {
		t.Errorf("Login() by email error = %v", err)
	}
}

func TestLogin_UniformFailureMessage(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "alice", "alice@example.com", "Abc@1234")
	deleted := h.addUser(t, "bob", "bob@example.com", "Abc@1234")
	deleted.IsDeleted = true

	requests := []models.LoginRequest{
		{UsernameOrEmail: "nobody", Password: "Abc@1234"},         // unknown account
		{UsernameOrEmail: "alice", Password: "WrongPass@1"},       // wrong password
		{UsernameOrEmail: "bob", Password: "Abc@1234"},            // deactivated account
		{UsernameOrEmail: "bob@example.com", Password: "Abc@1234"}, // deactivated, by email
	}

	var messages []string
	for _, req := range requests {
		_, err := h.uc.Login(context.Background(), req)
		if err == nil {
			t.Fatalf("Login(%q) should fail", req.UsernameOrEmail)
		}
		appErr, ok := apperrors.As(err)
		if !ok {
			t.Fatalf("Login(%q) error is not an AppError: %v", req.UsernameOrEmail, err)
		}
		if appErr.HTTPStatus != 401 {
			t.Errorf("Login(%q) status = %d, want 401", req.UsernameOrEmail, appErr.HTTPStatus)
		}
		messages = append(messages, appErr.Message)
	}

	// All failure modes must be byte-identical to the caller.
	for i := 1; i < len(messages); i++ {
		if messages[i] != messages[0] {
			t.Errorf("failure message %d = %q differs from %q", i, messages[i], messages[0])
		}
	}
}

func TestLogin_KeepLoggedInExtendsSession(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "alice", "alice@example.com", "Abc@1234")
	cfg := testConfig()

	short, err := h.uc.Login(context.Background(), models.LoginRequest{
		UsernameOrEmail: "alice", Password: "Abc@1234",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	long, err := h.uc.Login(context.Background(), models.LoginRequest{
		UsernameOrEmail: "alice", Password: "Abc@1234", KeepLoggedIn: true,
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	shortClaims, err := jwt.ValidateToken(short.Token, cfg.JWTSecretKey, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	longClaims, err := jwt.ValidateToken(long.Token, cfg.JWTSecretKey, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	shortTTL := time.Until(shortClaims.ExpiresAt.Time)
	longTTL := time.Until(longClaims.ExpiresAt.Time)
	if shortTTL > 9*time.Hour {
		t.Errorf("default session TTL = %v, want about 8h", shortTTL)
	}
	if longTTL < 160*time.Hour {
		t.Errorf("extended session TTL = %v, want about 168h", longTTL)
	}
}

// ============================================================
// Register
// ============================================================

func TestRegister_Success(t *testing.T) {
	h := newHarness(t)

	resp, err := h.uc.Register(context.Background(), models.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Abc@1234",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if resp.User.Role != "User" {
		t.Errorf("role = %q, want User", resp.User.Role)
	}
	if resp.Token == "" {
		t.Error("Register() returned empty token")
	}
	if len(h.mailer.welcomeTo) != 1 || h.mailer.welcomeTo[0] != "alice@example.com" {
		t.Errorf("welcome email recipients = %v", h.mailer.welcomeTo)
	}

	// Stored hash must verify the original password and not be plaintext.
	stored := h.users.users[0].PasswordHash
	if stored == "Abc@1234" {
		t.Error("password stored as plaintext")
	}
	if !hash.VerifyPassword("Abc@1234", stored) {
		t.Error("stored hash does not verify the registration password")
	}
}

func TestRegister_Conflicts(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "alice", "alice@example.com", "Abc@1234")

	_, err := h.uc.Register(context.Background(), models.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "Abc@1234",
	})
	appErr, ok := apperrors.As(err)
	if !ok || appErr.HTTPStatus != 409 {
		t.Fatalf("duplicate username error = %v, want 409", err)
	}
	if appErr.Message != "Username is already taken." {
		t.Errorf("message = %q", appErr.Message)
	}

	_, err = h.uc.Register(context.Background(), models.RegisterRequest{
		Username: "carol", Email: "alice@example.com", Password: "Abc@1234",
	})
	appErr, ok = apperrors.As(err)
	if !ok || appErr.HTTPStatus != 409 {
		t.Fatalf("duplicate email error = %v, want 409", err)
	}
	if appErr.Message != "Email is already registered." {
		t.Errorf("message = %q", appErr.Message)
	}
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.Register(context.Background(), models.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "weakpass",
	})
	appErr, ok := apperrors.As(err)
	if !ok || appErr.HTTPStatus != 400 {
		t.Fatalf("weak password error = %v, want 400", err)
	}
}

// ============================================================
// Password recovery
// ============================================================

func TestRequestPasswordRecovery_RateLimitCheckedFirst(t *testing.T) {
	h := newHarness(t)
	h.limiter.allowed = false
	h.limiter.retry = 10 * time.Minute

	err := h.uc.RequestPasswordRecovery(context.Background(), models.ForgotPasswordRequest{
		Email:        "alice@example.com",
		CaptchaToken: "some-token",
	}, "127.0.0.1")

	appErr, ok := apperrors.As(err)
	if !ok {
		t.Fatalf("error is not an AppError: %v", err)
	}
	if appErr.HTTPStatus != 429 {
		t.Errorf("status = %d, want 429", appErr.HTTPStatus)
	}
	if appErr.RetryAfter != 10*time.Minute {
		t.Errorf("RetryAfter = %v, want 10m", appErr.RetryAfter)
	}
	// The limiter fires before any CAPTCHA work is spent.
	if h.captcha.called != 0 {
		t.Errorf("captcha called %d times before rate limit, want 0", h.captcha.called)
	}
}

func TestRequestPasswordRecovery_CaptchaFailure(t *testing.T) {
	h := newHarness(t)
	h.captcha.ok = false

	err := h.uc.RequestPasswordRecovery(context.Background(), models.ForgotPasswordRequest{
		Email:        "alice@example.com",
		CaptchaToken: "bad-token",
	}, "127.0.0.1")

	appErr, ok := apperrors.As(err)
	if !ok || appErr.HTTPStatus != 400 {
		t.Fatalf("captcha failure error = %v, want 400", err)
	}
}

func TestRequestPasswordRecovery_NoCaptchaTokenSkipsVerification(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "alice", "alice@example.com", "Abc@1234")
	// A verifier that would reject anything it is asked about; it must
	// never be consulted when the client sent no token.
	h.captcha.ok = false

	if err := h.uc.RequestPasswordRecovery(context.Background(), models.ForgotPasswordRequest{
		Email: "alice@example.com",
	}, "127.0.0.1"); err != nil {
		t.Fatalf("RequestPasswordRecovery() without captcha token error = %v", err)
	}

	if h.captcha.called != 0 {
		t.Errorf("captcha consulted %d times for an absent token, want 0", h.captcha.called)
	}
	if len(h.tokens.tokens) != 1 {
		t.Errorf("tokens issued = %d, want 1", len(h.tokens.tokens))
	}
}

func TestRequestPasswordRecovery_DisabledCaptchaVerifier(t *testing.T) {
	// Wired against the real verifier with CAPTCHA switched off, the
	// default deployment shape: recovery must work with and without a
	// submitted token.
	current := time.Now()
	clock := &current
	now := func() time.Time { return *clock }

	users := &fakeUserStore{}
	tokens := newFakeTokenStore(now)
	verifier := recaptcha.NewCaptchaService(&recaptcha.Config{Enabled: false})
	uc := NewAuthUseCaseWith(users, tokens, &fakeMailer{}, verifier, &fakeLimiter{allowed: true}, testConfig())
	uc.now = now

	passwordHash, err := hash.HashPassword("Abc@1234")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	users.users = append(users.users, &models.User{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: passwordHash})
	users.nextID = 1

	if err := uc.RequestPasswordRecovery(context.Background(), models.ForgotPasswordRequest{
		Email: "alice@example.com",
	}, ""); err != nil {
		t.Errorf("recovery without captcha token error = %v, want nil", err)
	}
	if err := uc.RequestPasswordRecovery(context.Background(), models.ForgotPasswordRequest{
		Email: "alice@example.com", CaptchaToken: "client-sent-one-anyway",
	}, ""); err != nil {
		t.Errorf("recovery with captcha token error = %v, want nil", err)
	}
}

func TestRequestPasswordRecovery_EnumerationResistant(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "alice", "alice@example.com", "Abc@1234")

	// Known and unknown addresses both return nil; the handler emits one
	// constant body, so outcomes are byte-identical on the wire.
	if err := h.uc.RequestPasswordRecovery(context.Background(), models.ForgotPasswordRequest{
		Email: "alice@example.com", CaptchaToken: "tok",
	}, ""); err != nil {
		t.Errorf("known email error = %v, want nil", err)
	}
	if err := h.uc.RequestPasswordRecovery(context.Background(), models.ForgotPasswordRequest{
		Email: "stranger@example.com", CaptchaToken: "tok",
	}, ""); err != nil {
		t.Errorf("unknown email error = %v, want nil", err)
	}

	// Only the known address got a token and an email.
	if len(h.tokens.tokens) != 1 {
		t.Errorf("tokens issued = %d, want 1", len(h.tokens.tokens))
	}
	if len(h.mailer.recoveryTo) != 1 || h.mailer.recoveryTo[0] != "alice@example.com" {
		t.Errorf("recovery emails = %v", h.mailer.recoveryTo)
	}
}

func TestRequestPasswordRecovery_IssuesToken(t *testing.T) {
	h := newHarness(t)
	user := h.addUser(t, "alice", "alice@example.com", "Abc@1234")

	if err := h.uc.RequestPasswordRecovery(context.Background(), models.ForgotPasswordRequest{
		Email: "Alice@Example.com", CaptchaToken: "tok",
	}, "203.0.113.9"); err != nil {
		t.Fatalf("RequestPasswordRecovery() error = %v", err)
	}

	if len(h.tokens.tokens) != 1 {
		t.Fatalf("tokens issued = %d, want 1", len(h.tokens.tokens))
	}
	for value, token := range h.tokens.tokens {
		if token.UserID != user.ID {
			t.Errorf("token.UserID = %d, want %d", token.UserID, user.ID)
		}
		if token.IPAddress != "203.0.113.9" {
			t.Errorf("token.IPAddress = %q", token.IPAddress)
		}
		ttl := token.ExpiresAt.Sub(*h.clock)
		if ttl != time.Hour {
			t.Errorf("token TTL = %v, want 1h", ttl)
		}
		if len(h.mailer.recoveryLinks) != 1 || !strings.Contains(h.mailer.recoveryLinks[0], value) {
			t.Errorf("reset link %v does not embed the token", h.mailer.recoveryLinks)
		}
	}
}

func TestRequestPasswordRecovery_InvalidatesOlderTokens(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "alice", "alice@example.com", "Abc@1234")

	for i := 0; i < 2; i++ {
		if err := h.uc.RequestPasswordRecovery(context.Background(), models.ForgotPasswordRequest{
			Email: "alice@example.com", CaptchaToken: "tok",
		}, ""); err != nil {
			t.Fatalf("request %d error = %v", i+1, err)
		}
	}

	active := 0
	for _, token := range h.tokens.tokens {
		if token.IsActive(*h.clock) {
			active++
		}
	}
	if active != 1 {
		t.Errorf("active tokens = %d, want 1 (older tokens invalidated)", active)
	}
}

func TestRequestPasswordRecovery_SupersedesOnlyWhenActiveExist(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "alice", "alice@example.com", "Abc@1234")

	if err := h.uc.RequestPasswordRecovery(context.Background(), models.ForgotPasswordRequest{
		Email: "alice@example.com", CaptchaToken: "tok",
	}, ""); err != nil {
		t.Fatalf("first request error = %v", err)
	}
	// Nothing to supersede on the first request.
	if h.tokens.invalidateCalls != 0 {
		t.Errorf("invalidate calls after first request = %d, want 0", h.tokens.invalidateCalls)
	}

	if err := h.uc.RequestPasswordRecovery(context.Background(), models.ForgotPasswordRequest{
		Email: "alice@example.com", CaptchaToken: "tok",
	}, ""); err != nil {
		t.Fatalf("second request error = %v", err)
	}
	if h.tokens.invalidateCalls != 1 {
		t.Errorf("invalidate calls after second request = %d, want 1", h.tokens.invalidateCalls)
	}
}

func TestRequestPasswordRecovery_MailFailureSuppressed(t *testing.T) {
	h := newHarness(t)
	h.addUser(t, "alice", "alice@example.com", "Abc@1234")
	h.mailer.failRecovery = true

	if err := h.uc.RequestPasswordRecovery(context.Background(), models.ForgotPasswordRequest{
		Email: "alice@example.com", CaptchaToken: "tok",
	}, ""); err != nil {
		t.Errorf("mail failure surfaced to caller: %v", err)
	}
}

// ============================================================
// Password reset
// ============================================================

func issueToken(h *harness, userID int, ttl time.Duration) string {
	value := "reset-token-for-test"
	h.tokens.tokens[value] = &models.PasswordResetToken{
		ID:        99,
		UserID:    userID,
		Token:     value,
		ExpiresAt: h.clock.Add(ttl),
		CreatedAt: *h.clock,
	}
	return value
}

func TestResetPassword_Success(t *testing.T) {
	h := newHarness(t)
	user := h.addUser(t, "alice", "alice@example.com", "Abc@1234")
	value := issueToken(h, user.ID, time.Hour)

	if err := h.uc.ResetPassword(context.Background(), models.ResetPasswordRequest{
		Token:       value,
		NewPassword: "NewSecret@123",
	}); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}

	applied, ok := h.tokens.appliedHashes[user.ID]
	if !ok {
		t.Fatal("no password hash applied")
	}
	if !hash.VerifyPassword("NewSecret@123", applied) {
		t.Error("applied hash does not verify the new password")
	}
	if len(h.mailer.confirmTo) != 1 || h.mailer.confirmTo[0] != "alice@example.com" {
		t.Errorf("confirmation emails = %v", h.mailer.confirmTo)
	}
}

func TestResetPassword_SingleUse(t *testing.T) {
	h := newHarness(t)
	user := h.addUser(t, "alice", "alice@example.com", "Abc@1234")
	value := issueToken(h, user.ID, time.Hour)

	if err := h.uc.ResetPassword(context.Background(), models.ResetPasswordRequest{
		Token: value, NewPassword: "NewSecret@123",
	}); err != nil {
		t.Fatalf("first redemption error = %v", err)
	}

	err := h.uc.ResetPassword(context.Background(), models.ResetPasswordRequest{
		Token: value, NewPassword: "OtherSecret@456",
	})
	appErr, ok := apperrors.As(err)
	if !ok || appErr.HTTPStatus != 404 {
		t.Fatalf("second redemption error = %v, want 404", err)
	}
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	h := newHarness(t)
	user := h.addUser(t, "alice", "alice@example.com", "Abc@1234")
	value := issueToken(h, user.ID, time.Hour)

	*h.clock = h.clock.Add(61 * time.Minute)

	err := h.uc.ResetPassword(context.Background(), models.ResetPasswordRequest{
		Token: value, NewPassword: "NewSecret@123",
	})
	appErr, ok := apperrors.As(err)
	if !ok || appErr.HTTPStatus != 404 {
		t.Fatalf("expired token error = %v, want 404", err)
	}
}

func TestResetPassword_UnknownToken(t *testing.T) {
	h := newHarness(t)

	err := h.uc.ResetPassword(context.Background(), models.ResetPasswordRequest{
		Token: "never-issued", NewPassword: "NewSecret@123",
	})
	appErr, ok := apperrors.As(err)
	if !ok || appErr.HTTPStatus != 404 {
		t.Fatalf("unknown token error = %v, want 404", err)
	}
}

func TestResetPassword_DeactivatedAccountMasked(t *testing.T) {
	h := newHarness(t)
	user := h.addUser(t, "alice", "alice@example.com", "Abc@1234")
	value := issueToken(h, user.ID, time.Hour)

	// The account vanished between token issue and redemption; the
	// caller must see the same response as for any dead token.
	h.tokens.consumeErr = repository.ErrUserNotFound

	err := h.uc.ResetPassword(context.Background(), models.ResetPasswordRequest{
		Token: value, NewPassword: "NewSecret@123",
	})
	appErr, ok := apperrors.As(err)
	if !ok || appErr.HTTPStatus != 404 {
		t.Fatalf("deactivated account error = %v, want 404", err)
	}
	if appErr.Message != "Invalid or expired reset token." {
		t.Errorf("message = %q, want the generic dead-token message", appErr.Message)
	}
}

func TestResetPassword_WeakPasswordRejected(t *testing.T) {
	h := newHarness(t)
	user := h.addUser(t, "alice", "alice@example.com", "Abc@1234")
	value := issueToken(h, user.ID, time.Hour)

	// Meets the signup floor of 8 but not the reset floor of 12.
	err := h.uc.ResetPassword(context.Background(), models.ResetPasswordRequest{
		Token: value, NewPassword: "Abc@1234",
	})
	appErr, ok := apperrors.As(err)
	if !ok || appErr.HTTPStatus != 400 {
		t.Fatalf("weak password error = %v, want 400", err)
	}

	// The token must survive a failed validation attempt.
	if !h.tokens.tokens[value].IsActive(*h.clock) {
		t.Error("token consumed by a rejected request")
	}
}

func TestValidateResetToken(t *testing.T) {
	h := newHarness(t)
	user := h.addUser(t, "alice", "alice@example.com", "Abc@1234")
	value := issueToken(h, user.ID, time.Hour)

	valid, err := h.uc.ValidateResetToken(context.Background(), value)
	if err != nil || !valid {
		t.Errorf("ValidateResetToken(active) = %v, %v, want true", valid, err)
	}

	// Validation never consumes.
	valid, err = h.uc.ValidateResetToken(context.Background(), value)
	if err != nil || !valid {
		t.Errorf("ValidateResetToken(second call) = %v, %v, want true", valid, err)
	}

	valid, _ = h.uc.ValidateResetToken(context.Background(), "never-issued")
	if valid {
		t.Error("ValidateResetToken(unknown) = true, want false")
	}

	*h.clock = h.clock.Add(2 * time.Hour)
	valid, _ = h.uc.ValidateResetToken(context.Background(), value)
	if valid {
		t.Error("ValidateResetToken(expired) = true, want false")
	}
}

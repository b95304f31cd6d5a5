package models

import "time"

// User represents a user account
type User struct {
	ID           int       `json:"id" db:"Id"`
	Username     string    `json:"username" db:"Username"`
	Email        string    `json:"email" db:"Email"`
	Firstname    string    `json:"firstname" db:"Firstname"`
	Lastname     string    `json:"lastname" db:"Lastname"`
	PasswordHash string    `json:"-" db:"PasswordHash"`
	Role         string    `json:"role" db:"Role"`
	IsDeleted    bool      `json:"-" db:"IsDeleted"`
	CreatedAt    time.Time `json:"createdAt" db:"CreatedAt"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
	KeepLoggedIn    bool   `json:"keepLoggedIn"`
}

// RegisterRequest represents register request body
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Password  string `json:"password"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ForgotPasswordRequest starts the password recovery flow
type ForgotPasswordRequest struct {
	Email        string `json:"email"`
	CaptchaToken string `json:"captchaToken"`
}

// ResetPasswordRequest completes the password recovery flow
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ValidateResetTokenRequest checks a reset token without consuming it
type ValidateResetTokenRequest struct {
	Token string `json:"token"`
}

// AdminUpdateUserRequest represents admin update user request
type AdminUpdateUserRequest struct {
	ID        int    `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Role      string `json:"role"`
	Password  string `json:"password,omitempty"`
}

package validator

import (
	"regexp"
	"strings"
)

// Regex patterns
var (
	// Email pattern - RFC 5322 simplified
	EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9_+&*-]+(?:\.[a-zA-Z0-9_+&*-]+)*@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,7}$`)

	// Username pattern: 2-50 chars, letters, digits, dots, underscores, hyphens
	UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{2,50}$`)

	// Name pattern: 1-50 chars, Unicode letters, spaces, dots, hyphens, apostrophes
	NamePattern = regexp.MustCompile(`^[\p{L} .'-]{1,50}$`)

	hasUpper   = regexp.MustCompile(`[A-Z]`)
	hasLower   = regexp.MustCompile(`[a-z]`)
	hasDigit   = regexp.MustCompile(`\d`)
	hasSpecial = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// Password length floors. Replacement passwords chosen through the reset
// flow are held to a stricter minimum than signup passwords.
const (
	MinPasswordLength      = 8
	MinResetPasswordLength = 12
	MaxEmailLength         = 100
)

// IsValidEmail validates email format
func IsValidEmail(email string) bool {
	if email == "" || len(email) > MaxEmailLength {
		return false
	}
	return EmailPattern.MatchString(email)
}

// IsValidUsername validates username format
func IsValidUsername(username string) bool {
	if username == "" {
		return false
	}
	return UsernamePattern.MatchString(strings.TrimSpace(username))
}

// IsValidName validates a first or last name
func IsValidName(name string) bool {
	if name == "" {
		return false
	}
	return NamePattern.MatchString(strings.TrimSpace(name))
}

// IsValidPassword validates signup password strength: at least 8
// characters with uppercase, lowercase, digit and special character.
func IsValidPassword(password string) bool {
	return isStrongPassword(password, MinPasswordLength)
}

// IsValidResetPassword validates a replacement password chosen through
// the recovery flow: same character classes, at least 12 characters.
func IsValidResetPassword(password string) bool {
	return isStrongPassword(password, MinResetPasswordLength)
}

func isStrongPassword(password string, minLength int) bool {
	if len(password) < minLength {
		return false
	}
	return hasUpper.MatchString(password) &&
		hasLower.MatchString(password) &&
		hasDigit.MatchString(password) &&
		hasSpecial.MatchString(password)
}

// GetEmailError returns user-friendly error message for email
func GetEmailError(email string) string {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "Email is required."
	}
	if len(trimmed) > MaxEmailLength {
		return "Email must not exceed 100 characters."
	}
	if !IsValidEmail(trimmed) {
		return "Email is not valid. Example: user@example.com"
	}
	return ""
}

// GetUsernameError returns user-friendly error message for username
func GetUsernameError(username string) string {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return "Username is required."
	}
	if len(trimmed) < 2 {
		return "Username must be at least 2 characters."
	}
	if len(trimmed) > 50 {
		return "Username must not exceed 50 characters."
	}
	if !IsValidUsername(trimmed) {
		return "Username may only contain letters, digits, dots, underscores and hyphens."
	}
	return ""
}

// GetPasswordError returns user-friendly error message for a signup password
func GetPasswordError(password string) string {
	return passwordError(password, MinPasswordLength)
}

// GetResetPasswordError returns user-friendly error message for a
// replacement password chosen through the recovery flow
func GetResetPasswordError(password string) string {
	return passwordError(password, MinResetPasswordLength)
}

func passwordError(password string, minLength int) string {
	if password == "" {
		return "Password is required."
	}
	if len(password) < minLength {
		if minLength == MinResetPasswordLength {
			return "Password must be at least 12 characters."
		}
		return "Password must be at least 8 characters."
	}
	if !hasUpper.MatchString(password) {
		return "Password must contain at least one uppercase letter."
	}
	if !hasLower.MatchString(password) {
		return "Password must contain at least one lowercase letter."
	}
	if !hasDigit.MatchString(password) {
		return "Password must contain at least one digit."
	}
	if !hasSpecial.MatchString(password) {
		return "Password must contain at least one special character."
	}
	return ""
}

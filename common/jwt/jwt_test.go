package jwt

import (
	"testing"
)

const (
	testSecret   = "unit-test-secret-key-0123456789abcdef"
	testIssuer   = "https://localhost:5001"
	testAudience = "https://localhost:5001"
)

func TestGenerateToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "alice", "alice@x.com", "User", 8, testSecret, testIssuer, testAudience)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ValidateToken(token, testSecret, testIssuer, testAudience)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %s, want alice", claims.Username)
	}
	if claims.Email != "alice@x.com" {
		t.Errorf("Email = %s, want alice@x.com", claims.Email)
	}
	if claims.Role != "User" {
		t.Errorf("Role = %s, want User", claims.Role)
	}
}

func TestGenerateToken_MissingConfig(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		issuer   string
		audience string
		wantErr  error
	}{
		{"empty secret", "", testIssuer, testAudience, ErrMissingSecretKey},
		{"empty issuer", testSecret, "", testAudience, ErrMissingIssuer},
		{"empty audience", testSecret, testIssuer, "", ErrMissingAudience},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateToken(1, "u", "u@x.com", "User", 8, tt.secret, tt.issuer, tt.audience)
			if err != tt.wantErr {
				t.Errorf("GenerateToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateToken_Tampered(t *testing.T) {
	token, err := GenerateToken(7, "bob", "bob@x.com", "User", 8, testSecret, testIssuer, testAudience)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name     string
		secret   string
		issuer   string
		audience string
	}{
		{"wrong secret", "another-secret-key-entirely-aaaaaaaa", testIssuer, testAudience},
		{"wrong issuer", testSecret, "https://evil.example.com", testAudience},
		{"wrong audience", testSecret, testIssuer, "https://evil.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateToken(token, tt.secret, tt.issuer, tt.audience); err == nil {
				t.Error("ValidateToken() should fail")
			}
		})
	}
}

func TestValidateToken_Expired(t *testing.T) {
	// Negative expiration yields an already-expired token.
	token, err := GenerateToken(7, "bob", "bob@x.com", "User", -1, testSecret, testIssuer, testAudience)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := ValidateToken(token, testSecret, testIssuer, testAudience); err == nil {
		t.Error("ValidateToken() should reject an expired token")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	if _, err := ValidateToken("not.a.token", testSecret, testIssuer, testAudience); err == nil {
		t.Error("ValidateToken() should reject garbage input")
	}
}

package recaptcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestVerify_EmptyToken(t *testing.T) {
	// Empty tokens fail regardless of configuration, even when the
	// subsystem is disabled.
	configs := []*Config{
		{Enabled: false},
		{Enabled: true, SecretKey: "test-secret-key", VerifyURL: "http://127.0.0.1:1", Timeout: time.Second},
	}

	for _, cfg := range configs {
		service := NewCaptchaService(cfg)
		if service.Validate(context.Background(), "   ", "127.0.0.1") {
			t.Errorf("Validate() should reject blank token (enabled=%v)", cfg.Enabled)
		}
	}
}

func TestVerify_Disabled(t *testing.T) {
	service := NewCaptchaService(&Config{Enabled: false})

	result := service.Verify(context.Background(), "any-token", "127.0.0.1")
	if !result.Valid {
		t.Error("Verify() should pass when CAPTCHA is disabled")
	}
}

func TestVerify_MissingSecretFailsOpen(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty secret", ""},
		{"placeholder secret", PlaceholderSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewCaptchaService(&Config{Enabled: true, SecretKey: tt.secret})
			result := service.Verify(context.Background(), "some-token", "127.0.0.1")
			if !result.Valid {
				t.Error("Verify() should fail open on missing secret configuration")
			}
		})
	}
}

func TestVerify_MockSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		if r.FormValue("secret") != "test-secret-key" {
			t.Errorf("secret = %q", r.FormValue("secret"))
		}
		if r.FormValue("response") != "valid-token" {
			t.Errorf("response = %q", r.FormValue("response"))
		}
		json.NewEncoder(w).Encode(VerifyResponse{
			Success:  true,
			Score:    0.9,
			Hostname: "localhost",
		})
	}))
	defer server.Close()

	service := NewCaptchaService(&Config{
		Enabled:   true,
		SecretKey: "test-secret-key",
		VerifyURL: server.URL,
		MinScore:  0.5,
		Timeout:   5 * time.Second,
	})

	result := service.Verify(context.Background(), "valid-token", "127.0.0.1")
	if !result.Valid {
		t.Errorf("Verify() should pass, got error %q", result.ErrorMessage)
	}
	if result.Score != 0.9 {
		t.Errorf("score = %v, want 0.9", result.Score)
	}
}

func TestVerify_MockLowScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(VerifyResponse{Success: true, Score: 0.3})
	}))
	defer server.Close()

	service := NewCaptchaService(&Config{
		Enabled:   true,
		SecretKey: "test-secret-key",
		VerifyURL: server.URL,
		MinScore:  0.5,
		Timeout:   5 * time.Second,
	})

	if service.Validate(context.Background(), "valid-token", "") {
		t.Error("Validate() should reject score below threshold")
	}
}

func TestVerify_MockProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(VerifyResponse{
			Success:    false,
			ErrorCodes: []string{"invalid-input-response"},
		})
	}))
	defer server.Close()

	service := NewCaptchaService(&Config{
		Enabled:   true,
		SecretKey: "test-secret-key",
		VerifyURL: server.URL,
		Timeout:   5 * time.Second,
	})

	result := service.Verify(context.Background(), "bad-token", "")
	if result.Valid {
		t.Error("Verify() should fail when the provider reports success=false")
	}
	if result.ErrorMessage != "captcha token is invalid or expired" {
		t.Errorf("ErrorMessage = %q", result.ErrorMessage)
	}
}

func TestVerify_NonOKStatusFailsClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	service := NewCaptchaService(&Config{
		Enabled:   true,
		SecretKey: "test-secret-key",
		VerifyURL: server.URL,
		Timeout:   5 * time.Second,
	})

	if service.Validate(context.Background(), "token", "") {
		t.Error("Validate() should fail closed on non-OK provider status")
	}
}

func TestVerify_MalformedResponseFailsClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	service := NewCaptchaService(&Config{
		Enabled:   true,
		SecretKey: "test-secret-key",
		VerifyURL: server.URL,
		Timeout:   5 * time.Second,
	})

	if service.Validate(context.Background(), "token", "") {
		t.Error("Validate() should fail closed on unparseable response")
	}
}

func TestVerify_TransportErrorFailsClosed(t *testing.T) {
	// Nothing listens on this port.
	service := NewCaptchaService(&Config{
		Enabled:   true,
		SecretKey: "test-secret-key",
		VerifyURL: "http://127.0.0.1:1",
		Timeout:   time.Second,
	})

	if service.Validate(context.Background(), "token", "") {
		t.Error("Validate() should fail closed on transport error")
	}
}

func TestGetErrorMessage(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"missing-input-secret", "secret key is missing"},
		{"invalid-input-response", "captcha token is invalid or expired"},
		{"timeout-or-duplicate", "captcha token expired or already used"},
		{"unknown-code", "unknown-code"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := getErrorMessage(tt.code); got != tt.expected {
				t.Errorf("getErrorMessage(%s) = %s, want %s", tt.code, got, tt.expected)
			}
		})
	}
}

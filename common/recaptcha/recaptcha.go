package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goal-tracker-services/common/logger"
)

// PlaceholderSecret is the value shipped in sample configuration. A secret
// equal to it is treated the same as no secret at all.
const PlaceholderSecret = "your-recaptcha-secret-key"

// Config holds reCAPTCHA configuration
type Config struct {
	Enabled   bool    // Master switch; disabled skips verification entirely
	SecretKey string  // Server-side secret key from Google
	VerifyURL string  // Google verification URL
	MinScore  float64 // Minimum acceptable risk score (v3)
	Timeout   time.Duration
}

// DefaultConfig returns reCAPTCHA config from environment variables
func DefaultConfig() *Config {
	minScore := 0.5
	if raw := getEnv("CAPTCHA_MIN_SCORE", ""); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			minScore = parsed
		}
	}

	return &Config{
		Enabled:   getEnv("CAPTCHA_ENABLED", "false") == "true",
		SecretKey: getEnv("CAPTCHA_SECRET_KEY", ""),
		VerifyURL: getEnv("CAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
		MinScore:  minScore,
		Timeout:   10 * time.Second,
	}
}

// VerifyResponse represents Google's reCAPTCHA verification response
type VerifyResponse struct {
	Success     bool     `json:"success"`
	Score       float64  `json:"score,omitempty"` // v3 only
	Action      string   `json:"action,omitempty"`
	ChallengeTS string   `json:"challenge_ts,omitempty"`
	Hostname    string   `json:"hostname,omitempty"`
	ErrorCodes  []string `json:"error-codes,omitempty"`
}

// VerifyResult represents the verification outcome with context for logging
type VerifyResult struct {
	Valid        bool
	Score        float64
	ErrorMessage string
	RawResponse  *VerifyResponse
}

// CaptchaService verifies client-supplied CAPTCHA tokens against the
// external verification endpoint.
//
// Failure policy is deliberately asymmetric: missing configuration fails
// open (recovery flows must not hard-lock on a misconfigured deployment),
// while transport and parse errors fail closed.
type CaptchaService struct {
	config *Config
	client *http.Client
	log    *logger.Logger
}

// NewCaptchaService creates a new CAPTCHA verification service
func NewCaptchaService(config *Config) *CaptchaService {
	if config == nil {
		config = DefaultConfig()
	}
	return &CaptchaService{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		log:    logger.Default(),
	}
}

// Validate reports whether the client-supplied token passes verification.
func (s *CaptchaService) Validate(ctx context.Context, token, remoteIP string) bool {
	return s.Verify(ctx, token, remoteIP).Valid
}

// Verify checks a CAPTCHA token and returns the detailed outcome.
func (s *CaptchaService) Verify(ctx context.Context, token, remoteIP string) *VerifyResult {
	// An empty token is rejected before any configuration check; a blank
	// submission is never acceptable even when verification is bypassed.
	if strings.TrimSpace(token) == "" {
		return &VerifyResult{Valid: false, ErrorMessage: "captcha token is required"}
	}

	if !s.config.Enabled {
		s.log.Info("CAPTCHA validation skipped (disabled in configuration)")
		return &VerifyResult{Valid: true, Score: 1.0, ErrorMessage: "verification skipped"}
	}

	if s.config.SecretKey == "" || s.config.SecretKey == PlaceholderSecret {
		s.log.Warn("CAPTCHA secret key not configured, failing open")
		return &VerifyResult{Valid: true, Score: 1.0, ErrorMessage: "secret key not configured"}
	}

	data := url.Values{}
	data.Set("secret", s.config.SecretKey)
	data.Set("response", token)
	if remoteIP != "" {
		data.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.VerifyURL, strings.NewReader(data.Encode()))
	if err != nil {
		return &VerifyResult{Valid: false, ErrorMessage: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("CAPTCHA verification request failed", "error", err)
		return &VerifyResult{Valid: false, ErrorMessage: fmt.Sprintf("verification request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Error("CAPTCHA verification endpoint returned non-OK status", "status", resp.StatusCode)
		return &VerifyResult{Valid: false, ErrorMessage: fmt.Sprintf("verification endpoint status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &VerifyResult{Valid: false, ErrorMessage: fmt.Sprintf("failed to read response: %v", err)}
	}

	var verifyResp VerifyResponse
	if err := json.Unmarshal(body, &verifyResp); err != nil {
		return &VerifyResult{Valid: false, ErrorMessage: fmt.Sprintf("failed to parse response: %v", err)}
	}

	result := &VerifyResult{
		Score:       verifyResp.Score,
		RawResponse: &verifyResp,
	}

	if !verifyResp.Success {
		result.ErrorMessage = formatErrorCodes(verifyResp.ErrorCodes)
		return result
	}

	if verifyResp.Score > 0 && verifyResp.Score < s.config.MinScore {
		result.ErrorMessage = fmt.Sprintf("score too low: %.2f (minimum: %.2f)", verifyResp.Score, s.config.MinScore)
		return result
	}

	result.Valid = true
	return result
}

// formatErrorCodes converts provider error codes to a readable message
func formatErrorCodes(codes []string) string {
	if len(codes) == 0 {
		return "unknown error"
	}

	messages := make([]string, 0, len(codes))
	for _, code := range codes {
		messages = append(messages, getErrorMessage(code))
	}
	return strings.Join(messages, "; ")
}

func getErrorMessage(code string) string {
	errorMessages := map[string]string{
		"missing-input-secret":   "secret key is missing",
		"invalid-input-secret":   "secret key is invalid",
		"missing-input-response": "captcha token is missing",
		"invalid-input-response": "captcha token is invalid or expired",
		"bad-request":            "malformed verification request",
		"timeout-or-duplicate":   "captcha token expired or already used",
	}

	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return code
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goal-tracker-services/common/config"
	apperrors "github.com/goal-tracker-services/common/errors"
	"github.com/goal-tracker-services/common/jwt"
	"github.com/goal-tracker-services/common/logger"
	"github.com/goal-tracker-services/common/response"
	"github.com/goal-tracker-services/services/auth-lambda/models"
	"github.com/goal-tracker-services/services/auth-lambda/usecase"
)

var log = logger.Default()

// AuthHandler handles authentication requests
type AuthHandler struct {
	useCase *usecase.AuthUseCase
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		useCase: usecase.NewAuthUseCase(),
	}
}

// NewAuthHandlerWith creates an auth handler around an existing use case
func NewAuthHandlerWith(uc *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{useCase: uc}
}

// getClientIP extracts client IP from request headers
func getClientIP(request events.APIGatewayProxyRequest) string {
	if forwarded := request.Headers["X-Forwarded-For"]; forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if ip := request.Headers["X-Real-IP"]; ip != "" {
		return ip
	}
	return request.RequestContext.Identity.SourceIP
}

// HandleLogin handles POST /api/login
func (h *AuthHandler) HandleLogin(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.LoginRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	authResponse, err := h.useCase.Login(ctx, req)
	if err != nil {
		return errorToResponse(err)
	}

	return createSuccessResponse(http.StatusOK, authResponse)
}

// HandleRegister handles POST /api/register
func (h *AuthHandler) HandleRegister(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.RegisterRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	authResponse, err := h.useCase.Register(ctx, req)
	if err != nil {
		return errorToResponse(err)
	}

	return createSuccessResponse(http.StatusCreated, authResponse)
}

// HandleForgotPassword handles POST /api/forgot-password.
// Success is reported with one fixed message regardless of whether the
// address belongs to an account.
func (h *AuthHandler) HandleForgotPassword(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.ForgotPasswordRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	clientIP := getClientIP(request)
	if err := h.useCase.RequestPasswordRecovery(ctx, req, clientIP); err != nil {
		return errorToResponse(err)
	}

	return createMessageResponse(http.StatusOK, usecase.RecoveryAcceptedMessage)
}

// HandleResetPassword handles POST /api/reset-password
func (h *AuthHandler) HandleResetPassword(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.ResetPasswordRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.useCase.ResetPassword(ctx, req); err != nil {
		return errorToResponse(err)
	}

	return createMessageResponse(http.StatusOK, "Password has been reset. You can now sign in with your new password.")
}

// HandleValidateResetToken handles POST /api/validate-reset-token
func (h *AuthHandler) HandleValidateResetToken(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.ValidateResetTokenRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	valid, err := h.useCase.ValidateResetToken(ctx, req.Token)
	if err != nil {
		return errorToResponse(err)
	}

	return createSuccessResponse(http.StatusOK, map[string]bool{"valid": valid})
}

// ============================================================
// Admin endpoints
// ============================================================

// HandleListUsers handles GET /api/admin/users
func (h *AuthHandler) HandleListUsers(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if resp, ok := requireAdmin(request); !ok {
		return resp, nil
	}

	users, err := h.useCase.ListUsers(ctx)
	if err != nil {
		return errorToResponse(err)
	}

	return createSuccessResponse(http.StatusOK, users)
}

// HandleAdminUpdateUser handles PUT /api/admin/users
func (h *AuthHandler) HandleAdminUpdateUser(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if resp, ok := requireAdmin(request); !ok {
		return resp, nil
	}

	var req models.AdminUpdateUserRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.useCase.AdminUpdateUser(ctx, req); err != nil {
		return errorToResponse(err)
	}

	return createMessageResponse(http.StatusOK, "User updated.")
}

// HandleAdminDeleteUser handles DELETE /api/admin/users?id=N
func (h *AuthHandler) HandleAdminDeleteUser(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if resp, ok := requireAdmin(request); !ok {
		return resp, nil
	}

	userID, err := strconv.Atoi(request.QueryStringParameters["id"])
	if err != nil || userID <= 0 {
		return createErrorResponse(http.StatusBadRequest, "Missing or invalid user id")
	}

	if err := h.useCase.AdminDeleteUser(ctx, userID); err != nil {
		return errorToResponse(err)
	}

	return createMessageResponse(http.StatusOK, "User deleted.")
}

// requireAdmin checks the bearer token and role; on failure the first
// return value is the response to send.
func requireAdmin(request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, bool) {
	token := extractToken(request)
	if token == "" {
		resp, _ := createErrorResponse(http.StatusUnauthorized, "Missing authorization token")
		return resp, false
	}

	cfg := config.LoadAuthConfig()
	claims, err := jwt.ValidateToken(token, cfg.JWTSecretKey, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		resp, _ := createErrorResponse(http.StatusUnauthorized, "Invalid or expired token")
		return resp, false
	}
	if claims.Role != "Admin" {
		resp, _ := createErrorResponse(http.StatusForbidden, "Admin access required")
		return resp, false
	}

	return events.APIGatewayProxyResponse{}, true
}

// ============================================================
// Helpers
// ============================================================

func extractToken(request events.APIGatewayProxyRequest) string {
	for _, key := range []string{"Authorization", "authorization"} {
		if auth := request.Headers[key]; strings.HasPrefix(auth, "Bearer ") {
			return auth[len("Bearer "):]
		}
	}
	return ""
}

func createSuccessResponse(statusCode int, data interface{}) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    response.Headers(),
		Body:       response.SuccessResponse(data).JSON(),
	}, nil
}

func createMessageResponse(statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    response.Headers(),
		Body:       response.MessageResponse(message).JSON(),
	}, nil
}

func createErrorResponse(statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    response.Headers(),
		Body:       response.ErrorResponse(message).JSON(),
	}, nil
}

// errorToResponse maps domain errors to HTTP responses. Rate-limit
// errors additionally carry a Retry-After header in whole seconds.
func errorToResponse(err error) (events.APIGatewayProxyResponse, error) {
	appErr := apperrors.From(err)

	if appErr.HTTPStatus >= 500 {
		log.Error("request failed", "code", string(appErr.Code), "error", appErr.Error())
	}

	resp, _ := createErrorResponse(appErr.HTTPStatus, appErr.Message)
	if appErr.RetryAfter > 0 {
		seconds := int(appErr.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		resp.Headers["Retry-After"] = fmt.Sprintf("%d", seconds)
	}
	return resp, nil
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	apperrors "github.com/goal-tracker-services/common/errors"
	"github.com/goal-tracker-services/common/response"
	"github.com/goal-tracker-services/services/category-lambda/models"
	"github.com/goal-tracker-services/services/category-lambda/usecase"
)

// CategoryHandler handles goal category requests
type CategoryHandler struct {
	useCase *usecase.CategoryUseCase
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{
		useCase: usecase.NewCategoryUseCase(),
	}
}

func currentUserID(request events.APIGatewayProxyRequest) (int, bool) {
	userID, err := strconv.Atoi(request.Headers["X-User-Id"])
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

// HandleCreateCategory handles POST /api/categories
func (h *CategoryHandler) HandleCreateCategory(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, ok := currentUserID(request)
	if !ok {
		return createErrorResponse(http.StatusUnauthorized, "Authentication required")
	}

	var req models.CreateCategoryRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	category, err := h.useCase.CreateCategory(ctx, userID, req)
	if err != nil {
		return errorToResponse(err)
	}

	return createSuccessResponse(http.StatusCreated, category)
}

// HandleListCategories handles GET /api/categories
func (h *CategoryHandler) HandleListCategories(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, ok := currentUserID(request)
	if !ok {
		return createErrorResponse(http.StatusUnauthorized, "Authentication required")
	}

	categories, err := h.useCase.ListCategories(ctx, userID)
	if err != nil {
		return errorToResponse(err)
	}

	return createSuccessResponse(http.StatusOK, categories)
}

// HandleUpdateCategory handles PUT /api/categories?id=N
func (h *CategoryHandler) HandleUpdateCategory(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, ok := currentUserID(request)
	if !ok {
		return createErrorResponse(http.StatusUnauthorized, "Authentication required")
	}

	categoryID, err := strconv.Atoi(request.QueryStringParameters["id"])
	if err != nil || categoryID <= 0 {
		return createErrorResponse(http.StatusBadRequest, "Missing or invalid category id")
	}

	var req models.UpdateCategoryRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.useCase.RenameCategory(ctx, userID, categoryID, req); err != nil {
		return errorToResponse(err)
	}

	return createMessageResponse(http.StatusOK, "Category updated.")
}

// HandleDeleteCategory handles DELETE /api/categories?id=N
func (h *CategoryHandler) HandleDeleteCategory(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, ok := currentUserID(request)
	if !ok {
		return createErrorResponse(http.StatusUnauthorized, "Authentication required")
	}

	categoryID, err := strconv.Atoi(request.QueryStringParameters["id"])
	if err != nil || categoryID <= 0 {
		return createErrorResponse(http.StatusBadRequest, "Missing or invalid category id")
	}

	if err := h.useCase.DeleteCategory(ctx, userID, categoryID); err != nil {
		return errorToResponse(err)
	}

	return createMessageResponse(http.StatusOK, "Category deleted.")
}

// Helper functions

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

func errorToResponse(err error) (events.APIGatewayProxyResponse, error) {
	appErr := apperrors.From(err)
	return createErrorResponse(appErr.HTTPStatus, appErr.Message)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	apperrors "github.com/goal-tracker-services/common/errors"
	"github.com/goal-tracker-services/common/response"
	"github.com/goal-tracker-services/services/goal-lambda/models"
	"github.com/goal-tracker-services/services/goal-lambda/usecase"
)

// GoalHandler handles goal requests
type GoalHandler struct {
	useCase *usecase.GoalUseCase
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler() *GoalHandler {
	return &GoalHandler{
		useCase: usecase.NewGoalUseCase(),
	}
}

// currentUserID reads the user id set by the gateway auth layer. A
// missing header means the request never passed authentication.
func currentUserID(request events.APIGatewayProxyRequest) (int, bool) {
	userID, err := strconv.Atoi(request.Headers["X-User-Id"])
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

// HandleCreateGoal handles POST /api/goals
func (h *GoalHandler) HandleCreateGoal(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, ok := currentUserID(request)
	if !ok {
		return createErrorResponse(http.StatusUnauthorized, "Authentication required")
	}

	var req models.CreateGoalRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	goal, err := h.useCase.CreateGoal(ctx, userID, req)
	if err != nil {
		return errorToResponse(err)
	}

	return createSuccessResponse(http.StatusCreated, goal)
}

// HandleGetGoal handles GET /api/goals?id=N
func (h *GoalHandler) HandleGetGoal(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, ok := currentUserID(request)
	if !ok {
		return createErrorResponse(http.StatusUnauthorized, "Authentication required")
	}

	goalID, err := strconv.Atoi(request.QueryStringParameters["id"])
	if err != nil || goalID <= 0 {
		return createErrorResponse(http.StatusBadRequest, "Missing or invalid goal id")
	}

	goal, err := h.useCase.GetGoal(ctx, userID, goalID)
	if err != nil {
		return errorToResponse(err)
	}

	return createSuccessResponse(http.StatusOK, goal)
}

// HandleListGoals handles GET /api/goals with pagination and filters
func (h *GoalHandler) HandleListGoals(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, ok := currentUserID(request)
	if !ok {
		return createErrorResponse(http.StatusUnauthorized, "Authentication required")
	}

	q := models.ListGoalsQuery{
		Status: request.QueryStringParameters["status"],
	}
	if raw := request.QueryStringParameters["page"]; raw != "" {
		q.Page, _ = strconv.Atoi(raw)
	}
	if raw := request.QueryStringParameters["pageSize"]; raw != "" {
		q.PageSize, _ = strconv.Atoi(raw)
	}
	if raw := request.QueryStringParameters["categoryId"]; raw != "" {
		if categoryID, err := strconv.Atoi(raw); err == nil {
			q.CategoryID = &categoryID
		}
	}

	page, err := h.useCase.ListGoals(ctx, userID, q)
	if err != nil {
		return errorToResponse(err)
	}

	return createSuccessResponse(http.StatusOK, page)
}

// HandleUpdateGoal handles PUT /api/goals?id=N
func (h *GoalHandler) HandleUpdateGoal(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, ok := currentUserID(request)
	if !ok {
		return createErrorResponse(http.StatusUnauthorized, "Authentication required")
	}

	goalID, err := strconv.Atoi(request.QueryStringParameters["id"])
	if err != nil || goalID <= 0 {
		return createErrorResponse(http.StatusBadRequest, "Missing or invalid goal id")
	}

	var req models.UpdateGoalRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return createErrorResponse(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.useCase.UpdateGoal(ctx, userID, goalID, req); err != nil {
		return errorToResponse(err)
	}

	return createMessageResponse(http.StatusOK, "Goal updated.")
}

// HandleDeleteGoal handles DELETE /api/goals?id=N
func (h *GoalHandler) HandleDeleteGoal(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, ok := currentUserID(request)
	if !ok {
		return createErrorResponse(http.StatusUnauthorized, "Authentication required")
	}

	goalID, err := strconv.Atoi(request.QueryStringParameters["id"])
	if err != nil || goalID <= 0 {
		return createErrorResponse(http.StatusBadRequest, "Missing or invalid goal id")
	}

	if err := h.useCase.DeleteGoal(ctx, userID, goalID); err != nil {
		return errorToResponse(err)
	}

	return createMessageResponse(http.StatusOK, "Goal deleted.")
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

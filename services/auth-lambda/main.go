package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/goal-tracker-services/common/db"
	"github.com/goal-tracker-services/services/auth-lambda/handler"
)

var authHandler *handler.AuthHandler

func init() {
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	authHandler = handler.NewAuthHandler()
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := request.Path
	method := request.HTTPMethod

	switch {
	case path == "/api/login" && method == "POST":
		return authHandler.HandleLogin(ctx, request)

	case path == "/api/register" && method == "POST":
		return authHandler.HandleRegister(ctx, request)

	case path == "/api/forgot-password" && method == "POST":
		return authHandler.HandleForgotPassword(ctx, request)

	case path == "/api/reset-password" && method == "POST":
		return authHandler.HandleResetPassword(ctx, request)

	case path == "/api/validate-reset-token" && method == "POST":
		return authHandler.HandleValidateResetToken(ctx, request)

	case path == "/api/admin/users" && method == "GET":
		return authHandler.HandleListUsers(ctx, request)

	case path == "/api/admin/users" && method == "PUT":
		return authHandler.HandleAdminUpdateUser(ctx, request)

	case path == "/api/admin/users" && method == "DELETE":
		return authHandler.HandleAdminDeleteUser(ctx, request)

	default:
		return events.APIGatewayProxyResponse{
			StatusCode: 404,
			Body:       `{"error":"Not Found"}`,
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
		}, nil
	}
}

func main() {
	lambda.Start(Handler)
}

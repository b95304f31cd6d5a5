package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/goal-tracker-services/common/db"
	"github.com/goal-tracker-services/services/goal-lambda/handler"
)

var goalHandler *handler.GoalHandler

func init() {
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	goalHandler = handler.NewGoalHandler()
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := request.Path
	method := request.HTTPMethod

	switch {
	case path == "/api/goals" && method == "POST":
		return goalHandler.HandleCreateGoal(ctx, request)

	case path == "/api/goals" && method == "GET":
		// A concrete id selects one goal, otherwise list with filters.
		if request.QueryStringParameters["id"] != "" {
			return goalHandler.HandleGetGoal(ctx, request)
		}
		return goalHandler.HandleListGoals(ctx, request)

	case path == "/api/goals" && method == "PUT":
		return goalHandler.HandleUpdateGoal(ctx, request)

	case path == "/api/goals" && method == "DELETE":
		return goalHandler.HandleDeleteGoal(ctx, request)

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

package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/goal-tracker-services/common/db"
	"github.com/goal-tracker-services/services/category-lambda/handler"
)

var categoryHandler *handler.CategoryHandler

func init() {
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	categoryHandler = handler.NewCategoryHandler()
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := request.Path
	method := request.HTTPMethod

	switch {
	case path == "/api/categories" && method == "POST":
		return categoryHandler.HandleCreateCategory(ctx, request)

	case path == "/api/categories" && method == "GET":
		return categoryHandler.HandleListCategories(ctx, request)

	case path == "/api/categories" && method == "PUT":
		return categoryHandler.HandleUpdateCategory(ctx, request)

	case path == "/api/categories" && method == "DELETE":
		return categoryHandler.HandleDeleteCategory(ctx, request)

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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/goal-tracker-services/common/config"
	"github.com/goal-tracker-services/common/db"
	"github.com/goal-tracker-services/common/jwt"
	"github.com/goal-tracker-services/common/logger"
	"github.com/goal-tracker-services/common/scheduler"
	authHandler "github.com/goal-tracker-services/services/auth-lambda/handler"
	categoryHandler "github.com/goal-tracker-services/services/category-lambda/handler"
	goalHandler "github.com/goal-tracker-services/services/goal-lambda/handler"
)

// Adapter converts http.Request to APIGatewayProxyRequest
func adaptRequest(r *http.Request) (events.APIGatewayProxyRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}
	defer r.Body.Close()

	// Convert headers to map[string]string
	headers := make(map[string]string)
	for key, values := range r.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	// Convert query parameters
	queryParams := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			queryParams[key] = values[0]
		}
	}

	sourceIP := r.RemoteAddr
	if host, _, splitErr := net.SplitHostPort(r.RemoteAddr); splitErr == nil {
		sourceIP = host
	}

	return events.APIGatewayProxyRequest{
		HTTPMethod:            r.Method,
		Path:                  r.URL.Path,
		Headers:               headers,
		QueryStringParameters: queryParams,
		Body:                  string(body),
		RequestContext: events.APIGatewayProxyRequestContext{
			Identity: events.APIGatewayRequestIdentity{
				SourceIP: sourceIP,
			},
		},
	}, nil
}

// writeResponse writes APIGatewayProxyResponse to http.ResponseWriter
func writeResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) int {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	w.Write([]byte(resp.Body))
	return resp.StatusCode
}

// lambdaFunc is the signature every service handler method shares.
type lambdaFunc func(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// dispatch adapts the request, invokes the handler, and writes an
// access-log line with a per-request ID.
func dispatch(w http.ResponseWriter, r *http.Request, fn lambdaFunc) {
	start := time.Now()
	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)

	req, err := adaptRequest(r)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}

	resp, err := fn(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	clientIP := req.Headers["X-Forwarded-For"]
	if clientIP == "" {
		clientIP = req.RequestContext.Identity.SourceIP
	}

	status := writeResponse(w, resp)
	logger.Default().LogRequest(logger.RequestLog{
		Method:    r.Method,
		Path:      r.URL.Path,
		Status:    status,
		Duration:  time.Since(start),
		ClientIP:  clientIP,
		RequestID: requestID,
	})
}

// corsMiddleware handles CORS preflight requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// authMiddleware extracts user info from JWT and adds it to request
// headers so handlers can read X-User-Id / X-User-Role.
func authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		// A stale identity header from the client must never survive.
		r.Header.Del("X-User-Id")
		r.Header.Del("X-User-Role")

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			cfg := config.LoadAuthConfig()
			claims, err := jwt.ValidateToken(authHeader[7:], cfg.JWTSecretKey, cfg.JWTIssuer, cfg.JWTAudience)
			if err != nil {
				logger.Warn("token validation failed", "error", err)
			}
			if claims != nil {
				r.Header.Set("X-User-Id", fmt.Sprintf("%d", claims.UserID))
				r.Header.Set("X-User-Role", claims.Role)
			}
		}

		next(w, r)
	})
}

func main() {
	// Load environment from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	log.Println("Connecting to MySQL database...")
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.CloseDB()
	log.Println("Database connected successfully!")

	// Create handlers
	authH := authHandler.NewAuthHandler()
	goalH := goalHandler.NewGoalHandler()
	categoryH := categoryHandler.NewCategoryHandler()

	// ======================= AUTH ROUTES =======================
	http.HandleFunc("/api/login", corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		dispatch(w, r, authH.HandleLogin)
	}))

	http.HandleFunc("/api/register", corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		dispatch(w, r, authH.HandleRegister)
	}))

	http.HandleFunc("/api/forgot-password", corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		dispatch(w, r, authH.HandleForgotPassword)
	}))

	http.HandleFunc("/api/reset-password", corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		dispatch(w, r, authH.HandleResetPassword)
	}))

	http.HandleFunc("/api/validate-reset-token", corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		dispatch(w, r, authH.HandleValidateResetToken)
	}))

	// /api/admin/users - GET/PUT/DELETE (Admin user management)
	http.HandleFunc("/api/admin/users", authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			dispatch(w, r, authH.HandleListUsers)
		case http.MethodPut:
			dispatch(w, r, authH.HandleAdminUpdateUser)
		case http.MethodDelete:
			dispatch(w, r, authH.HandleAdminDeleteUser)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// ======================= GOAL ROUTES =======================
	http.HandleFunc("/api/goals", authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			dispatch(w, r, goalH.HandleCreateGoal)
		case http.MethodGet:
			if r.URL.Query().Get("id") != "" {
				dispatch(w, r, goalH.HandleGetGoal)
			} else {
				dispatch(w, r, goalH.HandleListGoals)
			}
		case http.MethodPut:
			dispatch(w, r, goalH.HandleUpdateGoal)
		case http.MethodDelete:
			dispatch(w, r, goalH.HandleDeleteGoal)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// ======================= CATEGORY ROUTES =======================
	http.HandleFunc("/api/categories", authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			dispatch(w, r, categoryH.HandleCreateCategory)
		case http.MethodGet:
			dispatch(w, r, categoryH.HandleListCategories)
		case http.MethodPut:
			dispatch(w, r, categoryH.HandleUpdateCategory)
		case http.MethodDelete:
			dispatch(w, r, categoryH.HandleDeleteCategory)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// ======================= HEALTH CHECK =======================
	http.HandleFunc("/health", corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))

	// ======================= START SCHEDULER =======================
	// Purge expired and long-used reset tokens every hour.
	tokenCleanup := scheduler.NewResetTokenCleanupScheduler(60)
	tokenCleanup.Start()
	defer tokenCleanup.Stop()
	log.Println("Reset token cleanup scheduler started (runs every 60 minutes)")

	port := getEnv("PORT", "8080")
	fmt.Printf("\n========================================\n")
	fmt.Printf("Goal Tracker backend running on http://localhost:%s\n", port)
	fmt.Printf("========================================\n")
	fmt.Printf("Available endpoints:\n")
	fmt.Printf("\nAuth Service:\n")
	fmt.Printf("  POST /api/login\n")
	fmt.Printf("  POST /api/register\n")
	fmt.Printf("  POST /api/forgot-password\n")
	fmt.Printf("  POST /api/reset-password\n")
	fmt.Printf("  POST /api/validate-reset-token\n")
	fmt.Printf("  GET/PUT/DELETE /api/admin/users\n")
	fmt.Printf("\nGoal Service:\n")
	fmt.Printf("  GET/POST/PUT/DELETE /api/goals\n")
	fmt.Printf("\nCategory Service:\n")
	fmt.Printf("  GET/POST/PUT/DELETE /api/categories\n")
	fmt.Printf("\nHealth:\n")
	fmt.Printf("  GET  /health\n")
	fmt.Printf("========================================\n\n")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

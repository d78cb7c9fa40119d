package rest

import (
	"net/http"
	"os"

	"impostorhunt/internal/logging"
	"impostorhunt/internal/service"
	"impostorhunt/internal/transport/rest/handler"
	"impostorhunt/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService *service.AuthService
	GameService *service.GameService
	Logger      *zap.SugaredLogger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	gameHandler := handler.NewGameHandler(c.GameService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)
	r.Use(loggerMiddleware(c.Logger))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/guest", authHandler.GuestLogin).Methods("POST", "OPTIONS")
	v1.HandleFunc("/models", gameHandler.Models).Methods("GET", "OPTIONS")
	v1.HandleFunc("/games", gameHandler.List).Methods("GET", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/games", gameHandler.Create).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}", gameHandler.Get).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/join", gameHandler.Join).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/start", gameHandler.Start).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/submit-answer", gameHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/vote", gameHandler.Vote).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/tally-answers", gameHandler.TallyAnswers).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/tally-votes", gameHandler.TallyVotes).Methods("POST", "OPTIONS")

	return r
}

// loggerMiddleware puts the process logger on every request context so
// handlers and services share one structured logger.
func loggerMiddleware(logger *zap.SugaredLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger != nil {
				r = r.WithContext(logging.WithLogger(r.Context(), logger))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

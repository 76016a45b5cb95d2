package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/fairvalue/internal/api/handlers"
	"github.com/wonny/fairvalue/pkg/logger"
)

// NewRouter creates and configures the HTTP router. All routing lives here.
func NewRouter(
	valuationHandler *handlers.ValuationHandler,
	searchHandler *handlers.SearchHandler,
	batchHandler *handlers.BatchHandler,
	runsHandler *handlers.RunsHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Single-ticker valuation
	api.HandleFunc("/valuation/{symbol}", valuationHandler.GetSnapshot).Methods("GET")

	// Symbol search
	api.HandleFunc("/search", searchHandler.Search).Methods("GET")

	// Batch scoring
	api.HandleFunc("/batch/score", batchHandler.Score).Methods("POST")
	api.HandleFunc("/batch/stream", batchHandler.Stream).Methods("GET")

	// Run history (404s politely when persistence is disabled)
	api.HandleFunc("/batch/runs", runsHandler.ListRuns).Methods("GET")
	api.HandleFunc("/batch/runs/{id}", runsHandler.GetRun).Methods("GET")

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "fairvalue-api",
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	u "github.com/riteshkumar/scheduled-transfers/internal/utils"
)

// APIPrefix is the path prefix of all transfer and account routes.
const APIPrefix = "/api"

const requestIDHeader = "X-Request-ID"

// NewRouter mounts the handlers under APIPrefix and adds /health. Request ids
// and access logging wrap the whole router so unmatched routes get them too.
func NewRouter(transferHandler *TransferHandler, accountHandler *AccountHandler, logger *slog.Logger) http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix(APIPrefix).Subrouter()
	transferHandler.RegisterRoutes(api)
	accountHandler.RegisterRoutes(api)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		u.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	return requestIDMiddleware(loggingMiddleware(logger)(router))
}

// requestIDMiddleware keeps a caller supplied X-Request-ID or generates one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
			r.Header.Set(requestIDHeader, requestID)
		}
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs incoming HTTP requests
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info("incoming request",
				"request_id", r.Header.Get(requestIDHeader),
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"expensetracker/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	// HeaderRequestID carries the request ID back to the client.
	HeaderRequestID = "X-Request-ID"
)

// Middleware tags each request with an ID and logs its start and completion
// through the request logger found in the context.
func Middleware(extractIP func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			clientIP := ""
			if extractIP != nil {
				clientIP = extractIP(r)
			}

			requestID := GenerateRequestID()
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			r = r.WithContext(ctx)
			w.Header().Set(HeaderRequestID, requestID)

			logger := log.FromContext(ctx).WithComponent(log.ComponentHTTP)
			logger.InfoContext(ctx, "HTTP request started",
				log.FieldRequestID, requestID,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldQuery, r.URL.RawQuery,
				log.FieldClientIP, clientIP,
				"user_agent", r.Header.Get("User-Agent"))

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			args := []any{
				log.FieldRequestID, requestID,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldStatusCode, rw.statusCode,
				log.FieldDuration, duration.Milliseconds(),
				log.FieldClientIP, clientIP,
				log.FieldSuccess, rw.statusCode < 400,
			}

			// Use appropriate log level based on status code
			switch {
			case rw.statusCode >= 500:
				logger.ErrorContext(ctx, "HTTP request completed", args...)
			case rw.statusCode >= 400:
				logger.WarnContext(ctx, "HTTP request completed", args...)
			default:
				logger.InfoContext(ctx, "HTTP request completed", args...)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

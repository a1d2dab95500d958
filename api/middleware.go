package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"gaznger/auth"
	"gaznger/metrics"
)

type contextKey string

const userIDKey contextKey = "userID"

// requireAuth verifies the Bearer access token and stores the caller's user
// ID in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}

		userID, err := s.tokens.Verify(token, auth.TokenKindAccess)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid access token"})
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerID returns the authenticated user's ID from the request context.
func callerID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		class := strconv.Itoa(rec.status/100) + "xx"
		metrics.HTTPRequests.WithLabelValues(r.Method, class).Inc()
	})
}

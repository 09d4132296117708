package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/benvon/card-collection/internal/request"
	"github.com/rs/cors"
)

// DefaultFrontendOrigin is allowed when no origin is configured
const DefaultFrontendOrigin = "http://localhost:3000"

// AllowedOrigins parses a comma-separated origin list, dropping blanks and duplicates
func AllowedOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		s := strings.TrimSpace(part)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{DefaultFrontendOrigin}
	}
	return out
}

// CORS creates CORS middleware for the origins in frontendURL (comma-separated)
func CORS(frontendURL string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: AllowedOrigins(frontendURL),
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", request.VisitorIDHeader, request.RequestIDHeader},
		ExposedHeaders: []string{
			request.RequestIDHeader,
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		MaxAge: 86400,
	})
	return c.Handler
}

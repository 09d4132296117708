package middleware

import (
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout bounds a single API request
	DefaultRequestTimeout = 15 * time.Second
)

const timeoutBody = `{"success":false,"error":"Request Timeout","message":"The request took too long to process"}`

// Timeout cancels the request context after timeout and answers with a JSON 503
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		// TimeoutHandler derives the deadline context itself
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}

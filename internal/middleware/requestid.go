package middleware

import (
	"net/http"
	"regexp"

	"github.com/benvon/card-collection/internal/request"
	"github.com/google/uuid"
)

var incomingRequestID = regexp.MustCompile(`^[A-Za-z0-9-]{8,64}$`)

// RequestID tags every request with an id, reusing a well-formed incoming X-Request-ID
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(request.RequestIDHeader)
		if !incomingRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set(request.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(request.WithRequestID(r.Context(), id)))
	})
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		path          string
		handlerStatus int
		wantLevel     zapcore.Level
		wantQuery     string
	}{
		{"ok request", "/api/v1/collections/summit/cards", http.StatusOK, zapcore.InfoLevel, ""},
		{"search request", "/api/v1/collections/summit/cards?q=keynote", http.StatusOK, zapcore.InfoLevel, "keynote"},
		{"client error", "/api/v1/collections/summit/cards?sort=shuffle", http.StatusBadRequest, zapcore.WarnLevel, ""},
		{"not found", "/notfound", http.StatusNotFound, zapcore.WarnLevel, ""},
		{"server error", "/boom", http.StatusInternalServerError, zapcore.ErrorLevel, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.DebugLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})

			w := httptest.NewRecorder()
			RequestID(Logging(zap.New(core))(handler)).ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))

			if w.Code != tt.handlerStatus {
				t.Errorf("Expected status %d, got %d", tt.handlerStatus, w.Code)
			}

			entries := logs.FilterMessage("http_request").All()
			if len(entries) != 1 {
				t.Fatalf("Expected one http_request entry, got %d", len(entries))
			}
			entry := entries[0]
			if entry.Level != tt.wantLevel {
				t.Errorf("Expected level %s, got %s", tt.wantLevel, entry.Level)
			}
			fields := entry.ContextMap()
			if fields["status_code"] != int64(tt.handlerStatus) {
				t.Errorf("Expected status_code %d, got %v", tt.handlerStatus, fields["status_code"])
			}
			if fields["request_id"] == "" {
				t.Error("Expected request_id to be logged")
			}
			if tt.wantQuery != "" && fields["query"] != tt.wantQuery {
				t.Errorf("Expected query %q, got %v", tt.wantQuery, fields["query"])
			}
		})
	}
}

package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		requestHeader  string
		expectedStatus int
		expectedError  string
		logged         bool
	}{
		{
			name:           "valid API key",
			requestHeader:  "test-key",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing API key header",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Missing X-API-Key header",
			logged:         true,
		},
		{
			name:           "invalid API key",
			requestHeader:  "wrong-key",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid API key",
			logged:         true,
		},
		{
			name:           "key prefix",
			requestHeader:  "test",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid API key",
			logged:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, nil))
			server := NewServer(nil, ServerConfig{APIKey: "test-key"}, nil, logger)
			handler := middleware.RequestID(server.requireAPIKey(testHandler))

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.requestHeader != "" {
				req.Header.Set("X-API-Key", tt.requestHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				var response APIResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.False(t, response.Success)
				assert.Equal(t, tt.expectedError, response.Error)
			}

			if tt.logged {
				assert.Contains(t, logs.String(), "request rejected")
				assert.Contains(t, logs.String(), tt.expectedError)
				assert.Contains(t, logs.String(), "path=/test")
				assert.Regexp(t, `request_id=\S+`, logs.String())
			} else {
				assert.Empty(t, logs.String())
			}
		})
	}
}

func TestSendHelpers(t *testing.T) {
	tests := []struct {
		name       string
		send       func(w http.ResponseWriter)
		statusCode int
		success    bool
	}{
		{"success", func(w http.ResponseWriter) { sendSuccess(w, map[string]string{"message": "test"}) }, http.StatusOK, true},
		{"created", func(w http.ResponseWriter) { sendCreated(w, "id") }, http.StatusCreated, true},
		{"bad request", func(w http.ResponseWriter) { sendError(w, "Invalid request", http.StatusBadRequest) }, http.StatusBadRequest, false},
		{"internal error", func(w http.ResponseWriter) { sendError(w, "Server error", http.StatusInternalServerError) }, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.send(w)

			assert.Equal(t, tt.statusCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var response APIResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.success, response.Success)
		})
	}
}

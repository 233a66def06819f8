package token

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	libjwt "github.com/kirillsaykov/lookup-gate/internal/lib/jwt"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestTokenHandler(t *testing.T) {
	maker := libjwt.NewMaker("test-secret", time.Hour)

	tests := []struct {
		name            string
		bootstrapSecret string
		body            string
		expectedStatus  int
		expectedBody    string
	}{
		{
			name:            "success",
			bootstrapSecret: "s3cret",
			body:            `{"name":"ops","secret":"s3cret"}`,
			expectedStatus:  http.StatusOK,
			expectedBody:    `"token"`,
		},
		{
			name:            "wrong secret",
			bootstrapSecret: "s3cret",
			body:            `{"name":"ops","secret":"nope"}`,
			expectedStatus:  http.StatusUnauthorized,
			expectedBody:    `"unauthorized"`,
		},
		{
			name:            "empty configured secret always denies",
			bootstrapSecret: "",
			body:            `{"name":"ops","secret":"anything"}`,
			expectedStatus:  http.StatusUnauthorized,
			expectedBody:    `"unauthorized"`,
		},
		{
			name:            "missing name",
			bootstrapSecret: "s3cret",
			body:            `{"secret":"s3cret"}`,
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedBody:    `field Name is a required field`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := New(newNoopLogger(), maker, tt.bootstrapSecret)

			req := httptest.NewRequest(http.MethodPost, "/admin/token", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

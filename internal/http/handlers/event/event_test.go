package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kirillsaykov/lookup-gate/internal/models"
	"github.com/kirillsaykov/lookup-gate/internal/storage"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) HandleLookup(ctx context.Context, event models.LookupRequested) (*models.OutboundMessage, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OutboundMessage), args.Error(1)
}

type UsersMock struct{ mock.Mock }

func (m *UsersMock) Get(id string) (*models.UserRecord, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserRecord), args.Error(1)
}

func (m *UsersMock) Update(id string, patch storage.Patch) error {
	return m.Called(id, patch).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestEventHandler(t *testing.T) {
	reply := &models.OutboundMessage{MessageID: "m1", ChatID: "42", Text: "ok", ParseMode: "HTML"}

	tests := []struct {
		name           string
		body           string
		setupMocks     func(s *ServiceMock, u *UsersMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "bare number lookup",
			body: `{"user_id":"42","text":"9876543210","display_name":"Alice"}`,
			setupMocks: func(s *ServiceMock, u *UsersMock) {
				u.On("Get", "42").Return(&models.UserRecord{ID: "42"}, nil).Once()
				u.On("Update", "42", mock.MatchedBy(func(p storage.Patch) bool {
					return p.DisplayName != nil && *p.DisplayName == "Alice"
				})).Return(nil).Once()
				s.On("HandleLookup", mock.Anything, models.LookupRequested{
					UserID: "42", QueryKey: "9876543210", DisplayName: "Alice",
				}).Return(reply, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"message_id":"m1"`,
		},
		{
			name: "explicit lookup command",
			body: `{"user_id":"42","text":"/lookup 9876543210"}`,
			setupMocks: func(s *ServiceMock, u *UsersMock) {
				u.On("Get", "42").Return(&models.UserRecord{ID: "42"}, nil).Once()
				s.On("HandleLookup", mock.Anything, models.LookupRequested{
					UserID: "42", QueryKey: "9876543210",
				}).Return(reply, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name: "rate limited silent drop",
			body: `{"user_id":"42","text":"9876543210"}`,
			setupMocks: func(s *ServiceMock, u *UsersMock) {
				u.On("Get", "42").Return(&models.UserRecord{ID: "42"}, nil).Once()
				s.On("HandleLookup", mock.Anything, mock.Anything).Return(nil, nil).Once()
			},
			expectedStatus: http.StatusNoContent,
			expectedBody:   "",
		},
		{
			name:           "invalid json",
			body:           `{broken`,
			setupMocks:     func(_ *ServiceMock, _ *UsersMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid request body"`,
		},
		{
			name:           "missing user id",
			body:           `{"text":"9876543210"}`,
			setupMocks:     func(_ *ServiceMock, _ *UsersMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field UserID is a required field`,
		},
		{
			name:           "query key too short",
			body:           `{"user_id":"42","text":"98765"}`,
			setupMocks:     func(_ *ServiceMock, _ *UsersMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `10-digit number`,
		},
		{
			name:           "query key with bad first digit",
			body:           `{"user_id":"42","text":"1876543210"}`,
			setupMocks:     func(_ *ServiceMock, _ *UsersMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `10-digit number`,
		},
		{
			name: "pipeline failure",
			body: `{"user_id":"42","text":"9876543210"}`,
			setupMocks: func(s *ServiceMock, u *UsersMock) {
				u.On("Get", "42").Return(&models.UserRecord{ID: "42"}, nil).Once()
				s.On("HandleLookup", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"internal error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			users := new(UsersMock)
			tt.setupMocks(service, users)

			handler := New(newNoopLogger(), service, users)
			req := httptest.NewRequest(http.MethodPost, "/webhook/event", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			service.AssertExpectations(t)
			users.AssertExpectations(t)
		})
	}
}

func TestExtractQueryKey(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{text: "9876543210", want: "9876543210", ok: true},
		{text: "  9876543210  ", want: "9876543210", ok: true},
		{text: "/lookup 9876543210", want: "9876543210", ok: true},
		{text: "/lookup   6123456789", want: "6123456789", ok: true},
		{text: "5876543210", ok: false},
		{text: "98765432100", ok: false},
		{text: "/lookup", ok: false},
		{text: "hello", ok: false},
		{text: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := extractQueryKey(tt.text)
		assert.Equal(t, tt.ok, ok, "text: %q", tt.text)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

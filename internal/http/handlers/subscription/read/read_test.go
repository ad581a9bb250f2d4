package read

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/middlewarectx"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Read(ctx context.Context, id, username string) (*models.Subscription, error) {
	args := m.Called(ctx, id, username)
	if res := args.Get(0); res != nil {
		return res.(*models.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestReadHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		username       string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "successful read",
			id:       "sub-1",
			username: "testuser",
			setupMock: func(m *MockService) {
				sub := &models.Subscription{
					ID:              "sub-1",
					Username:        "testuser",
					Name:            "Netflix",
					Amount:          15.99,
					Currency:        "USD",
					Period:          "monthly",
					NextPaymentDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				}
				m.On("Read", mock.Anything, "sub-1", "testuser").Return(sub, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Netflix"`,
		},
		{
			name:     "subscription not found",
			id:       "missing",
			username: "testuser",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, "missing", "testuser").
					Return(nil, fmt.Errorf("storage.ReadSubscription: %w", repository.ErrSubscriptionNotFound)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"subscription not found"`,
		},
		{
			name:     "storage error",
			id:       "sub-1",
			username: "testuser",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, "sub-1", "testuser").
					Return(nil, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not read subscription"`,
		},
		{
			name:           "missing username in context",
			id:             "sub-1",
			username:       "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(newNoopLogger(), mockService)

			req := httptest.NewRequest(http.MethodGet, "/subscriptions/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.username != "" {
				ctx = context.WithValue(ctx, middlewarectx.User, tt.username)
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.True(t, strings.Contains(rec.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, rec.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}

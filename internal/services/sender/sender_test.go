package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/pushclient"
)

type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) Push(ctx context.Context, serverURL, deviceKey, title, body string, opts pushclient.Options) error {
	args := m.Called(ctx, serverURL, deviceKey, title, body, opts)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSenderService_SendTestPush(t *testing.T) {
	tests := []struct {
		name      string
		message   models.TestPushRequest
		wantTitle string
		wantBody  string
		pushErr   error
		wantErr   bool
	}{
		{
			name: "successful send with explicit title and body",
			message: models.TestPushRequest{
				Username:  "testuser",
				ServerURL: "https://push.example.com",
				DeviceKey: "device123",
				Title:     "Hello",
				Body:      "World",
			},
			wantTitle: "Hello",
			wantBody:  "World",
		},
		{
			name: "defaults applied for empty title and body",
			message: models.TestPushRequest{
				Username:  "testuser",
				ServerURL: "https://push.example.com",
				DeviceKey: "device123",
			},
			wantTitle: "Subscription Management",
			wantBody:  "Test notification",
		},
		{
			name: "push error is returned for requeue",
			message: models.TestPushRequest{
				Username:  "testuser",
				ServerURL: "https://push.example.com",
				DeviceKey: "device123",
			},
			wantTitle: "Subscription Management",
			wantBody:  "Test notification",
			pushErr:   errors.New("push server unreachable"),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pusher := new(MockPusher)
			service := NewSenderService(pusher, newNoopLogger(), 10*time.Second)

			pusher.On("Push", mock.Anything, tt.message.ServerURL, tt.message.DeviceKey,
				tt.wantTitle, tt.wantBody,
				pushclient.Options{Group: "subscriptions", Sound: "default"}).
				Return(tt.pushErr).Once()

			raw, err := json.Marshal(tt.message)
			require.NoError(t, err)

			err = service.SendTestPush(raw)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			pusher.AssertExpectations(t)
		})
	}
}

func TestSenderService_SendTestPush_BadJSON(t *testing.T) {
	pusher := new(MockPusher)
	service := NewSenderService(pusher, newNoopLogger(), 10*time.Second)

	err := service.SendTestPush([]byte("{not json"))

	require.Error(t, err)
	pusher.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything)
}

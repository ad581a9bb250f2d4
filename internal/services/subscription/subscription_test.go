package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateSubscription(ctx context.Context, sub *models.Subscription) (string, error) {
	args := m.Called(ctx, sub)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) ReadSubscription(ctx context.Context, id, username string) (*models.Subscription, error) {
	args := m.Called(ctx, id, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockRepository) UpdateSubscription(ctx context.Context, sub *models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) RemoveSubscription(ctx context.Context, id, username string) (int, error) {
	args := m.Called(ctx, id, username)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ListSubscriptions(ctx context.Context, username string, limit, offset int) ([]*models.Subscription, error) {
	args := m.Called(ctx, username, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *MockRepository) UpdatePaymentDates(ctx context.Context, sub *models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

type MockRates struct {
	mock.Mock
}

func (m *MockRates) Latest(ctx context.Context, base string) (map[string]float64, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newService(repo *MockRepository, cache *MockCache, rates *MockRates) *SubscriptionService {
	return NewSubscriptionService(repo, cache, rates, 12*time.Hour, newNoopLogger())
}

func TestSubscriptionService_Create(t *testing.T) {
	tests := []struct {
		name     string
		req      models.DummySubscription
		wantNext time.Time
		wantErr  bool
	}{
		{
			name: "monthly subscription clamps month end",
			req: models.DummySubscription{
				Name:            "Netflix",
				Amount:          15.99,
				Currency:        "USD",
				Period:          "monthly",
				LastPaymentDate: "2024-01-31",
			},
			wantNext: date(2024, 2, 29),
		},
		{
			name: "custom subscription adds days",
			req: models.DummySubscription{
				Name:            "VPN",
				Amount:          5,
				Currency:        "USD",
				Period:          "custom",
				CustomDays:      30,
				LastPaymentDate: "2024-01-01",
			},
			wantNext: date(2024, 1, 31),
		},
		{
			name: "custom subscription without days",
			req: models.DummySubscription{
				Name:            "VPN",
				Amount:          5,
				Currency:        "USD",
				Period:          "custom",
				LastPaymentDate: "2024-01-01",
			},
			wantErr: true,
		},
		{
			name: "bad date format",
			req: models.DummySubscription{
				Name:            "Netflix",
				Amount:          15.99,
				Currency:        "USD",
				Period:          "monthly",
				LastPaymentDate: "31-01-2024",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			cache := new(MockCache)
			rates := new(MockRates)
			service := newService(repo, cache, rates)

			if !tt.wantErr {
				repo.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(sub *models.Subscription) bool {
					return sub.NextPaymentDate.Equal(tt.wantNext) &&
						sub.Username == "testuser" &&
						sub.NotificationEnabled &&
						sub.ID != ""
				})).Return("some-id", nil).Once()
				cache.On("Set", mock.Anything, mock.Anything, time.Hour).Return(nil).Once()
			}

			got, err := service.Create(context.Background(), "testuser", tt.req)

			if tt.wantErr {
				require.Error(t, err)
				repo.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, got.NextPaymentDate.Equal(tt.wantNext))
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_Read_CacheMiss(t *testing.T) {
	sub := &models.Subscription{
		ID:       "sub-1",
		Username: "testuser",
		Name:     "Netflix",
	}

	repo := new(MockRepository)
	cache := new(MockCache)
	rates := new(MockRates)
	service := newService(repo, cache, rates)

	cache.On("Get", "subscription:sub-1", mock.Anything).Return(false, nil).Once()
	repo.On("ReadSubscription", mock.Anything, "sub-1", "testuser").Return(sub, nil).Once()
	cache.On("Set", "subscription:sub-1", sub, time.Hour).Return(nil).Once()

	got, err := service.Read(context.Background(), "sub-1", "testuser")

	require.NoError(t, err)
	assert.Equal(t, sub, got)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSubscriptionService_Remove(t *testing.T) {
	repo := new(MockRepository)
	cache := new(MockCache)
	rates := new(MockRates)
	service := newService(repo, cache, rates)

	cache.On("Invalidate", "subscription:sub-1").Return(nil).Once()
	repo.On("RemoveSubscription", mock.Anything, "sub-1", "testuser").Return(1, nil).Once()

	count, err := service.Remove(context.Background(), "sub-1", "testuser")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSubscriptionService_List_RollsForwardStaleDates(t *testing.T) {
	stale := &models.Subscription{
		ID:              "sub-1",
		Username:        "testuser",
		Name:            "Netflix",
		Period:          "monthly",
		LastPaymentDate: date(2020, 1, 15),
		NextPaymentDate: date(2020, 2, 15),
	}
	fresh := &models.Subscription{
		ID:              "sub-2",
		Username:        "testuser",
		Name:            "Spotify",
		Period:          "yearly",
		LastPaymentDate: time.Now().UTC().AddDate(0, -1, 0),
		NextPaymentDate: time.Now().UTC().AddDate(0, 11, 0),
	}

	repo := new(MockRepository)
	cache := new(MockCache)
	rates := new(MockRates)
	service := newService(repo, cache, rates)

	repo.On("ListSubscriptions", mock.Anything, "testuser", 10, 0).
		Return([]*models.Subscription{stale, fresh}, nil).Once()
	repo.On("UpdatePaymentDates", mock.Anything, stale).Return(1, nil).Once()

	got, err := service.List(context.Background(), "testuser", 10, 0)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].NextPaymentDate.Before(time.Now().UTC().Truncate(24*time.Hour)))
	repo.AssertExpectations(t)
	// Свежая подписка не перезаписывается
	repo.AssertNumberOfCalls(t, "UpdatePaymentDates", 1)
}

func TestSubscriptionService_Sum(t *testing.T) {
	subs := []*models.Subscription{
		{ID: "sub-1", Username: "testuser", Amount: 10, Currency: "USD",
			Period: "monthly", LastPaymentDate: time.Now().UTC(), NextPaymentDate: time.Now().UTC().AddDate(0, 1, 0)},
		{ID: "sub-2", Username: "testuser", Amount: 9.2, Currency: "EUR",
			Period: "monthly", LastPaymentDate: time.Now().UTC(), NextPaymentDate: time.Now().UTC().AddDate(0, 1, 0)},
	}

	tests := []struct {
		name      string
		rates     map[string]float64
		ratesErr  error
		wantTotal float64
		wantErr   bool
	}{
		{
			name:      "converts amounts to target currency",
			rates:     map[string]float64{"USD": 1, "EUR": 0.92},
			wantTotal: 20,
		},
		{
			name:    "missing rate for currency",
			rates:   map[string]float64{"USD": 1},
			wantErr: true,
		},
		{
			name:     "rates provider error",
			ratesErr: errors.New("api unavailable"),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			cache := new(MockCache)
			rates := new(MockRates)
			service := newService(repo, cache, rates)

			repo.On("ListSubscriptions", mock.Anything, "testuser", 1000, 0).
				Return(subs, nil).Once()
			cache.On("Get", "rates:USD", mock.Anything).Return(false, nil).Once()
			if tt.ratesErr != nil {
				rates.On("Latest", mock.Anything, "USD").Return(nil, tt.ratesErr).Once()
			} else {
				rates.On("Latest", mock.Anything, "USD").Return(tt.rates, nil).Once()
				cache.On("Set", "rates:USD", tt.rates, 12*time.Hour).Return(nil).Once()
			}

			total, err := service.Sum(context.Background(), "testuser", "USD")

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantTotal, total, 0.001)
			repo.AssertExpectations(t)
			rates.AssertExpectations(t)
		})
	}
}

// Package services содержит бизнес-логику для управления подписками,
// кеширования и подсчёта расходов с конвертацией валют.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/period"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/renewal"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/sl"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription добавляет новую подписку и возвращает её ID.
	CreateSubscription(ctx context.Context, sub *models.Subscription) (string, error)
	// ReadSubscription возвращает подписку пользователя по ID.
	ReadSubscription(ctx context.Context, id, username string) (*models.Subscription, error)
	// UpdateSubscription обновляет данные подписки и возвращает количество изменённых строк.
	UpdateSubscription(ctx context.Context, sub *models.Subscription) (int, error)
	// RemoveSubscription удаляет подписку по ID и возвращает количество удалённых строк.
	RemoveSubscription(ctx context.Context, id, username string) (int, error)
	// ListSubscriptions возвращает список подписок пользователя с пагинацией.
	ListSubscriptions(ctx context.Context, username string, limit, offset int) ([]*models.Subscription, error)
	// UpdatePaymentDates сохраняет перемотанные даты платежей подписки.
	UpdatePaymentDates(ctx context.Context, sub *models.Subscription) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// RatesProvider отдаёт актуальные курсы валют относительно базовой.
type RatesProvider interface {
	Latest(ctx context.Context, base string) (map[string]float64, error)
}

// SubscriptionService реализует бизнес-логику работы с подписками.
type SubscriptionService struct {
	repo     SubscriptionRepository
	cache    Cache
	rates    RatesProvider
	ratesTTL time.Duration
	log      *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, rates RatesProvider,
	ratesTTL time.Duration, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		cache:    cache,
		rates:    rates,
		ratesTTL: ratesTTL,
		log:      log,
	}
}

// Create создает новую подписку для пользователя, вычисляет дату следующего
// списания по периоду и кеширует результат.
func (s *SubscriptionService) Create(ctx context.Context, username string, req models.DummySubscription) (*models.Subscription, error) {
	lastPayment, err := time.Parse(time.DateOnly, req.LastPaymentDate)
	if err != nil {
		return nil, fmt.Errorf("invalid last payment date: %w", err)
	}
	p, err := period.Parse(req.Period, req.CustomDays)
	if err != nil {
		return nil, err
	}
	nextPayment, err := period.Advance(lastPayment, p)
	if err != nil {
		return nil, err
	}

	notificationEnabled := true
	if req.NotificationEnabled != nil {
		notificationEnabled = *req.NotificationEnabled
	}

	sub := &models.Subscription{
		ID:                  uuid.New().String(),
		Username:            username,
		Name:                req.Name,
		Amount:              req.Amount,
		Currency:            req.Currency,
		Period:              req.Period,
		CustomDays:          req.CustomDays,
		LastPaymentDate:     lastPayment,
		NextPaymentDate:     nextPayment,
		NotificationEnabled: notificationEnabled,
	}

	if _, err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	s.log.Info("created new subscription", slog.String("id", sub.ID))

	cacheKey := fmt.Sprintf("subscription:%s", sub.ID)
	if err := s.cache.Set(cacheKey, sub, time.Hour); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return sub, nil
}

// Read возвращает подписку по ID, используя кеш или репозиторий.
func (s *SubscriptionService) Read(ctx context.Context, id, username string) (*models.Subscription, error) {
	var result *models.Subscription
	cacheKey := fmt.Sprintf("subscription:%s", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found && result != nil && result.Username == username {
		return result, nil
	}

	result, err = s.repo.ReadSubscription(ctx, id, username)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// Update обновляет подписку, пересчитывает дату следующего списания и обновляет кеш.
func (s *SubscriptionService) Update(ctx context.Context, id, username string, req models.DummySubscription) (int, error) {
	lastPayment, err := time.Parse(time.DateOnly, req.LastPaymentDate)
	if err != nil {
		return 0, fmt.Errorf("invalid last payment date: %w", err)
	}
	p, err := period.Parse(req.Period, req.CustomDays)
	if err != nil {
		return 0, err
	}
	nextPayment, err := period.Advance(lastPayment, p)
	if err != nil {
		return 0, err
	}

	notificationEnabled := true
	if req.NotificationEnabled != nil {
		notificationEnabled = *req.NotificationEnabled
	}

	sub := &models.Subscription{
		ID:                  id,
		Username:            username,
		Name:                req.Name,
		Amount:              req.Amount,
		Currency:            req.Currency,
		Period:              req.Period,
		CustomDays:          req.CustomDays,
		LastPaymentDate:     lastPayment,
		NextPaymentDate:     nextPayment,
		NotificationEnabled: notificationEnabled,
	}

	res, err := s.repo.UpdateSubscription(ctx, sub)
	if err != nil {
		return 0, err
	}
	s.log.Info("updated subscription in storage", slog.String("id", id))

	cacheKey := fmt.Sprintf("subscription:%s", id)
	if err := s.cache.Set(cacheKey, sub, time.Hour); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return res, nil
}

// Remove удаляет подписку по ID и инвалидирует кеш.
func (s *SubscriptionService) Remove(ctx context.Context, id, username string) (int, error) {
	cacheKey := fmt.Sprintf("subscription:%s", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return s.repo.RemoveSubscription(ctx, id, username)
}

// List возвращает подписки пользователя с перемотанными датами платежей.
// Устаревшие даты при чтении перематываются вперёд и явно записываются
// в хранилище, чтобы следующий читатель увидел уже актуальные значения.
func (s *SubscriptionService) List(ctx context.Context, username string, limit, offset int) ([]*models.Subscription, error) {
	subs, err := s.repo.ListSubscriptions(ctx, username, limit, offset)
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC()
	for _, sub := range subs {
		p, err := period.Parse(sub.Period, sub.CustomDays)
		if err != nil {
			s.log.Error("invalid subscription period", sl.Err(err), slog.String("id", sub.ID))
			continue
		}
		last, next, err := renewal.Resolve(sub.LastPaymentDate, sub.NextPaymentDate, p, today)
		if err != nil {
			s.log.Error("failed to resolve payment dates", sl.Err(err), slog.String("id", sub.ID))
			continue
		}
		if next.Equal(renewal.DateOnly(sub.NextPaymentDate)) {
			continue
		}
		sub.LastPaymentDate = last
		sub.NextPaymentDate = next
		if _, err := s.repo.UpdatePaymentDates(ctx, sub); err != nil {
			s.log.Error("failed to update payment dates", sl.Err(err), slog.String("id", sub.ID))
		}
	}
	return subs, nil
}

// Sum возвращает суммарную стоимость всех подписок пользователя за один
// период, приведённую к валюте target по актуальным курсам.
func (s *SubscriptionService) Sum(ctx context.Context, username, target string) (float64, error) {
	subs, err := s.List(ctx, username, 1000, 0)
	if err != nil {
		return 0, err
	}

	rates, err := s.latestRates(ctx, target)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, sub := range subs {
		rate, ok := rates[sub.Currency]
		if !ok || rate == 0 {
			return 0, fmt.Errorf("no exchange rate for currency %q", sub.Currency)
		}
		// Курс показывает, сколько единиц sub.Currency стоит одна
		// единица target, поэтому сумма делится на курс.
		total += sub.Amount / rate
	}
	return total, nil
}

// latestRates возвращает курсы валют относительно base, кешируя ответ
// внешнего API на время ratesTTL.
func (s *SubscriptionService) latestRates(ctx context.Context, base string) (map[string]float64, error) {
	cacheKey := fmt.Sprintf("rates:%s", base)

	var rates map[string]float64
	found, err := s.cache.Get(cacheKey, &rates)
	if err != nil {
		s.log.Warn("failed to read rates from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found && len(rates) > 0 {
		return rates, nil
	}

	rates, err = s.rates.Latest(ctx, base)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, rates, s.ratesTTL); err != nil {
		s.log.Warn("failed to cache rates", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return rates, nil
}

// Package services содержит планировщик push-уведомлений о продлении подписок.
//
// Планировщик обходит пользователей с включёнными напоминаниями, перематывает
// устаревшие даты платежей, решает по каждой подписке, нужно ли напоминание
// сегодня, и доставляет его через push-сервер. История отправок пишется только
// после подтверждённой доставки, поэтому сбой доставки означает повтор попытки
// на следующем запуске, а не потерянное напоминание.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/period"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/renewal"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/sl"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/metrics"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/pushclient"
)

// pushTitle — заголовок всех напоминаний о продлении.
const pushTitle = "Subscription Management"

// SchedulerRepository описывает методы хранилища, нужные планировщику.
type SchedulerRepository interface {
	// ListUsersWithNotificationsEnabled возвращает пользователей с включёнными напоминаниями.
	ListUsersWithNotificationsEnabled(ctx context.Context) ([]*models.UserSettings, error)
	// ListNotifiableSubscriptions возвращает подписки пользователя с включёнными напоминаниями.
	ListNotifiableSubscriptions(ctx context.Context, username string) ([]*models.Subscription, error)
	// UpdatePaymentDates сохраняет перемотанные даты платежей подписки.
	UpdatePaymentDates(ctx context.Context, sub *models.Subscription) (int, error)
	// SaveNotificationSettings сохраняет настройки пользователя вместе с историей отправок.
	SaveNotificationSettings(ctx context.Context, username string, settings *models.NotificationSettings) error
}

// Pusher доставляет push-уведомление на устройство пользователя.
type Pusher interface {
	Push(ctx context.Context, serverURL, deviceKey, title, body string, opts pushclient.Options) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
}

// SchedulerService реализует один проход планировщика и его периодический запуск.
type SchedulerService struct {
	repo        SchedulerRepository
	pusher      Pusher
	cache       Cache
	log         *slog.Logger
	pushTimeout time.Duration
	workers     int
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SchedulerRepository, pusher Pusher, cache Cache,
	log *slog.Logger, pushTimeout time.Duration, workers int) *SchedulerService {
	if workers < 1 {
		workers = 1
	}
	return &SchedulerService{
		repo:        repo,
		pusher:      pusher,
		cache:       cache,
		log:         log,
		pushTimeout: pushTimeout,
		workers:     workers,
	}
}

// Start запускает планировщик с заданным интервалом. Первый проход выполняется
// сразу, дальше по тикеру до отмены контекста.
func (s *SchedulerService) Start(ctx context.Context, interval time.Duration) {
	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *SchedulerService) runOnce(ctx context.Context) {
	summary, err := s.Run(ctx)
	if err != nil {
		s.log.Error("scheduler run failed", sl.Err(err))
		metrics.SchedulerErrors.Inc()
		return
	}
	s.log.Info("scheduler run finished",
		slog.Int("users_processed", summary.UsersProcessed),
		slog.Int("notifications_sent", summary.NotificationsSent),
		slog.Int("errors", summary.Errors),
		slog.Duration("duration", summary.Duration))
}

// Run выполняет один проход планировщика относительно текущей даты UTC.
func (s *SchedulerService) Run(ctx context.Context) (*models.RunSummary, error) {
	return s.run(ctx, time.Now().UTC())
}

// run выполняет проход относительно заданного дня. Ошибку возвращает только
// невозможность получить список пользователей; все остальные сбои считаются
// и логируются, но не прерывают проход.
func (s *SchedulerService) run(ctx context.Context, today time.Time) (*models.RunSummary, error) {
	const op = "notification.run"

	summary := &models.RunSummary{StartedAt: time.Now()}

	users, err := s.repo.ListUsersWithNotificationsEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("starting notification run", slog.Int("users", len(users)))

	// Пользователи независимы друг от друга, поэтому обрабатываются
	// параллельно. Внутри одного пользователя обработка строго
	// последовательная: история отправок и настройки пишутся одной записью.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, user := range users {
		g.Go(func() error {
			sent, errs := s.processUser(gctx, user, today)
			mu.Lock()
			summary.UsersProcessed++
			summary.NotificationsSent += sent
			summary.Errors += errs
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	summary.Errors += s.pruneHistories(ctx, users, today)

	summary.Duration = time.Since(summary.StartedAt)
	metrics.SchedulerRuns.Inc()
	metrics.SchedulerErrors.Add(float64(summary.Errors))
	return summary, nil
}

func (s *SchedulerService) processUser(ctx context.Context, user *models.UserSettings, today time.Time) (sent, errs int) {
	log := s.log.With(slog.String("username", user.Username))

	subs, err := s.repo.ListNotifiableSubscriptions(ctx, user.Username)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		return 0, 1
	}

	var dirty bool
	for _, sub := range subs {
		p, err := period.Parse(sub.Period, sub.CustomDays)
		if err != nil {
			log.Error("invalid subscription period", sl.Err(err), slog.String("subscription_id", sub.ID))
			errs++
			continue
		}

		last, next, err := renewal.Resolve(sub.LastPaymentDate, sub.NextPaymentDate, p, today)
		if err != nil {
			log.Error("failed to resolve payment dates", sl.Err(err), slog.String("subscription_id", sub.ID))
			errs++
			continue
		}
		if !next.Equal(renewal.DateOnly(sub.NextPaymentDate)) {
			sub.LastPaymentDate = last
			sub.NextPaymentDate = next
			if _, err := s.repo.UpdatePaymentDates(ctx, sub); err != nil {
				log.Error("failed to update payment dates", sl.Err(err), slog.String("subscription_id", sub.ID))
				errs++
				continue
			}
			cacheKey := fmt.Sprintf("subscription:%s", sub.ID)
			if err := s.cache.Set(cacheKey, sub, time.Hour); err != nil {
				log.Warn("failed to cache subscription", slog.String("key", cacheKey), slog.Any("err", err))
			}
		}

		ok, reason := renewal.ShouldNotify(sub, user.Settings, today)
		if !ok {
			log.Debug("skipping notification",
				slog.String("subscription_id", sub.ID), slog.String("reason", string(reason)))
			continue
		}

		body := buildBody(sub, p, renewal.DaysUntil(sub.NextPaymentDate, today))
		pushCtx, cancel := context.WithTimeout(ctx, s.pushTimeout)
		err = s.pusher.Push(pushCtx, user.Settings.ServerURL, user.Settings.DeviceKey,
			pushTitle, body, pushclient.Options{Group: "subscriptions"})
		cancel()
		if err != nil {
			log.Error("failed to push notification", sl.Err(err), slog.String("subscription_id", sub.ID))
			errs++
			continue
		}

		// История пишется только после подтверждённой доставки.
		user.Settings.RecordSent(sub.ID, today)
		dirty = true
		sent++
		metrics.NotificationsSent.Inc()
		log.Info("notification sent", slog.String("subscription_id", sub.ID))
	}

	if dirty {
		if err := s.repo.SaveNotificationSettings(ctx, user.Username, user.Settings); err != nil {
			log.Error("failed to save notification history", sl.Err(err))
			errs++
		}
	}
	return sent, errs
}

// pruneHistories вычищает устаревшие записи истории отправок после основного
// прохода и сохраняет настройки только тех пользователей, у кого что-то удалено.
func (s *SchedulerService) pruneHistories(ctx context.Context, users []*models.UserSettings, today time.Time) (errs int) {
	for _, user := range users {
		removed := user.Settings.PruneHistory(today, models.HistoryRetentionDays)
		if removed == 0 {
			continue
		}
		if err := s.repo.SaveNotificationSettings(ctx, user.Username, user.Settings); err != nil {
			s.log.Error("failed to save pruned history", sl.Err(err), slog.String("username", user.Username))
			errs++
			continue
		}
		s.log.Info("pruned notification history",
			slog.String("username", user.Username), slog.Int("removed", removed))
	}
	return errs
}

// buildBody собирает текст напоминания, например:
//
//	Netflix expires in 3 days
//	15.99 USD/month
func buildBody(sub *models.Subscription, p period.Period, daysUntil int) string {
	plural := "s"
	if daysUntil == 1 {
		plural = ""
	}
	return fmt.Sprintf("%s expires in %d day%s\n%.2f %s/%s",
		sub.Name, daysUntil, plural, sub.Amount, sub.Currency, p.Noun())
}

// Package notifier собирает приложение планировщика push-уведомлений.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/cache"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/config"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/pushclient"
	notificationservice "github.com/JerryyrreJ/subscription-management-sub000/internal/services/notification"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/storage/repository"
)

// App представляет приложение планировщика уведомлений.
type App struct {
	schedulerService *notificationservice.SchedulerService
	tickInterval     time.Duration
	db               *repository.Storage
	cache            *cache.Cache
	logger           *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		err := db.CheckDatabaseReady(ctx)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	pusher := pushclient.New(cfg.PushTimeout)
	schedulerService := notificationservice.NewSchedulerService(
		db, pusher, cacheRedis, logger, cfg.PushTimeout, cfg.WorkerPoolSize)

	return &App{
		schedulerService: schedulerService,
		tickInterval:     cfg.TickInterval,
		db:               db,
		cache:            cacheRedis,
		logger:           logger,
	}, nil
}

// Run запускает планировщик до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	go a.schedulerService.Start(ctx, a.tickInterval)

	<-ctx.Done()

	a.logger.Info("shutting down notifier service")

	if err := a.cache.Db.Close(); err != nil {
		a.logger.Error("failed to close redis client", slog.Any("err", err))
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", slog.Any("err", err))
	}

	return nil
}

// Package server собирает HTTP-приложение: хранилище, кеш, очередь,
// сервисы и маршруты, а также управляет его жизненным циклом.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/cache"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/config"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/exchangerate"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/jwt"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/migrations"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/rabbitmq"
	authservice "github.com/JerryyrreJ/subscription-management-sub000/internal/services/auth"
	settingsservice "github.com/JerryyrreJ/subscription-management-sub000/internal/services/settings"
	subservice "github.com/JerryyrreJ/subscription-management-sub000/internal/services/subscription"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/storage/repository"
)

// App представляет HTTP-приложение и его ресурсы.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создает приложение: подключает зависимости, применяет миграции
// и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	publisher := rabbitmq.NewNotificationPublisher(ch)

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	ratesClient := exchangerate.NewClient(cfg.RatesURL)

	authService := authservice.NewAuthService(db, jwtMaker)
	subscriptionService := subservice.NewSubscriptionService(db, cacheRedis, ratesClient, cfg.RatesTTL, logger)
	settingsService := settingsservice.NewSettingsService(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, RouteDeps{
		Auth:         authService,
		Subscription: subscriptionService,
		Settings:     settingsService,
		Publisher:    publisher,
		TokenParser:  jwtMaker,
		Health:       db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", slog.Any("err", err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", slog.Any("err", err))
		}
	}
}

// Run запускает HTTP-сервер и завершает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		closeResources(a.ch, a.conn, a.logger)
		if cerr := a.cache.Db.Close(); cerr != nil {
			a.logger.Error("failed to close redis client", slog.Any("err", cerr))
		}
		if derr := a.db.DB.Close(); derr != nil {
			a.logger.Error("failed to close database", slog.Any("err", derr))
		}
		return err
	}
}

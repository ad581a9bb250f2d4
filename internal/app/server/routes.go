// Package server предоставляет маршруты для основного приложения.
package server

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/handlers/auth/login"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/handlers/auth/register"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/handlers/health"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/handlers/notification/testpush"
	settingsget "github.com/JerryyrreJ/subscription-management-sub000/internal/http/handlers/settings/get"
	settingsupdate "github.com/JerryyrreJ/subscription-management-sub000/internal/http/handlers/settings/update"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/handlers/subscription/create"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/handlers/subscription/list"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/handlers/subscription/read"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/handlers/subscription/remove"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/handlers/subscription/sum"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/handlers/subscription/update"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/middlewarectx"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/rabbitmq"
	authservice "github.com/JerryyrreJ/subscription-management-sub000/internal/services/auth"
	settingsservice "github.com/JerryyrreJ/subscription-management-sub000/internal/services/settings"
	subservice "github.com/JerryyrreJ/subscription-management-sub000/internal/services/subscription"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/storage/repository"
)

// RouteDeps собирает зависимости маршрутов приложения.
type RouteDeps struct {
	Auth         *authservice.AuthService
	Subscription *subservice.SubscriptionService
	Settings     *settingsservice.SettingsService
	Publisher    *rabbitmq.NotificationPublisher
	TokenParser  middlewarectx.TokenParser
	Health       *repository.Storage
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps RouteDeps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, deps.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, deps.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(deps.TokenParser, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/subscriptions", create.New(logger, deps.Subscription).ServeHTTP)
			r.Get("/subscriptions/list", list.New(logger, deps.Subscription).ServeHTTP)
			r.Get("/subscriptions/sum", sum.New(logger, deps.Subscription).ServeHTTP)
			r.Get("/subscriptions/{id}", read.New(logger, deps.Subscription).ServeHTTP)
			r.Put("/subscriptions/{id}", update.New(logger, deps.Subscription).ServeHTTP)
			r.Delete("/subscriptions/{id}", remove.New(logger, deps.Subscription).ServeHTTP)
			r.Get("/settings/notifications", settingsget.New(logger, deps.Settings).ServeHTTP)
			r.Put("/settings/notifications", settingsupdate.New(logger, deps.Settings).ServeHTTP)
			r.Post("/notifications/test", testpush.New(logger, deps.Settings, deps.Publisher).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, deps.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

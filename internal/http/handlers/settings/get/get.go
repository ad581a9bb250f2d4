// Package get реализует HTTP-обработчик чтения настроек уведомлений пользователя.
package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/middlewarectx"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/response"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/sl"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
)

// Handler управляет HTTP-запросами чтения настроек уведомлений.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики настроек
}

// Service описывает интерфейс бизнес-логики чтения настроек.
type Service interface {
	Get(ctx context.Context, username string) (*models.NotificationSettings, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Настройки уведомлений
// @Description Возвращает настройки push-уведомлений текущего пользователя. История отправок наружу не отдаётся.
// @Tags Settings
// @Produce  json
// @Success 200 {object} map[string]any "Настройки уведомлений"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /settings/notifications [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.get"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	settings, err := h.service.Get(r.Context(), username)
	if err != nil {
		log.Error("failed to get notification settings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get notification settings"))
		return
	}

	log.Info("success to get notification settings", slog.String("username", username))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"enabled":     settings.Enabled,
		"server_url":  settings.ServerURL,
		"device_key":  settings.DeviceKey,
		"days_before": settings.DaysBefore,
	}))
}

// Package update реализует HTTP-обработчик обновления настроек уведомлений пользователя.
//
// История отправок при обновлении сохраняется: пользователь управляет только
// параметрами доставки.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/middlewarectx"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/response"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/sl"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
)

// Handler управляет HTTP-запросами обновления настроек уведомлений.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики настроек
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики обновления настроек.
type Service interface {
	Update(ctx context.Context, username string, req models.DummySettings) (*models.NotificationSettings, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновить настройки уведомлений
// @Description Обновляет настройки push-уведомлений текущего пользователя. DaysBefore принимает значения 1, 3, 7 или 14.
// @Tags Settings
// @Accept  json
// @Produce  json
// @Param request body models.DummySettings true "Новые настройки уведомлений"
// @Success 200 {object} map[string]any "Обновлённые настройки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /settings/notifications [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	settings, err := h.service.Update(r.Context(), username, req)
	if err != nil {
		log.Error("failed to update notification settings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update notification settings"))
		return
	}

	log.Info("success to update notification settings", slog.String("username", username))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"enabled":     settings.Enabled,
		"server_url":  settings.ServerURL,
		"device_key":  settings.DeviceKey,
		"days_before": settings.DaysBefore,
	}))
}

// Package testpush реализует HTTP-обработчик тестовой отправки push-уведомления.
//
// Обработчик не отправляет push сам: он публикует задание в очередь,
// а доставкой занимается отдельный процесс-отправитель.
package testpush

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/middlewarectx"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/response"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/sl"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
)

// Request описывает необязательные заголовок и текст тестового уведомления.
type Request struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

// Handler управляет HTTP-запросами тестовой отправки уведомлений.
type Handler struct {
	log       *slog.Logger // Логгер для записи информации и ошибок
	settings  Settings     // Сервис чтения настроек уведомлений
	publisher Publisher    // Издатель сообщений в очередь
}

// Settings описывает интерфейс чтения настроек уведомлений пользователя.
type Settings interface {
	Get(ctx context.Context, username string) (*models.NotificationSettings, error)
}

// Publisher описывает интерфейс публикации сообщения в очередь.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// New создает новый Handler с переданными логгером, сервисом настроек и издателем.
func New(log *slog.Logger, settings Settings, publisher Publisher) *Handler {
	return &Handler{
		log:       log,
		settings:  settings,
		publisher: publisher,
	}
}

// ServeHTTP godoc
// @Summary Тестовое уведомление
// @Description Ставит в очередь тестовое push-уведомление на устройство текущего пользователя. Требует включённых и заполненных настроек уведомлений.
// @Tags Notifications
// @Accept  json
// @Produce  json
// @Param request body Request false "Необязательные заголовок и текст"
// @Success 200 {object} map[string]any "Уведомление поставлено в очередь"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Уведомления не настроены"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /notifications/test [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.testpush"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	settings, err := h.settings.Get(r.Context(), username)
	if err != nil {
		log.Error("failed to get notification settings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get notification settings"))
		return
	}
	if !settings.Enabled || settings.ServerURL == "" || settings.DeviceKey == "" {
		log.Error("notifications are not configured", slog.String("username", username))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("notifications are not configured"))
		return
	}

	message := models.TestPushRequest{
		Username:  username,
		ServerURL: settings.ServerURL,
		DeviceKey: settings.DeviceKey,
		Title:     req.Title,
		Body:      req.Body,
	}
	if err := h.publisher.Publish("test", message); err != nil {
		log.Error("failed to publish test push", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not enqueue test push"))
		return
	}

	log.Info("test push enqueued", slog.String("username", username))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"queued": true,
	}))
}

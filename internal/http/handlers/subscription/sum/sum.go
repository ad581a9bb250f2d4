// Package sum реализует HTTP-обработчик подсчёта суммарных расходов пользователя.
//
// Сумма приводится к целевой валюте по актуальным курсам внешнего API.
package sum

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/middlewarectx"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/http/response"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/sl"
)

// Handler управляет HTTP-запросами подсчёта расходов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики подсчёта расходов
}

// Service описывает интерфейс бизнес-логики подсчёта расходов.
type Service interface {
	Sum(ctx context.Context, username, target string) (float64, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сумма расходов
// @Description Возвращает суммарную стоимость подписок пользователя в целевой валюте.
// @Tags Subscriptions
// @Produce  json
// @Param currency query string false "Целевая валюта (по умолчанию USD)"
// @Success 200 {object} map[string]any "Сумма расходов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера или курсов валют"
// @Router /subscriptions/sum [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.sum"

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

	currency := strings.ToUpper(r.URL.Query().Get("currency"))
	if currency == "" {
		currency = "USD"
	}

	total, err := h.service.Sum(r.Context(), username, currency)
	if err != nil {
		log.Error("failed to count sum", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not count sum"))
		return
	}

	log.Info("success to count sum", slog.Float64("total", total), slog.String("currency", currency))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"total":    total,
		"currency": currency,
	}))
}

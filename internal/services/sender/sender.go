// Package services содержит доставку тестовых push-уведомлений.
//
// API публикует запрос на тестовую отправку в очередь, а этот сервис
// забирает его и доставляет через push-сервер пользователя. Так проверка
// настроек не задерживает HTTP-ответ и не зависит от скорости push-сервера.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/lib/sl"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
	"github.com/JerryyrreJ/subscription-management-sub000/internal/pushclient"
)

// Pusher доставляет push-уведомление на устройство пользователя.
type Pusher interface {
	Push(ctx context.Context, serverURL, deviceKey, title, body string, opts pushclient.Options) error
}

// SenderService обрабатывает сообщения очереди тестовых уведомлений.
type SenderService struct {
	pusher      Pusher
	log         *slog.Logger
	pushTimeout time.Duration
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(pusher Pusher, log *slog.Logger, pushTimeout time.Duration) *SenderService {
	return &SenderService{
		pusher:      pusher,
		log:         log,
		pushTimeout: pushTimeout,
	}
}

// SendTestPush разбирает сообщение очереди и отправляет тестовое уведомление.
// Ошибка возвращает сообщение в очередь для повторной попытки.
func (s *SenderService) SendTestPush(body []byte) error {
	var message models.TestPushRequest
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	title := message.Title
	if title == "" {
		title = "Subscription Management"
	}
	text := message.Body
	if text == "" {
		text = "Test notification"
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.pushTimeout)
	defer cancel()

	err := s.pusher.Push(ctx, message.ServerURL, message.DeviceKey, title, text,
		pushclient.Options{Group: "subscriptions", Sound: "default"})
	if err != nil {
		s.log.Error("failed to send test push",
			slog.String("username", message.Username), sl.Err(err))
		return err
	}

	s.log.Info("test push sent successfully", slog.String("username", message.Username))
	return nil
}

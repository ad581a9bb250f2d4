// Package services содержит бизнес-логику настроек push-уведомлений.
package services

import (
	"context"
	"log/slog"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
)

// SettingsRepository определяет методы хранилища настроек уведомлений.
type SettingsRepository interface {
	// GetNotificationSettings возвращает настройки пользователя или значения по умолчанию.
	GetNotificationSettings(ctx context.Context, username string) (*models.NotificationSettings, error)
	// SaveNotificationSettings сохраняет настройки пользователя одной записью.
	SaveNotificationSettings(ctx context.Context, username string, settings *models.NotificationSettings) error
}

// SettingsService реализует чтение и обновление настроек уведомлений.
type SettingsService struct {
	repo SettingsRepository
	log  *slog.Logger
}

// NewSettingsService создает новый экземпляр SettingsService.
func NewSettingsService(repo SettingsRepository, log *slog.Logger) *SettingsService {
	return &SettingsService{
		repo: repo,
		log:  log,
	}
}

// Get возвращает настройки уведомлений пользователя.
func (s *SettingsService) Get(ctx context.Context, username string) (*models.NotificationSettings, error) {
	return s.repo.GetNotificationSettings(ctx, username)
}

// Update обновляет настройки уведомлений пользователя, сохраняя историю
// отправок: пользователь меняет только параметры доставки, история
// принадлежит планировщику.
func (s *SettingsService) Update(ctx context.Context, username string, req models.DummySettings) (*models.NotificationSettings, error) {
	settings, err := s.repo.GetNotificationSettings(ctx, username)
	if err != nil {
		return nil, err
	}

	settings.Enabled = req.Enabled
	settings.ServerURL = req.ServerURL
	settings.DeviceKey = req.DeviceKey
	settings.DaysBefore = req.DaysBefore

	if err := s.repo.SaveNotificationSettings(ctx, username, settings); err != nil {
		return nil, err
	}
	s.log.Info("updated notification settings", slog.String("username", username))
	return settings, nil
}

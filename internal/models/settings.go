package models

import "time"

// HistoryRetentionDays задаёт горизонт хранения записей истории уведомлений.
// Более старые записи вычищаются планировщиком; потеря записи грозит лишь
// повторной отправкой напоминания, но не потерей пользовательских данных.
const HistoryRetentionDays = 30

// NotificationSettings хранит настройки push-уведомлений одного пользователя.
// History — словарь «подписка → момент последней успешной отправки»,
// по которому планировщик отсеивает повторные отправки в течение одного дня.
type NotificationSettings struct {
	Enabled    bool                 // Общий выключатель напоминаний
	ServerURL  string               // Адрес push-сервера (например, Bark)
	DeviceKey  string               // Ключ устройства на push-сервере
	DaysBefore int                  // За сколько дней до продления напоминать: 1, 3, 7 или 14
	History    map[string]time.Time // subscriptionID -> время последней успешной отправки
}

// DummySettings используется для приёма настроек уведомлений из JSON-запроса.
type DummySettings struct {
	Enabled    bool   `json:"enabled"`
	ServerURL  string `json:"server_url" validate:"required_if=Enabled true,omitempty,url"`
	DeviceKey  string `json:"device_key" validate:"required_if=Enabled true"`
	DaysBefore int    `json:"days_before" validate:"required,oneof=1 3 7 14"`
}

// RecordSent фиксирует успешную отправку напоминания по подписке.
// Вызывается строго после подтверждённой доставки, чтобы неудачная попытка
// не блокировала повтор на следующем запуске планировщика.
func (s *NotificationSettings) RecordSent(subscriptionID string, sentAt time.Time) {
	if s.History == nil {
		s.History = make(map[string]time.Time)
	}
	s.History[subscriptionID] = sentAt
}

// SentOn сообщает, была ли по подписке успешная отправка в тот же календарный
// день, что и day (компонент времени обеих сторон игнорируется).
func (s *NotificationSettings) SentOn(subscriptionID string, day time.Time) bool {
	sentAt, ok := s.History[subscriptionID]
	if !ok {
		return false
	}
	y1, m1, d1 := sentAt.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// PruneHistory удаляет записи истории старше retentionDays относительно now
// и возвращает количество удалённых записей. Ноль означает, что сохранять
// настройки после чистки не требуется.
func (s *NotificationSettings) PruneHistory(now time.Time, retentionDays int) int {
	horizon := now.AddDate(0, 0, -retentionDays)
	var removed int
	for id, sentAt := range s.History {
		if sentAt.Before(horizon) {
			delete(s.History, id)
			removed++
		}
	}
	return removed
}

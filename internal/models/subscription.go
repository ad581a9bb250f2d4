// Package models содержит доменные структуры, описывающие подписку,
// настройки уведомлений и результат работы планировщика, а также
// вспомогательные типы для работы с данными из внешних источников (например, JSON-запросы).
package models

import "time"

// Subscription представляет собой основную модель подписки,
// используемую в бизнес-логике и хранилище.
// Даты платежей хранятся как календарные даты без компонента времени:
// LastPaymentDate — последнее подтверждённое списание,
// NextPaymentDate — ближайшая записанная дата продления (может устареть,
// если приложение или фоновая задача давно не запускались).
type Subscription struct {
	ID                  string    `json:"id"`                    // Уникальный идентификатор подписки (uuid)
	Username            string    `json:"username"`              // Имя пользователя, которому принадлежит подписка
	Name                string    `json:"name"`                  // Отображаемое название сервиса
	Amount              float64   `json:"amount"`                // Стоимость за один период
	Currency            string    `json:"currency"`              // Код валюты (ISO, например USD)
	Period              string    `json:"period"`                // Период продления: monthly, yearly или custom
	CustomDays          int       `json:"custom_days,omitempty"` // Длина периода в днях для period = custom
	LastPaymentDate     time.Time `json:"last_payment_date"`     // Дата последнего списания
	NextPaymentDate     time.Time `json:"next_payment_date"`     // Дата следующего списания
	NotificationEnabled bool      `json:"notification_enabled"`  // Флаг напоминаний по этой подписке
}

// DummySubscription используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Subscription.
// Даты приходят в виде строк, чтобы их можно было валидировать и парсить вручную.
type DummySubscription struct {
	Name                string  `json:"name" validate:"required"`                                  // Название сервиса
	Amount              float64 `json:"amount" validate:"required,gt=0"`                           // Стоимость (>0)
	Currency            string  `json:"currency" validate:"required,len=3"`                        // Код валюты
	Period              string  `json:"period" validate:"required,oneof=monthly yearly custom"`    // Период продления
	CustomDays          int     `json:"custom_days,omitempty"`                                     // Дни для custom-периода
	LastPaymentDate     string  `json:"last_payment_date" validate:"required,datetime=2006-01-02"` // Дата последнего списания
	NotificationEnabled *bool   `json:"notification_enabled,omitempty"`                            // Напоминания (по умолчанию true)
}

// TestPushRequest описывает сообщение на тестовую отправку push-уведомления,
// которое API публикует в очередь, а отдельный процесс доставляет.
type TestPushRequest struct {
	Username  string `json:"username"`
	ServerURL string `json:"server_url"`
	DeviceKey string `json:"device_key"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

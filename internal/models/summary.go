package models

import "time"

// RunSummary — итог одного запуска планировщика уведомлений.
// Структура живёт только в памяти и используется для логов и метрик.
type RunSummary struct {
	StartedAt         time.Time     // Момент начала запуска
	Duration          time.Duration // Длительность запуска
	UsersProcessed    int           // Сколько пользователей рассмотрено
	NotificationsSent int           // Сколько уведомлений отправлено
	Errors            int           // Сколько ошибок встречено (без прерывания запуска)
}

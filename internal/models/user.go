package models

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID         string // Уникальный идентификатор пользователя
	Email        string // Электронная почта
	Username     string // Имя пользователя (уникальное)
	PasswordHash string // Хэш пароля пользователя
	Role         string // Роль пользователя, admin или user
}

// UserSettings связывает пользователя с его настройками уведомлений.
// Планировщик получает такие пары одним запросом для всех пользователей
// с включёнными напоминаниями.
type UserSettings struct {
	Username string
	Settings *NotificationSettings
}

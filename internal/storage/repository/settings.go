package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
)

// GetNotificationSettings возвращает настройки уведомлений пользователя.
// Если настройки ещё не сохранялись, возвращаются значения по умолчанию.
func (s *Storage) GetNotificationSettings(ctx context.Context, username string) (*models.NotificationSettings, error) {
	const op = "storage.GetNotificationSettings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT enabled, server_url, device_key, days_before, history
			  FROM notification_settings
			  WHERE username = $1`
	row := s.DB.QueryRowContext(ctx, query, username)

	settings, err := scanSettings(row)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.NotificationSettings{
			DaysBefore: 7,
			History:    make(map[string]time.Time),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return settings, nil
}

// SaveNotificationSettings сохраняет настройки уведомлений пользователя
// одной записью, включая историю отправок.
func (s *Storage) SaveNotificationSettings(ctx context.Context, username string, settings *models.NotificationSettings) error {
	const op = "storage.SaveNotificationSettings"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	history := settings.History
	if history == nil {
		history = make(map[string]time.Time)
	}
	rawHistory, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO notification_settings (username, enabled, server_url, device_key, days_before, history, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
			  ON CONFLICT (username) DO UPDATE
			  SET enabled = EXCLUDED.enabled,
				  server_url = EXCLUDED.server_url,
				  device_key = EXCLUDED.device_key,
				  days_before = EXCLUDED.days_before,
				  history = EXCLUDED.history,
				  updated_at = CURRENT_TIMESTAMP`
	_, err = s.DB.ExecContext(ctx, query,
		username, settings.Enabled, settings.ServerURL, settings.DeviceKey,
		settings.DaysBefore, rawHistory)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListUsersWithNotificationsEnabled возвращает пользователей с включёнными
// напоминаниями вместе с их настройками. Пустой результат — не ошибка.
func (s *Storage) ListUsersWithNotificationsEnabled(ctx context.Context) ([]*models.UserSettings, error) {
	const op = "storage.ListUsersWithNotificationsEnabled"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT username, enabled, server_url, device_key, days_before, history
			  FROM notification_settings
			  WHERE enabled = true
			  ORDER BY username`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.UserSettings
	for rows.Next() {
		var username string
		var settings models.NotificationSettings
		var rawHistory []byte
		if err := rows.Scan(&username, &settings.Enabled, &settings.ServerURL,
			&settings.DeviceKey, &settings.DaysBefore, &rawHistory); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := json.Unmarshal(rawHistory, &settings.History); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if settings.History == nil {
			settings.History = make(map[string]time.Time)
		}
		result = append(result, &models.UserSettings{Username: username, Settings: &settings})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanSettings(row interface{ Scan(...any) error }) (*models.NotificationSettings, error) {
	var settings models.NotificationSettings
	var rawHistory []byte
	err := row.Scan(&settings.Enabled, &settings.ServerURL, &settings.DeviceKey,
		&settings.DaysBefore, &rawHistory)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawHistory, &settings.History); err != nil {
		return nil, err
	}
	if settings.History == nil {
		settings.History = make(map[string]time.Time)
	}
	return &settings, nil
}

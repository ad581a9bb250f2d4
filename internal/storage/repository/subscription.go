package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
)

// ErrSubscriptionNotFound возвращается, когда подписка не найдена или
// принадлежит другому пользователю.
var ErrSubscriptionNotFound = errors.New("subscription not found")

const subscriptionColumns = `id, username, name, amount, currency, period,
	COALESCE(custom_days, 0), last_payment_date, next_payment_date, notification_enabled`

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	var item models.Subscription
	err := row.Scan(&item.ID, &item.Username, &item.Name, &item.Amount, &item.Currency,
		&item.Period, &item.CustomDays, &item.LastPaymentDate, &item.NextPaymentDate,
		&item.NotificationEnabled)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateSubscription вставляет новую запись подписки и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub *models.Subscription) (string, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (id, username, name, amount, currency, period,
				  custom_days, last_payment_date, next_payment_date, notification_enabled)
			  VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0), $8, $9, $10)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		sub.ID, sub.Username, sub.Name, sub.Amount, sub.Currency, sub.Period,
		sub.CustomDays, sub.LastPaymentDate, sub.NextPaymentDate, sub.NotificationEnabled).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadSubscription возвращает подписку пользователя по её ID.
func (s *Storage) ReadSubscription(ctx context.Context, id, username string) (*models.Subscription, error) {
	const op = "storage.ReadSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions WHERE id = $1 AND username = $2`
	row := s.DB.QueryRowContext(ctx, query, id, username)

	result, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSubscription обновляет данные подписки и возвращает количество изменённых строк.
func (s *Storage) UpdateSubscription(ctx context.Context, sub *models.Subscription) (int, error) {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET name = $1, amount = $2, currency = $3, period = $4, custom_days = NULLIF($5, 0),
				  last_payment_date = $6, next_payment_date = $7, notification_enabled = $8
			  WHERE id = $9 AND username = $10`
	result, err := s.DB.ExecContext(ctx, query,
		sub.Name, sub.Amount, sub.Currency, sub.Period, sub.CustomDays,
		sub.LastPaymentDate, sub.NextPaymentDate, sub.NotificationEnabled, sub.ID, sub.Username)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveSubscription удаляет подписку пользователя по ID
// и возвращает количество удалённых строк.
func (s *Storage) RemoveSubscription(ctx context.Context, id, username string) (int, error) {
	const op = "storage.RemoveSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions WHERE id = $1 AND username = $2`
	result, err := s.DB.ExecContext(ctx, query, id, username)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListSubscriptions возвращает список всех подписок пользователя с пагинацией.
func (s *Storage) ListSubscriptions(ctx context.Context, username string, limit, offset int) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE username = $1
			  ORDER BY next_payment_date, id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, username, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		item, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListNotifiableSubscriptions возвращает подписки пользователя,
// по которым не отключены напоминания. Используется планировщиком.
func (s *Storage) ListNotifiableSubscriptions(ctx context.Context, username string) ([]*models.Subscription, error) {
	const op = "storage.ListNotifiableSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE username = $1 AND notification_enabled = true
			  ORDER BY next_payment_date, id`
	rows, err := s.DB.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		item, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePaymentDates обновляет перемотанные даты платежей подписки.
func (s *Storage) UpdatePaymentDates(ctx context.Context, sub *models.Subscription) (int, error) {
	const op = "storage.UpdatePaymentDates"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET last_payment_date = $1, next_payment_date = $2
			  WHERE id = $3`
	res, err := s.DB.ExecContext(ctx, query, sub.LastPaymentDate, sub.NextPaymentDate, sub.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

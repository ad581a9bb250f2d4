package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JerryyrreJ/subscription-management-sub000/internal/models"
)

// ErrUserNotFound возвращается, когда пользователь не найден в хранилище.
var ErrUserNotFound = errors.New("user not found")

// CreateUser вставляет нового пользователя и возвращает его UUID.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uuid, email, username, pass_hash, role)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uuid`
	var uid string
	err := s.DB.QueryRowContext(ctx, query,
		user.UUID, user.Email, user.Username, user.PasswordHash, user.Role).Scan(&uid)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// GetUserByUsername возвращает пользователя по имени.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uuid, email, username, pass_hash, role
			  FROM users
			  WHERE username = $1`
	row := s.DB.QueryRowContext(ctx, query, username)

	var user models.User
	if err := row.Scan(&user.UUID, &user.Email, &user.Username, &user.PasswordHash, &user.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

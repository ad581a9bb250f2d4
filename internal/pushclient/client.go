// Package pushclient реализует клиент push-сервера в стиле Bark.
//
// Сервер и ключ устройства принадлежат пользователю и передаются при каждом
// вызове; клиент хранит только HTTP-транспорт. Успехом считается принятый
// сервером запрос, а не показ уведомления на устройстве.
package pushclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Options задаёт необязательные атрибуты push-уведомления.
type Options struct {
	Sound string `json:"sound,omitempty"`
	Group string `json:"group,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// Client отправляет push-уведомления через совместимый с Bark сервер.
type Client struct {
	httpClient *http.Client
}

// New создаёт клиент push-сервера с заданным таймаутом запроса.
func New(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

type pushRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	DeviceKey string `json:"device_key"`
	Options
}

type pushResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Push отправляет уведомление на устройство deviceKey через сервер serverURL.
// Возвращает ошибку, если сервер недоступен или не подтвердил приём.
func (c *Client) Push(ctx context.Context, serverURL, deviceKey, title, body string, opts Options) error {
	const op = "pushclient.Push"

	payload := pushRequest{
		Title:     title,
		Body:      body,
		DeviceKey: deviceKey,
		Options:   opts,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	url := strings.TrimSuffix(serverURL, "/") + "/push"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	var result pushResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.Code != http.StatusOK {
		return fmt.Errorf("%s: push server rejected request: %s", op, result.Message)
	}
	return nil
}

// Package exchangerate реализует клиент внешнего API курсов валют.
// Используется только отчётным слоем для пересчёта стоимости подписок;
// логика дат и напоминаний этим пакетом не пользуется.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client запрашивает актуальные курсы у API, совместимого с frankfurter.app.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт клиент API курсов валют.
func NewClient(apiURL string) *Client {
	return &Client{
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Latest возвращает курсы валют относительно базовой валюты base.
// Курс самой базовой валюты добавляется в результат как 1.
func (c *Client) Latest(ctx context.Context, base string) (map[string]float64, error) {
	const op = "exchangerate.Latest"

	url := fmt.Sprintf("%s/latest?from=%s", c.apiURL, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	var result latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if result.Rates == nil {
		result.Rates = make(map[string]float64)
	}
	result.Rates[base] = 1
	return result.Rates, nil
}

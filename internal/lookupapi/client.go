// Package lookupapi реализует клиент внешнего платного сервиса поиска.
//
// Клиент выполняет ровно один запрос без повторов и классифицирует исход
// в один из вариантов: успех, "не найдено", ошибка API, HTTP-ошибка,
// таймаут или сетевой сбой. Политика повторов, если она нужна, — забота
// вызывающей стороны.
package lookupapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kirillsaykov/lookup-gate/internal/config"
	"github.com/kirillsaykov/lookup-gate/internal/models"
)

// Client клиент сервиса поиска.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создает клиент с таймаутом из конфига.
func NewClient(cfg config.LookupAPI) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.TimeoutLookup},
	}
}

// apiEnvelope минимальная форма ответа для выявления структурированной ошибки апстрима.
type apiEnvelope struct {
	Error string `json:"error"`
}

// Fetch выполняет запрос по валидированному queryKey и возвращает
// нормализованный ответ. Формат ключа проверяет вызывающая сторона.
func (c *Client) Fetch(ctx context.Context, queryKey string) (*models.Payload, error) {
	const op = "lookupapi.Fetch"

	reqURL := fmt.Sprintf("%s/search?number=%s", c.baseURL, url.QueryEscape(queryKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, ErrTimeout
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &NetworkError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Не-2xx со структурированным телом считается ошибкой API,
		// иначе остаётся голым HTTP-статусом.
		var env apiEnvelope
		if json.Unmarshal(body, &env) == nil && env.Error != "" {
			return nil, &APIError{Message: env.Error}
		}
		return nil, &HTTPError{Status: resp.StatusCode}
	}

	var env apiEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != "" {
		if strings.EqualFold(env.Error, "not found") {
			return nil, ErrNotFound
		}
		return nil, &APIError{Message: env.Error}
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" || trimmed == "[]" || trimmed == "{}" {
		return nil, ErrNotFound
	}

	payload, err := parsePayload(body)
	if err != nil {
		return nil, &APIError{Message: "malformed response"}
	}
	return payload, nil
}

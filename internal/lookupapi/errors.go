package lookupapi

import (
	"errors"
	"fmt"
)

// ErrNotFound апстрим явно сообщил об отсутствии данных по запросу.
var ErrNotFound = errors.New("lookupapi: not found")

// ErrTimeout запрос не уложился в отведённый таймаут.
var ErrTimeout = errors.New("lookupapi: request timed out")

// APIError структурированная ошибка, которую вернул сам апстрим.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lookupapi: api error: %s", e.Message)
}

// HTTPError не-2xx ответ без структурированного тела ошибки.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("lookupapi: unexpected status %d", e.Status)
}

// NetworkError транспортная ошибка до получения ответа.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("lookupapi: network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

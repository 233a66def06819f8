// Package lookup реализует конвейер обработки входящего запроса поиска:
// лимитер -> проверка допуска -> внешний запрос -> списание использования ->
// готовое исходящее сообщение.
//
// Конвейер всегда завершается терминальным исходом: либо сообщением для
// транспорта, либо молчаливым отбросом (nil-сообщение при срабатывании
// лимитера). Запросы одного пользователя сериализуются пер-пользовательским
// мьютексом, чтобы цикл read-modify-write счётчиков не гонялся сам с собой.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillsaykov/lookup-gate/internal/format"
	"github.com/kirillsaykov/lookup-gate/internal/lib/markup"
	"github.com/kirillsaykov/lookup-gate/internal/lib/sl"
	"github.com/kirillsaykov/lookup-gate/internal/lookupapi"
	"github.com/kirillsaykov/lookup-gate/internal/metrics"
	"github.com/kirillsaykov/lookup-gate/internal/models"
	"github.com/kirillsaykov/lookup-gate/internal/storage"
)

// RateLimiter определяет пер-пользовательский ограничитель частоты.
type RateLimiter interface {
	Allow(id string) bool
}

// Entitlements определяет проверку допуска к поиску.
type Entitlements interface {
	CanSearch(id string) (models.Access, error)
}

// Store определяет методы хранилища, нужные конвейеру.
type Store interface {
	Get(id string) (*models.UserRecord, error)
	Update(id string, patch storage.Patch) error
}

// Fetcher определяет клиент внешнего сервиса поиска.
type Fetcher interface {
	Fetch(ctx context.Context, queryKey string) (*models.Payload, error)
}

// Cache описывает кеш ответов апстрима. Может быть nil — тогда каждый
// запрос уходит в апстрим.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service оркестратор конвейера поиска.
type Service struct {
	log          *slog.Logger
	limiter      RateLimiter
	entitlements Entitlements
	store        Store
	fetcher      Fetcher
	cache        Cache
	cacheTTL     time.Duration

	mu      sync.Mutex
	userMus map[string]*sync.Mutex
}

// New создает оркестратор. cache может быть nil.
func New(log *slog.Logger, limiter RateLimiter, entitlements Entitlements,
	store Store, fetcher Fetcher, cache Cache, cacheTTL time.Duration) *Service {
	return &Service{
		log:          log,
		limiter:      limiter,
		entitlements: entitlements,
		store:        store,
		fetcher:      fetcher,
		cache:        cache,
		cacheTTL:     cacheTTL,
		userMus:      make(map[string]*sync.Mutex),
	}
}

// userLock возвращает мьютекс для конкретного пользователя.
func (s *Service) userLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.userMus[id]
	if !ok {
		mu = &sync.Mutex{}
		s.userMus[id] = mu
	}
	return mu
}

// HandleLookup обрабатывает одно нормализованное событие поиска.
// Возвращает nil-сообщение при молчаливом отбросе лимитером.
// Счётчики использования меняются только после подтверждённо успешного запроса.
func (s *Service) HandleLookup(ctx context.Context, event models.LookupRequested) (*models.OutboundMessage, error) {
	const op = "lookup.HandleLookup"
	log := s.log.With(slog.String("op", op), slog.String("user_id", event.UserID))

	mu := s.userLock(event.UserID)
	mu.Lock()
	defer mu.Unlock()

	if !s.limiter.Allow(event.UserID) {
		metrics.RateLimited.Inc()
		log.Info("rate limited, dropping event")
		return nil, nil
	}

	access, err := s.entitlements.CanSearch(event.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !access.Allowed {
		metrics.EntitlementDenials.Inc()
		log.Info("lookup denied", slog.String("reason", string(access.Reason)))
		return s.reply(event, limitReachedText, []models.Button{
			{Label: "Subscribe", Action: "subscribe"},
		}), nil
	}

	payload, err := s.fetchWithCache(ctx, event.QueryKey)
	if err != nil {
		text, outcome := classifyFetchError(err)
		metrics.Lookups.WithLabelValues(outcome).Inc()
		log.Warn("lookup failed", slog.String("outcome", outcome), sl.Err(err))
		return s.reply(event, text, nil), nil
	}

	if err := s.commitUsage(event.UserID, access.Reason); err != nil {
		// Запрос уже потрачен; пользователю отвечаем, расхождение только в счётчиках.
		log.Error("failed to commit usage", sl.Err(err))
	}
	metrics.Lookups.WithLabelValues("success").Inc()

	formatted := format.Format(payload)
	text := renderResult(event.QueryKey, formatted)
	if access.Reason == models.ReasonFreeTrial {
		text += "\n\n" + markup.Italic("Your one free search has been used.")
	}
	log.Info("lookup succeeded", slog.Int("fields", len(formatted.Fields)))
	return s.reply(event, text, nil), nil
}

// fetchWithCache пытается обслужить запрос из кеша и идёт в апстрим при промахе.
// Ошибки кеша не фатальны: при недоступном redis запрос уходит в апстрим.
func (s *Service) fetchWithCache(ctx context.Context, queryKey string) (*models.Payload, error) {
	if s.cache == nil {
		return s.fetcher.Fetch(ctx, queryKey)
	}

	cacheKey := "lookup:" + queryKey
	var cached models.Payload
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("cache get failed", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		metrics.Lookups.WithLabelValues("cache_hit").Inc()
		return &cached, nil
	}

	payload, err := s.fetcher.Fetch(ctx, queryKey)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL); err != nil {
		s.log.Warn("cache set failed", slog.String("key", cacheKey), sl.Err(err))
	}
	return payload, nil
}

// commitUsage фиксирует успешный поиск: totalLookups всегда растёт на один,
// freeTrialsUsed — только когда поиск шёл за счёт пробного лимита.
func (s *Service) commitUsage(userID string, reason models.Reason) error {
	const op = "lookup.commitUsage"

	rec, err := s.store.Get(userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	totals := rec.TotalLookups + 1
	patch := storage.Patch{TotalLookups: &totals}
	if reason == models.ReasonFreeTrial {
		trials := rec.FreeTrialsUsed + 1
		patch.FreeTrialsUsed = &trials
	}
	if err := s.store.Update(userID, patch); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) reply(event models.LookupRequested, text string, buttons []models.Button) *models.OutboundMessage {
	return &models.OutboundMessage{
		MessageID: uuid.NewString(),
		ChatID:    event.UserID,
		Text:      text,
		ParseMode: "HTML",
		Buttons:   buttons,
	}
}

var limitReachedText = "You have used your free search. " +
	markup.Bold("Subscribe") + " to keep searching."

// renderResult собирает текст ответа из отформатированных полей.
func renderResult(queryKey string, res models.FormattedResult) string {
	if !res.HasData {
		return "No data found for " + markup.Code(markup.Escape(queryKey)) + "."
	}

	var b strings.Builder
	b.WriteString(markup.Bold("Result for "+markup.Code(markup.Escape(queryKey))) + "\n")
	for _, f := range res.Fields {
		b.WriteString("\n")
		b.WriteString(markup.Bold(markup.Escape(f.Label)+":") + " " + markup.Code(markup.Escape(f.Value)))
	}
	return b.String()
}

// classifyFetchError отображает ошибку клиента в текст для пользователя и
// метку исхода для метрик. Текст апстрима экранируется до попадания в разметку.
func classifyFetchError(err error) (text, outcome string) {
	var apiErr *lookupapi.APIError
	var httpErr *lookupapi.HTTPError
	var netErr *lookupapi.NetworkError

	switch {
	case errors.Is(err, lookupapi.ErrNotFound):
		return "Nothing found for this number.", "not_found"
	case errors.Is(err, lookupapi.ErrTimeout):
		return "The lookup service did not respond in time. Try again later.", "timeout"
	case errors.As(err, &apiErr):
		return "Lookup service error: " + markup.Escape(apiErr.Message), "api_error"
	case errors.As(err, &httpErr):
		return fmt.Sprintf("Lookup service returned status %d. Try again later.", httpErr.Status), "http_error"
	case errors.As(err, &netErr):
		return "Could not reach the lookup service. Try again later.", "network_error"
	default:
		return "Lookup failed. Try again later.", "network_error"
	}
}

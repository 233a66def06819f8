package lookupgate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/kirillsaykov/lookup-gate/internal/cache"
	"github.com/kirillsaykov/lookup-gate/internal/config"
	libjwt "github.com/kirillsaykov/lookup-gate/internal/lib/jwt"
	"github.com/kirillsaykov/lookup-gate/internal/lib/sl"
	"github.com/kirillsaykov/lookup-gate/internal/lookupapi"
	"github.com/kirillsaykov/lookup-gate/internal/ratelimit"
	"github.com/kirillsaykov/lookup-gate/internal/services/entitlement"
	lookupservice "github.com/kirillsaykov/lookup-gate/internal/services/lookup"
	"github.com/kirillsaykov/lookup-gate/internal/storage"
)

// App сервис lookup-gate с HTTP-сервером и его зависимостями.
type App struct {
	server *http.Server
	logger *slog.Logger
	cache  *cache.Cache // nil, если redis не сконфигурирован
}

// New инициализирует все компоненты сервиса.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := storage.New(cfg.StorePath, logger)
	if err != nil {
		return nil, err
	}

	// Кеш ответов апстрима опционален: без redis каждый запрос идёт в апстрим.
	var redisCache *cache.Cache
	var payloadCache lookupservice.Cache
	if cfg.AddressRedis != "" {
		redisCache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		payloadCache = redisCache
	} else {
		logger.Warn("redis is not configured, payload cache disabled")
	}

	entitlements := entitlement.New(store, logger)
	fetcher := lookupapi.NewClient(cfg.LookupAPI)
	userLimiter := ratelimit.NewPerUser(cfg.UserInterval)
	pipeline := lookupservice.New(logger, userLimiter, entitlements, store,
		fetcher, payloadCache, cfg.PayloadTTL)

	jwtMaker := libjwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, pipeline, entitlements, store, jwtMaker)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		cache:  redisCache,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.cache != nil {
			if cerr := a.cache.Close(); cerr != nil {
				a.logger.Warn("failed to close redis connection", sl.Err(cerr))
			}
		}
		return err
	}
}

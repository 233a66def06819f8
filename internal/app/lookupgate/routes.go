// Package lookupgate предоставляет маршруты для основного приложения.
package lookupgate

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/kirillsaykov/lookup-gate/internal/config"
	"github.com/kirillsaykov/lookup-gate/internal/http/handlers/admin/grant"
	"github.com/kirillsaykov/lookup-gate/internal/http/handlers/admin/revoke"
	"github.com/kirillsaykov/lookup-gate/internal/http/handlers/admin/token"
	"github.com/kirillsaykov/lookup-gate/internal/http/handlers/admin/user"
	"github.com/kirillsaykov/lookup-gate/internal/http/handlers/admin/users"
	"github.com/kirillsaykov/lookup-gate/internal/http/handlers/event"
	"github.com/kirillsaykov/lookup-gate/internal/http/middlewarectx"
	"github.com/kirillsaykov/lookup-gate/internal/http/response"
	libjwt "github.com/kirillsaykov/lookup-gate/internal/lib/jwt"
	"github.com/kirillsaykov/lookup-gate/internal/services/entitlement"
	lookupservice "github.com/kirillsaykov/lookup-gate/internal/services/lookup"
	"github.com/kirillsaykov/lookup-gate/internal/storage"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	pipeline *lookupservice.Service, entitlements *entitlement.Service,
	store *storage.Storage, jwtMaker libjwt.Maker) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	globalLimiter := rate.NewLimiter(rate.Limit(cfg.GlobalRPS), cfg.GlobalBurst)

	r.Route("/api/v1", func(r chi.Router) {
		// Вход транспорта: под глобальным лимитером, без аутентификации
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(globalLimiter, logger))
			r.Post("/webhook/event", event.New(logger, pipeline, store).ServeHTTP)
		})

		// Выпуск админского токена по бутстрап-секрету
		r.Post("/admin/token", token.New(logger, jwtMaker, cfg.BootstrapSecret).ServeHTTP)

		// Админский API под JWT
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AdminAuthMiddleware(jwtMaker, logger))
			r.Post("/admin/users/{id}/subscription", grant.New(logger, entitlements).ServeHTTP)
			r.Delete("/admin/users/{id}/subscription", revoke.New(logger, entitlements).ServeHTTP)
			r.Get("/admin/users/{id}", user.New(logger, entitlements).ServeHTTP)
			r.Get("/admin/users", users.New(logger, entitlements).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OKWithData(map[string]string{"status": "alive"}))
	})
}

// Package revoke реализует HTTP-обработчик снятия подписки с пользователя.
package revoke

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kirillsaykov/lookup-gate/internal/http/response"
	"github.com/kirillsaykov/lookup-gate/internal/lib/sl"
)

// Service описывает интерфейс бизнес-логики снятия подписки.
type Service interface {
	Revoke(id string) error
}

// Handler управляет HTTP-запросами на снятие подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.revoke"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID := chi.URLParam(r, "id")
	if userID == "" {
		log.Error("missing user id in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing user id"))
		return
	}

	if err := h.service.Revoke(userID); err != nil {
		log.Error("failed to revoke subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not revoke subscription"))
		return
	}

	log.Info("subscription revoked", slog.String("user_id", userID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user_id": userID,
	}))
}

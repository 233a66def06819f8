// Package users реализует HTTP-обработчик списка всех пользователей.
package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kirillsaykov/lookup-gate/internal/http/response"
	"github.com/kirillsaykov/lookup-gate/internal/lib/sl"
	"github.com/kirillsaykov/lookup-gate/internal/models"
)

// Service описывает интерфейс получения всех записей пользователей.
type Service interface {
	ListAll() ([]*models.UserRecord, error)
}

// Handler управляет HTTP-запросами списка пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	recs, err := h.service.ListAll()
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list users"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"count": len(recs),
		"users": recs,
	}))
}

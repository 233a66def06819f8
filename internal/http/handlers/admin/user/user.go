// Package user реализует HTTP-обработчик чтения карточки пользователя.
package user

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kirillsaykov/lookup-gate/internal/http/response"
	"github.com/kirillsaykov/lookup-gate/internal/lib/sl"
	"github.com/kirillsaykov/lookup-gate/internal/models"
)

// Service описывает интерфейс чтения состояния пользователя.
type Service interface {
	Snapshot(id string) (*models.UserRecord, error)
}

// Handler управляет HTTP-запросами чтения карточки пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.user"
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

	rec, err := h.service.Snapshot(userID)
	if err != nil {
		log.Error("failed to read user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read user"))
		return
	}

	render.JSON(w, r, response.OKWithData(rec))
}

// Package grant реализует HTTP-обработчик выдачи подписки пользователю.
package grant

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/kirillsaykov/lookup-gate/internal/http/response"
	"github.com/kirillsaykov/lookup-gate/internal/lib/sl"
)

// Request тело запроса на выдачу подписки.
type Request struct {
	Days int `json:"days" validate:"required,gt=0"` // Длительность подписки в днях
}

// Service описывает интерфейс бизнес-логики выдачи подписки.
type Service interface {
	Grant(id string, durationDays int) (time.Time, error)
}

// Handler управляет HTTP-запросами на выдачу подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.grant"
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	expiresAt, err := h.service.Grant(userID, req.Days)
	if err != nil {
		log.Error("failed to grant subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not grant subscription"))
		return
	}

	log.Info("subscription granted", slog.String("user_id", userID), slog.Int("days", req.Days))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user_id":    userID,
		"expires_at": expiresAt,
	}))
}

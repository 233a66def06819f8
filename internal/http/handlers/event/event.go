// Package event реализует HTTP-обработчик входящих событий транспорта.
//
// Обработчик принимает два вида запросов поиска — голый номер в тексте
// сообщения и явную команду "/lookup <номер>" — и нормализует оба в одно
// событие LookupRequested до входа в конвейер. Невалидный формат номера
// отклоняется здесь и до конвейера не доходит.
package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/kirillsaykov/lookup-gate/internal/http/response"
	"github.com/kirillsaykov/lookup-gate/internal/lib/sl"
	"github.com/kirillsaykov/lookup-gate/internal/models"
	"github.com/kirillsaykov/lookup-gate/internal/storage"
)

// queryKeyRe формат ключа поиска: 10 цифр, первая 6-9.
var queryKeyRe = regexp.MustCompile(`^[6-9]\d{9}$`)

// Request входящее событие от транспортного слоя.
type Request struct {
	UserID      string `json:"user_id" validate:"required"`
	Text        string `json:"text" validate:"required"` // Текст сообщения: номер или команда "/lookup <номер>"
	DisplayName string `json:"display_name"`
	Handle      string `json:"handle"`
}

// Service описывает конвейер обработки запроса поиска.
type Service interface {
	HandleLookup(ctx context.Context, event models.LookupRequested) (*models.OutboundMessage, error)
}

// Users описывает доступ к хранилищу для обновления метаданных пользователя.
type Users interface {
	Get(id string) (*models.UserRecord, error)
	Update(id string, patch storage.Patch) error
}

// Handler управляет HTTP-запросами входящих событий.
type Handler struct {
	log      *slog.Logger
	service  Service
	users    Users
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, users Users) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		users:    users,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	queryKey, ok := extractQueryKey(req.Text)
	if !ok {
		log.Info("rejected malformed query key")
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("query must be a 10-digit number starting with 6-9"))
		return
	}

	// Метаданные обновляются на каждом событии, независимо от исхода поиска.
	h.updateMetadata(log, req)

	msg, err := h.service.HandleLookup(r.Context(), models.LookupRequested{
		UserID:      req.UserID,
		QueryKey:    queryKey,
		DisplayName: req.DisplayName,
		Handle:      req.Handle,
	})
	if err != nil {
		log.Error("pipeline failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	if msg == nil {
		// Молчаливый отброс лимитером: ответа для пользователя нет.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	render.JSON(w, r, response.OKWithData(msg))
}

// updateMetadata записывает отображаемые поля пользователя.
// Ошибки не прерывают обработку события.
func (h *Handler) updateMetadata(log *slog.Logger, req Request) {
	if _, err := h.users.Get(req.UserID); err != nil {
		log.Warn("failed to ensure user record", sl.Err(err))
		return
	}
	patch := storage.Patch{}
	if req.DisplayName != "" {
		patch.DisplayName = &req.DisplayName
	}
	if req.Handle != "" {
		patch.Handle = &req.Handle
	}
	if patch.DisplayName == nil && patch.Handle == nil {
		return
	}
	if err := h.users.Update(req.UserID, patch); err != nil {
		log.Warn("failed to update user metadata", sl.Err(err))
	}
}

// extractQueryKey нормализует обе формы входа к ключу поиска.
func extractQueryKey(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if after, ok := strings.CutPrefix(text, "/lookup"); ok {
		text = strings.TrimSpace(after)
	}
	if !queryKeyRe.MatchString(text) {
		return "", false
	}
	return text, true
}

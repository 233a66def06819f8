// Package token реализует HTTP-обработчик выпуска админского JWT токена
// по бутстрап-секрету из конфига.
package token

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/kirillsaykov/lookup-gate/internal/http/response"
	libjwt "github.com/kirillsaykov/lookup-gate/internal/lib/jwt"
	"github.com/kirillsaykov/lookup-gate/internal/lib/sl"
)

// Request тело запроса на выпуск токена.
type Request struct {
	Name   string `json:"name" validate:"required"` // Имя оператора, попадает в subject токена
	Secret string `json:"secret" validate:"required"`
}

// Handler управляет выпуском админских токенов.
type Handler struct {
	log             *slog.Logger
	maker           libjwt.Maker
	bootstrapSecret string
	validate        *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, maker libjwt.Maker, bootstrapSecret string) *Handler {
	return &Handler{
		log:             log,
		maker:           maker,
		bootstrapSecret: bootstrapSecret,
		validate:        validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.token"
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

	if h.bootstrapSecret == "" ||
		subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.bootstrapSecret)) != 1 {
		log.Error("bootstrap secret mismatch")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	tokenStr, err := h.maker.GenerateToken(req.Name, "admin")
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not generate token"))
		return
	}

	log.Info("admin token issued", slog.String("name", req.Name))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": tokenStr,
	}))
}

// Package user реализует HTTP-обработчики для учётных записей пользователей.
package user

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Service описывает интерфейс бизнес-логики пользователей.
type Service interface {
	Get(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Update(ctx context.Context, username string, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, username string) error
}

// Handler обрабатывает запросы к /users.
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

// Routes возвращает роутер с маршрутами пользователей.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{username}", h.Get)
	r.Put("/{username}", h.Update)
	r.Delete("/{username}", h.Delete)
	return r
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, msg string) {
	log.Error(msg, sl.Err(err))
	code, resp := response.FromError(err, msg)
	render.Status(r, code)
	render.JSON(w, r, resp)
}

// List godoc
// @Summary Список пользователей
// @Tags Users
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.user.list")

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	users, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.fail(w, r, log, err, "could not list users")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"users": users}))
}

// Get godoc
// @Summary Получить пользователя
// @Tags Users
// @Produce  json
// @Param username path string true "Имя пользователя"
// @Success 200 {object} response.Response
// @Failure 404,500 {object} response.ErrorResponse
// @Router /users/{username} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.user.get")

	user, err := h.service.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.fail(w, r, log, err, "could not read user")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"user": user}))
}

// Update godoc
// @Summary Изменить пользователя
// @Tags Users
// @Accept  json
// @Produce  json
// @Param username path string true "Имя пользователя"
// @Param request body models.UserPatch true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Failure 400,404,409,500 {object} response.ErrorResponse
// @Router /users/{username} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.user.update")

	var req models.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if resp, ok := response.Validate(h.validate, req); !ok {
		log.Error("validation failed", slog.String("error", resp.Error))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp)
		return
	}

	user, err := h.service.Update(r.Context(), chi.URLParam(r, "username"), req)
	if err != nil {
		h.fail(w, r, log, err, "could not update user")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"user": user}))
}

// Delete godoc
// @Summary Удалить пользователя
// @Tags Users
// @Param username path string true "Имя пользователя"
// @Success 200 {object} response.Response
// @Failure 404,500 {object} response.ErrorResponse
// @Router /users/{username} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.user.delete")
	username := chi.URLParam(r, "username")

	if err := h.service.Delete(r.Context(), username); err != nil {
		h.fail(w, r, log, err, "could not delete user")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"deleted": username}))
}

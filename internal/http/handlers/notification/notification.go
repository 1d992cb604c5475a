// Package notification реализует HTTP-обработчики уведомлений пользователей.
package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Service описывает интерфейс бизнес-логики уведомлений.
type Service interface {
	Create(ctx context.Context, req models.DummyNotification) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkSent(ctx context.Context, id string) error
}

// Handler обрабатывает запросы к /notifications.
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

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, log *slog.Logger, key string) (string, bool) {
	id := chi.URLParam(r, key)
	if err := uuid.Validate(id); err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return "", false
	}
	return id, true
}

// Create godoc
// @Summary Создать уведомление
// @Tags Notifications
// @Accept  json
// @Produce  json
// @Param request body models.DummyNotification true "Уведомление"
// @Success 201 {object} response.Response
// @Failure 400,404,500 {object} response.ErrorResponse
// @Router /notifications [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.notification.create")

	var req models.DummyNotification
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

	n, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, log, err, "could not create notification")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"notification": n}))
}

// ListByUser godoc
// @Summary Уведомления пользователя
// @Tags Notifications
// @Produce  json
// @Param userID path string true "ID пользователя"
// @Success 200 {object} response.Response
// @Failure 400,500 {object} response.ErrorResponse
// @Router /notifications/user/{userID} [get]
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.notification.list")
	userID, ok := h.pathID(w, r, log, "userID")
	if !ok {
		return
	}

	list, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		h.fail(w, r, log, err, "could not list notifications")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"notifications": list}))
}

// MarkSent godoc
// @Summary Пометить уведомление отправленным
// @Tags Notifications
// @Param id path string true "ID уведомления"
// @Success 200 {object} response.Response
// @Failure 400,404,500 {object} response.ErrorResponse
// @Router /notifications/{id}/sent [patch]
func (h *Handler) MarkSent(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.notification.sent")
	id, ok := h.pathID(w, r, log, "id")
	if !ok {
		return
	}

	if err := h.service.MarkSent(r.Context(), id); err != nil {
		h.fail(w, r, log, err, "could not update notification")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"id": id, "status": models.NotificationSent}))
}

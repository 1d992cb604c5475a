// Package paymentmethod реализует HTTP-обработчики CRUD для способов оплаты.
package paymentmethod

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

// Service описывает интерфейс бизнес-логики способов оплаты.
type Service interface {
	Create(ctx context.Context, req models.DummyPaymentMethod) (*models.PaymentMethod, error)
	Get(ctx context.Context, id string) (*models.PaymentMethod, error)
	List(ctx context.Context, userID string) ([]*models.PaymentMethod, error)
	Update(ctx context.Context, id string, patch models.PaymentMethodPatch) (*models.PaymentMethod, error)
	Delete(ctx context.Context, id string) error
}

// Handler обрабатывает запросы к /payment-methods.
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

// Routes возвращает роутер с маршрутами способов оплаты.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
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

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, msg string) {
	log.Error(msg, sl.Err(err))
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, response.Error(msg))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.badRequest(w, r, log, err, "invalid request body")
		return false
	}
	if resp, ok := response.Validate(h.validate, dst); !ok {
		log.Error("validation failed", slog.String("error", resp.Error))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp)
		return false
	}
	return true
}

// Create godoc
// @Summary Добавить способ оплаты
// @Tags PaymentMethods
// @Accept  json
// @Produce  json
// @Param request body models.DummyPaymentMethod true "Способ оплаты"
// @Success 201 {object} response.Response
// @Failure 400,404,500 {object} response.ErrorResponse
// @Router /payment-methods [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.paymentmethod.create")

	var req models.DummyPaymentMethod
	if !h.decode(w, r, log, &req) {
		return
	}
	pm, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, log, err, "could not create payment method")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"payment_method": pm}))
}

// List godoc
// @Summary Список способов оплаты
// @Tags PaymentMethods
// @Produce  json
// @Param user_id query string false "Фильтр по пользователю"
// @Success 200 {object} response.Response
// @Router /payment-methods [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.paymentmethod.list")

	userID := r.URL.Query().Get("user_id")
	if userID != "" {
		if err := uuid.Validate(userID); err != nil {
			h.badRequest(w, r, log, err, "invalid user_id")
			return
		}
	}
	list, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.fail(w, r, log, err, "could not list payment methods")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"payment_methods": list}))
}

// Get godoc
// @Summary Получить способ оплаты
// @Tags PaymentMethods
// @Produce  json
// @Param id path string true "ID способа оплаты"
// @Success 200 {object} response.Response
// @Failure 400,404,500 {object} response.ErrorResponse
// @Router /payment-methods/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.paymentmethod.get")
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		h.badRequest(w, r, log, err, "failed to decode id from url")
		return
	}

	pm, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, log, err, "could not read payment method")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"payment_method": pm}))
}

// Update godoc
// @Summary Изменить способ оплаты
// @Tags PaymentMethods
// @Accept  json
// @Produce  json
// @Param id path string true "ID способа оплаты"
// @Param request body models.PaymentMethodPatch true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Failure 400,404,500 {object} response.ErrorResponse
// @Router /payment-methods/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.paymentmethod.update")
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		h.badRequest(w, r, log, err, "failed to decode id from url")
		return
	}

	var req models.PaymentMethodPatch
	if !h.decode(w, r, log, &req) {
		return
	}
	pm, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, log, err, "could not update payment method")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"payment_method": pm}))
}

// Delete godoc
// @Summary Удалить способ оплаты
// @Tags PaymentMethods
// @Param id path string true "ID способа оплаты"
// @Success 200 {object} response.Response
// @Failure 400,404,500 {object} response.ErrorResponse
// @Router /payment-methods/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.paymentmethod.delete")
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		h.badRequest(w, r, log, err, "failed to decode id from url")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, log, err, "could not delete payment method")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"deleted_id": id}))
}

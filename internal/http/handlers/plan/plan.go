// Package plan реализует HTTP-обработчики CRUD для тарифных планов.
package plan

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

// Service описывает интерфейс бизнес-логики тарифов.
type Service interface {
	Create(ctx context.Context, req models.DummyPlan) (*models.Plan, error)
	Get(ctx context.Context, id string) (*models.Plan, error)
	List(ctx context.Context) ([]*models.Plan, error)
	Update(ctx context.Context, id string, patch models.PlanPatch) (*models.Plan, error)
	Delete(ctx context.Context, id string) error
}

// Handler обрабатывает запросы к /plans.
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

// Routes возвращает роутер с маршрутами тарифов.
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

func (h *Handler) id(w http.ResponseWriter, r *http.Request, log *slog.Logger) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return "", false
	}
	return id, true
}

// Create godoc
// @Summary Создать тариф
// @Tags Plans
// @Accept  json
// @Produce  json
// @Param request body models.DummyPlan true "Тариф"
// @Success 201 {object} response.Response
// @Failure 400,500 {object} response.ErrorResponse
// @Router /plans [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.plan.create")

	var req models.DummyPlan
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

	plan, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, log, err, "could not create plan")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"plan": plan}))
}

// List godoc
// @Summary Список тарифов
// @Tags Plans
// @Produce  json
// @Success 200 {object} response.Response
// @Router /plans [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.plan.list")

	plans, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, log, err, "could not list plans")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"plans": plans}))
}

// Get godoc
// @Summary Получить тариф
// @Tags Plans
// @Produce  json
// @Param id path string true "ID тарифа"
// @Success 200 {object} response.Response
// @Failure 400,404,500 {object} response.ErrorResponse
// @Router /plans/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.plan.get")
	id, ok := h.id(w, r, log)
	if !ok {
		return
	}

	plan, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, log, err, "could not read plan")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"plan": plan}))
}

// Update godoc
// @Summary Изменить тариф
// @Tags Plans
// @Accept  json
// @Produce  json
// @Param id path string true "ID тарифа"
// @Param request body models.PlanPatch true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Failure 400,404,500 {object} response.ErrorResponse
// @Router /plans/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.plan.update")
	id, ok := h.id(w, r, log)
	if !ok {
		return
	}

	var req models.PlanPatch
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

	plan, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, log, err, "could not update plan")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"plan": plan}))
}

// Delete godoc
// @Summary Удалить тариф
// @Description Тариф, на который оформлены подписки, удалить нельзя (409).
// @Tags Plans
// @Param id path string true "ID тарифа"
// @Success 200 {object} response.Response
// @Failure 400,404,409,500 {object} response.ErrorResponse
// @Router /plans/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.plan.delete")
	id, ok := h.id(w, r, log)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, r, log, err, "could not delete plan")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"deleted_id": id}))
}

package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/subscription"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Service описывает интерфейс бизнес-логики выборки подписок.
type Service interface {
	List(ctx context.Context, filter models.SubscriptionFilter) ([]*models.Subscription, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список подписок
// @Tags Subscriptions
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Param user_id query string false "Фильтр по пользователю"
// @Param status query string false "Фильтр по статусу"
// @Success 200 {object} response.Response "Подписки"
// @Failure 400 {object} response.ErrorResponse "Некорректный фильтр"
// @Router /subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)
	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	filter := models.SubscriptionFilter{Limit: limit, Offset: offset}

	if userID := q.Get("user_id"); userID != "" {
		if err := uuid.Validate(userID); err != nil {
			log.Error("invalid user_id filter", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid user_id"))
			return
		}
		filter.UserID = &userID
	}
	if s := q.Get("status"); s != "" {
		status := subscription.Status(s)
		if !status.Valid() {
			log.Error("invalid status filter", slog.String("status", s))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid status"))
			return
		}
		filter.Status = &status
	}

	res, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		code, resp := response.FromError(err, "failed to list")
		render.Status(r, code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("list subscriptions", slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count":    len(res),
		"subscriptions": res,
	}))
}

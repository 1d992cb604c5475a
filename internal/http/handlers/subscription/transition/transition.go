// Package transition реализует HTTP-обработчики переходов статуса подписки:
// cancel, renew, inactivate и activate. Один Handler обслуживает одно действие.
package transition

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/subscription"
)

// Service описывает интерфейс бизнес-логики переходов.
type Service interface {
	Transition(ctx context.Context, id string, action subscription.Action) (*models.Subscription, error)
}

// Handler применяет действие action к подписке из URL.
type Handler struct {
	log     *slog.Logger
	service Service
	action  subscription.Action
}

// New создает Handler для действия action.
func New(log *slog.Logger, service Service, action subscription.Action) *Handler {
	return &Handler{
		log:     log,
		service: service,
		action:  action,
	}
}

// ServeHTTP godoc
// @Summary Сменить статус подписки
// @Description cancel: active→canceled; renew: canceled|expired→active; inactivate: active→inactive; activate: inactive|trial→active.
// @Tags Subscriptions
// @Produce  json
// @Param id path string true "ID подписки"
// @Success 200 {object} response.Response "Подписка после перехода"
// @Failure 400 {object} response.ErrorResponse "Переход запрещён"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 409 {object} response.ErrorResponse "Подписка изменена параллельно"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/{id}/cancel [patch]
// @Router /subscriptions/{id}/renew [patch]
// @Router /subscriptions/{id}/inactivate [patch]
// @Router /subscriptions/{id}/activate [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.transition"

	log := h.log.With(
		slog.String("op", op),
		slog.String("action", string(h.action)),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	sub, err := h.service.Transition(r.Context(), id, h.action)
	if err != nil {
		log.Error("transition failed", sl.Err(err))
		code, resp := response.FromError(err, "could not change subscription status")
		render.Status(r, code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("subscription status changed", slog.String("id", id), slog.String("status", sub.Status.String()))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription": sub,
	}))
}

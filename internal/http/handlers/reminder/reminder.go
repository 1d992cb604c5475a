// Package reminder реализует HTTP-обработчик ручного запуска рассылки напоминаний.
package reminder

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	services "github.com/magabrotheeeer/subscription-manager/internal/services/reminder"
)

// Sweeper запускает один прогон рассылки.
type Sweeper interface {
	Run(ctx context.Context) (services.Report, error)
}

// Handler запускает рассылку и отвечает отчётом после её завершения.
type Handler struct {
	log   *slog.Logger
	sweep Sweeper
}

// New создает новый Handler.
func New(log *slog.Logger, sweep Sweeper) *Handler {
	return &Handler{
		log:   log,
		sweep: sweep,
	}
}

// ServeHTTP godoc
// @Summary Разослать напоминания
// @Description Отправляет напоминания по подпискам, истекающим в ближайшие 3 дня. Ответ приходит после завершения прогона.
// @Tags Notifications
// @Produce  json
// @Success 200 {object} response.Response "Отчёт о рассылке"
// @Failure 500 {object} response.ErrorResponse "Не удалось загрузить подписки"
// @Router /notifications/send-reminders [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reminder.send"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	report, err := h.sweep.Run(r.Context())
	if err != nil {
		log.Error("reminder sweep failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not send reminders"))
		return
	}

	log.Info("reminder sweep completed", slog.Int("sent", report.Sent), slog.Int("failed", report.Failed))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Reminders sent",
		"report":  report,
	}))
}

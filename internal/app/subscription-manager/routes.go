// Package subscriptionmanager собирает HTTP API сервиса подписок.
package subscriptionmanager

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/notification"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/paymentmethod"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/plan"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/reminder"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/health"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/transition"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/update"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/user"
	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-manager/internal/metrics"
	authservice "github.com/magabrotheeeer/subscription-manager/internal/services/auth"
	notificationservice "github.com/magabrotheeeer/subscription-manager/internal/services/notification"
	paymentmethods "github.com/magabrotheeeer/subscription-manager/internal/services/payment-methods"
	planservice "github.com/magabrotheeeer/subscription-manager/internal/services/plan"
	reminderservice "github.com/magabrotheeeer/subscription-manager/internal/services/reminder"
	subservice "github.com/magabrotheeeer/subscription-manager/internal/services/subscription"
	userservice "github.com/magabrotheeeer/subscription-manager/internal/services/user"
	"github.com/magabrotheeeer/subscription-manager/internal/subscription"
)

// Services — сервисы, которые обслуживает HTTP API.
type Services struct {
	Auth           *authservice.AuthService
	Subscriptions  *subservice.SubscriptionService
	Users          *userservice.UserService
	Plans          *planservice.PlanService
	PaymentMethods *paymentmethods.PaymentMethodsService
	Notifications  *notificationservice.NotificationService
	Sweep          *reminderservice.SweepService
	DB             health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, limiter *rate.Limiter) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/", create.New(logger, svc.Subscriptions).ServeHTTP)
				r.Get("/", list.New(logger, svc.Subscriptions).ServeHTTP)
				r.Get("/{id}", read.New(logger, svc.Subscriptions).ServeHTTP)
				r.Put("/{id}", update.New(logger, svc.Subscriptions).ServeHTTP)
				r.Delete("/{id}", remove.New(logger, svc.Subscriptions).ServeHTTP)
				for _, action := range []subscription.Action{
					subscription.ActionCancel,
					subscription.ActionRenew,
					subscription.ActionInactivate,
					subscription.ActionActivate,
				} {
					r.Patch("/{id}/"+string(action), transition.New(logger, svc.Subscriptions, action).ServeHTTP)
				}
			})

			notifications := notification.New(logger, svc.Notifications)
			r.Route("/notifications", func(r chi.Router) {
				r.Post("/", notifications.Create)
				r.Post("/send-reminders", reminder.New(logger, svc.Sweep).ServeHTTP)
				r.Get("/user/{userID}", notifications.ListByUser)
				r.Patch("/{id}/sent", notifications.MarkSent)
			})

			r.Mount("/plans", plan.New(logger, svc.Plans).Routes())
			r.Mount("/payment-methods", paymentmethod.New(logger, svc.PaymentMethods).Routes())
			r.Mount("/users", user.New(logger, svc.Users).Routes())
		})
	})

	r.Get("/health", health.New(logger, svc.DB).ServeHTTP)
	r.Handle("/metrics", metrics.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

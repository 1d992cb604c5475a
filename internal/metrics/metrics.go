// Package metrics объявляет метрики Prometheus сервиса подписок.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Исходы обработки одной подписки при рассылке напоминаний.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

var (
	// ReminderOutcomes — число обработанных напоминаний по исходу.
	ReminderOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_manager_reminders_total",
			Help: "Expiry reminders processed by outcome",
		},
		[]string{"outcome"},
	)

	// SweepDuration — длительность одного прохода рассылки.
	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "subscription_manager_sweep_duration_seconds",
			Help:    "Duration of an expiry reminder sweep",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SweepErrors — проходы, не сумевшие загрузить кандидатов.
	SweepErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscription_manager_sweep_errors_total",
			Help: "Sweeps aborted because candidates could not be loaded",
		},
	)

	// Transitions — переходы статусов подписок по действию и результату.
	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_manager_transitions_total",
			Help: "Subscription lifecycle transitions by action and result",
		},
		[]string{"action", "result"},
	)

	// HTTPRequests — HTTP-запросы по маршруту, методу и коду ответа.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_manager_http_requests_total",
			Help: "HTTP requests by route pattern, method and status",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPDuration — длительность HTTP-запросов по маршруту.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subscription_manager_http_request_duration_seconds",
			Help:    "HTTP request duration by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(ReminderOutcomes)
	prometheus.MustRegister(SweepDuration)
	prometheus.MustRegister(SweepErrors)
	prometheus.MustRegister(Transitions)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
}

// Handler возвращает HTTP-обработчик Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer измеряет длительность операции.
type Timer struct {
	start time.Time
}

// NewTimer запускает таймер.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration записывает прошедшее время в observer.
func (t *Timer) ObserveDuration(observer prometheus.Observer) time.Duration {
	d := time.Since(t.start)
	observer.Observe(d.Seconds())
	return d
}

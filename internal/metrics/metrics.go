// Package metrics регистрирует счётчики Prometheus для планировщика
// уведомлений. Значения отдаются наружу обработчиком /metrics HTTP-сервера.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SchedulerRuns — количество завершённых запусков планировщика.
	SchedulerRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_scheduler_runs_total",
		Help: "Number of completed notification scheduler runs.",
	})

	// NotificationsSent — количество успешно доставленных push-уведомлений.
	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_notifications_sent_total",
		Help: "Number of push notifications accepted by the push server.",
	})

	// SchedulerErrors — количество ошибок, встреченных планировщиком
	// без прерывания запуска.
	SchedulerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_scheduler_errors_total",
		Help: "Number of non-fatal errors during scheduler runs.",
	})
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business metrics shared by the application and notifier layers.
// HTTP RED metrics live in transport/http/middleware.
var (
	LifecycleEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "account_service",
			Name:      "lifecycle_events_total",
			Help:      "Account lifecycle transitions by action and result",
		},
		[]string{"action", "result"}, // result: success, noop, error
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "account_service",
			Name:      "notifications_total",
			Help:      "Outbound notifications by transport and result",
		},
		[]string{"transport", "result"},
	)

	NotificationAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "account_service",
			Name:      "notification_attempts_total",
			Help:      "Individual delivery attempts, including retries",
		},
		[]string{"transport"},
	)
)

func ObserveNotification(transport string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	NotificationsTotal.WithLabelValues(transport, result).Inc()
}

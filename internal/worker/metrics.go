package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Общий реестр для всех метрик этого воркера. Метрики регистрируются
// в локальном реестре, а не в глобальном prometheus.DefaultRegistry,
// и отдаются через /metrics воркера.
var (
	registry = prometheus.NewRegistry()

	tasksReceived = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "game_generator_tasks_received_total",
			Help: "Total number of generation tasks received by the worker.",
		},
	)
	tasksSucceeded = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "game_generator_tasks_succeeded_total",
			Help: "Total number of generation tasks successfully processed.",
		},
	)
	tasksFailed = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_generator_tasks_failed_total",
			Help: "Total number of generation tasks failed, partitioned by failure reason.",
		},
		[]string{"reason"},
	)
	taskDuration = promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "game_generator_task_duration_seconds",
			Help:    "Duration of full game generation tasks.",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)
	timelineDays = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "game_generator_timeline_days_total",
			Help: "Total number of timeline days generated across all games.",
		},
	)
)

// MetricsRegistry возвращает реестр метрик воркера для promhttp.
func MetricsRegistry() *prometheus.Registry {
	return registry
}

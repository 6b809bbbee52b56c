package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ECS metrics
	ArchetypesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_ecs_archetypes_total",
			Help: "Total number of registered archetypes",
		},
	)

	EntitiesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_ecs_entities_total",
			Help: "Total number of live entities by archetype",
		},
		[]string{"archetype"},
	)

	ChunkPoolOccupancy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_ecs_chunk_pool_occupancy",
			Help: "Fraction of chunk capacity in use by archetype",
		},
		[]string{"archetype"},
	)

	EntityMoveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_ecs_entity_move_duration_seconds",
			Help:    "Time taken to move an entity between archetypes",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Async I/O metrics
	AIOQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_aio_queue_depth",
			Help: "Pending requests per async I/O port",
		},
		[]string{"port"},
	)

	AIOCompletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_aio_completions_total",
			Help: "Total completed requests by port and status",
		},
		[]string{"port", "status"},
	)

	AIORequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_aio_request_duration_seconds",
			Help:    "Time from submit to completion per request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// Config metrics
	ConfigFinalizeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_config_finalize_duration_seconds",
			Help:    "Time taken to finalize a config blob",
			Buckets: prometheus.DefBuckets,
		},
	)

	ConfigBlobBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_config_blob_bytes",
			Help: "Size in bytes of the most recently finalized config blob",
		},
	)

	// Hailstorm metrics
	HailstormBytesPacked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_hailstorm_bytes_packed_total",
			Help: "Total bytes written by hailstorm pack operations",
		},
	)

	HailstormPackDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_hailstorm_pack_duration_seconds",
			Help:    "Time taken to pack a resource cluster",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"writer"},
	)

	HailstormResourcesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_hailstorm_resources_packed_total",
			Help: "Total resource entries packed across all clusters",
		},
	)

	// Input action metrics
	InputActionsEvaluatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_input_actions_evaluated_total",
			Help: "Total action evaluations per tick by layer",
		},
		[]string{"layer"},
	)

	InputActionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_input_actions_active",
			Help: "Currently active actions by layer",
		},
		[]string{"layer"},
	)

	InputLayersRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_input_layers_rejected_total",
			Help: "Total layers skipped during script parsing due to malformed input",
		},
	)

	// Scheduler metrics
	SchedulerQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_scheduler_queue_depth",
			Help: "Pending tasks per scheduler queue",
		},
		[]string{"queue"},
	)

	SchedulerTaskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_scheduler_task_duration_seconds",
			Help:    "Time taken to run a scheduled task",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"queue"},
	)

	SchedulerWorkersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_scheduler_task_pool_workers",
			Help: "Current size of the task-pool worker set",
		},
	)
)

func init() {
	prometheus.MustRegister(ArchetypesTotal)
	prometheus.MustRegister(EntitiesTotal)
	prometheus.MustRegister(ChunkPoolOccupancy)
	prometheus.MustRegister(EntityMoveDuration)

	prometheus.MustRegister(AIOQueueDepth)
	prometheus.MustRegister(AIOCompletionsTotal)
	prometheus.MustRegister(AIORequestDuration)

	prometheus.MustRegister(ConfigFinalizeDuration)
	prometheus.MustRegister(ConfigBlobBytes)

	prometheus.MustRegister(HailstormBytesPacked)
	prometheus.MustRegister(HailstormPackDuration)
	prometheus.MustRegister(HailstormResourcesTotal)

	prometheus.MustRegister(InputActionsEvaluatedTotal)
	prometheus.MustRegister(InputActionsActive)
	prometheus.MustRegister(InputLayersRejectedTotal)

	prometheus.MustRegister(SchedulerQueueDepth)
	prometheus.MustRegister(SchedulerTaskDuration)
	prometheus.MustRegister(SchedulerWorkersTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики
// =============================================================================

// HttpRequestsTotal - счётчик HTTP запросов по маршрутам
// Пример PromQL: rate(http_requests_total{service="trend-service"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - время ответа
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database Метрики
// =============================================================================

var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

// DbConnectionsOpen - состояние пула соединений (idle, in_use)
var DbConnectionsOpen = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "db_connections_open",
		Help: "Number of open database connections",
	},
	[]string{"service", "state"},
)

var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики
// =============================================================================

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)

// =============================================================================
// Ingestion Метрики (сбор трендовых товаров)
// =============================================================================

// IngestionPassesTotal - завершённые проходы сбора
// status: completed, failed, canceled
var IngestionPassesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ingestion_passes_total",
		Help: "Total number of ingestion passes by final status",
	},
	[]string{"status"},
)

// IngestionCandidatesTotal - результат обработки каждого кандидата
// outcome: inserted, updated, unchanged, failed
var IngestionCandidatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ingestion_candidates_total",
		Help: "Total number of product candidates processed by outcome",
	},
	[]string{"outcome"},
)

var IngestionPassDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "ingestion_pass_duration_seconds",
		Help:    "Duration of a single ingestion pass",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	},
)

// ScraperRunning - 1, пока идёт проход
var ScraperRunning = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "scraper_running",
		Help: "Whether an ingestion pass is currently running",
	},
)

// ScraperProgress - прогресс текущего прохода в процентах
var ScraperProgress = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "scraper_progress_percent",
		Help: "Progress of the current ingestion pass in percent",
	},
)

var SchedulerActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "scheduler_active",
		Help: "Whether the periodic ingestion scheduler is active",
	},
)

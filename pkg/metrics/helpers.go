package metrics

import (
	"database/sql"
	"time"
)

type RedisOperation string

const (
	RedisOpGet RedisOperation = "get"
	RedisOpSet RedisOperation = "set"
	RedisOpDel RedisOperation = "del"
)

type RedisTimer struct {
	service   string
	operation RedisOperation
	start     time.Time
}

func NewRedisTimer(service string, op RedisOperation) *RedisTimer {
	return &RedisTimer{
		service:   service,
		operation: op,
		start:     time.Now(),
	}
}

func (rt *RedisTimer) ObserveDuration() {
	RedisOperationDuration.WithLabelValues(rt.service, string(rt.operation)).Observe(time.Since(rt.start).Seconds())
}

func RecordCacheHit(service, keyPrefix string) {
	RedisCacheHits.WithLabelValues(service, keyPrefix).Inc()
}

func RecordCacheMiss(service, keyPrefix string) {
	RedisCacheMisses.WithLabelValues(service, keyPrefix).Inc()
}

func RecordRedisError(service string, op RedisOperation) {
	RedisErrors.WithLabelValues(service, string(op)).Inc()
}

type KafkaProduceTimer struct {
	service string
	topic   string
	start   time.Time
}

func NewKafkaProduceTimer(service, topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{
		service: service,
		topic:   topic,
		start:   time.Now(),
	}
}

func (kt *KafkaProduceTimer) Success() {
	KafkaMessagesProduced.WithLabelValues(kt.service, kt.topic).Inc()
	KafkaProduceDuration.WithLabelValues(kt.service, kt.topic).Observe(time.Since(kt.start).Seconds())
}

func (kt *KafkaProduceTimer) Error() {
	KafkaErrors.WithLabelValues(kt.service, kt.topic, "produce").Inc()
}

type DbOperation string

const (
	DbOpSelect DbOperation = "select"
	DbOpInsert DbOperation = "insert"
	DbOpUpdate DbOperation = "update"
	DbOpDelete DbOperation = "delete"
	DbOpUpsert DbOperation = "upsert"
)

type DbTimer struct {
	service   string
	operation DbOperation
	table     string
	start     time.Time
}

func NewDbTimer(service string, op DbOperation, table string) *DbTimer {
	return &DbTimer{
		service:   service,
		operation: op,
		table:     table,
		start:     time.Now(),
	}
}

func (dt *DbTimer) ObserveDuration() {
	DbQueryDuration.WithLabelValues(dt.service, string(dt.operation), dt.table).Observe(time.Since(dt.start).Seconds())
}

func RecordDbError(service string, op DbOperation) {
	DbErrors.WithLabelValues(service, string(op)).Inc()
}

// RecordDbStats снимает состояние пула соединений
func RecordDbStats(service string, stats sql.DBStats) {
	DbConnectionsOpen.WithLabelValues(service, "idle").Set(float64(stats.Idle))
	DbConnectionsOpen.WithLabelValues(service, "in_use").Set(float64(stats.InUse))
}

// --- Ingestion ---

func RecordIngestionCandidate(outcome string) {
	IngestionCandidatesTotal.WithLabelValues(outcome).Inc()
}

func RecordIngestionPass(status string, duration time.Duration) {
	IngestionPassesTotal.WithLabelValues(status).Inc()
	IngestionPassDuration.Observe(duration.Seconds())
}

func boolToFloat(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

// SetScraperState отражает регистр статуса в gauge-метриках
func SetScraperState(running bool, progress int) {
	ScraperRunning.Set(boolToFloat(running))
	ScraperProgress.Set(float64(progress))
}

func SetSchedulerActive(active bool) {
	SchedulerActive.Set(boolToFloat(active))
}

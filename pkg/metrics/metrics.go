package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Drop reasons reported on MessagesDroppedTotal.
const (
	ReasonKind      = "kind"
	ReasonSender    = "sender"
	ReasonPredicate = "predicate"
	ReasonRateLimit = "rate_limit"
)

// Registry collects every zipper metric. It is private so that a run's
// textfile export only contains what this tool produced.
var Registry = prometheus.NewRegistry()

var (
	MessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sbpzip_messages_read_total",
			Help: "Total number of records decoded from an input log (count)",
		},
		[]string{"side"},
	)

	MessagesDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sbpzip_messages_dropped_total",
			Help: "Total number of records discarded by the zipper (count)",
		},
		[]string{"side", "reason"},
	)

	MessagesEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sbpzip_messages_emitted_total",
			Help: "Total number of records written to the zipped output (count)",
		},
		[]string{"side"},
	)

	SplitMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sbpzip_split_messages_total",
			Help: "Total number of records routed by the log splitter (count)",
		},
		[]string{"side"},
	)

	LastGpsWeek = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sbpzip_last_gps_week",
			Help: "GPS week of the merge clock: the last record ordered against the other log",
		},
	)

	LastGpsTimeOfWeek = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sbpzip_last_gps_tow",
			Help: "Time of week of the merge clock: the last record ordered against the other log (protocol units)",
		},
	)

	RunDurationSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sbpzip_run_duration_seconds",
			Help: "Wall-clock duration of the last run in seconds",
		},
		[]string{"command", "status"},
	)

	PublishRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sbpzip_publish_retries_total",
			Help: "Total number of retried Kafka publishes (count)",
		},
	)

	PublishThrottleSeconds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sbpzip_publish_throttle_seconds_total",
			Help: "Time spent waiting on the publish rate limiter in seconds",
		},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sbpzip_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func init() {
	Registry.MustRegister(
		MessagesReadTotal,
		MessagesDroppedTotal,
		MessagesEmittedTotal,
		SplitMessagesTotal,
		LastGpsWeek,
		LastGpsTimeOfWeek,
		RunDurationSeconds,
		PublishRetriesTotal,
		PublishThrottleSeconds,
		CircuitBreakerState,
	)
}

func ObserveRunDuration(command string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	RunDurationSeconds.WithLabelValues(command, status).Set(duration.Seconds())
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}

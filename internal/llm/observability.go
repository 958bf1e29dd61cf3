package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// LLMCallEvent records metadata about a single LLM invocation.
type LLMCallEvent struct {
	Task      TaskType
	Provider  Provider
	Model     string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// LogObserver writes LLM call events to a zap logger at debug level,
// or info when the call failed.
type LogObserver struct {
	log *zap.Logger
}

func NewLogObserver(log *zap.Logger) *LogObserver {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogObserver{log: log.Named("llm")}
}

func (o *LogObserver) OnCallComplete(event LLMCallEvent) {
	fields := []zap.Field{
		zap.String("task", string(event.Task)),
		zap.String("provider", string(event.Provider)),
		zap.String("model", event.Model),
		zap.Int64("latency_ms", event.LatencyMs),
	}
	if event.Success {
		o.log.Debug("llm_call", fields...)
		return
	}
	o.log.Info("llm_call failed", append(fields, zap.String("error_code", event.ErrorCode))...)
}

// MetricsObserver counts calls and records latency by provider, task and status.
type MetricsObserver struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetricsObserver registers its collectors with reg.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	o := &MetricsObserver{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pursuit_llm_requests_total",
			Help: "LLM requests by provider/task/status.",
		}, []string{"provider", "task", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pursuit_llm_request_duration_seconds",
			Help:    "LLM request latency in seconds by provider/task/status.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"provider", "task", "status"}),
	}
	if err := reg.Register(o.requests); err != nil {
		return nil, err
	}
	if err := reg.Register(o.latency); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *MetricsObserver) OnCallComplete(event LLMCallEvent) {
	status := "ok"
	if !event.Success {
		status = event.ErrorCode
	}
	labels := prometheus.Labels{
		"provider": string(event.Provider),
		"task":     string(event.Task),
		"status":   status,
	}
	o.requests.With(labels).Inc()
	o.latency.With(labels).Observe((time.Duration(event.LatencyMs) * time.Millisecond).Seconds())
}

// MultiObserver fans events out to every non-nil observer.
type MultiObserver []Observer

func (m MultiObserver) OnCallComplete(event LLMCallEvent) {
	for _, o := range m {
		if o != nil {
			o.OnCallComplete(event)
		}
	}
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}

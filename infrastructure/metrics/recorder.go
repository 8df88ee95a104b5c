package metrics

import (
	"errors"
	"fmt"
	"time"

	"seleniumacros/domain/interfaces"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "seleniumacros"

// PrometheusRecorder exports per-command replay metrics
type PrometheusRecorder struct {
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusRecorder - registers the command counters and latency histogram on reg
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Macro lines processed, by command and status.",
	}, []string{"command", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "command_duration_seconds",
		Help:      "Time spent executing a macro command, pacing excluded.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"command"})

	var err error
	if commands, err = register(reg, commands); err != nil {
		return nil, fmt.Errorf("register command counter: %w", err)
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, fmt.Errorf("register command histogram: %w", err)
	}

	return &PrometheusRecorder{commands: commands, duration: duration}, nil
}

// register returns the already registered collector when reg has one of the same shape
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// CommandProcessed - counts the line and observes the duration of executed commands
func (r *PrometheusRecorder) CommandProcessed(command, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.commands.WithLabelValues(command, status).Inc()
	if status == "ok" || status == "error" {
		r.duration.WithLabelValues(command).Observe(duration.Seconds())
	}
}

var _ interfaces.Recorder = (*PrometheusRecorder)(nil)

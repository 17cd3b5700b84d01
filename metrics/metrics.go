package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultStarted = "started"
	ResultFailed  = "failed"

	// SignalCode is the code label used when the child was killed by a signal.
	SignalCode = "signal"
)

type Metrics struct {
	Spawns      *prometheus.CounterVec
	Exits       *prometheus.CounterVec
	OutputBytes *prometheus.CounterVec
	Running     prometheus.Gauge
}

func InitializeMetrics(registry prometheus.Registerer, constLabels prometheus.Labels) *Metrics {
	metrics := &Metrics{
		Spawns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "child_spawns_total",
			Help:        "Number of child process spawn attempts",
			ConstLabels: constLabels,
		}, []string{"result"}),
		Exits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "child_exits_total",
			Help:        "Number of child process exits by exit code",
			ConstLabels: constLabels,
		}, []string{"code"}),
		OutputBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "child_output_bytes_total",
			Help:        "Bytes relayed from the child process",
			ConstLabels: constLabels,
		}, []string{"stream"}),
		Running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "child_running",
			Help:        "1 while the child process is running",
			ConstLabels: constLabels,
		}),
	}

	registry.MustRegister(
		metrics.Spawns,
		metrics.Exits,
		metrics.OutputBytes,
		metrics.Running,
	)

	return metrics
}

// ExitCodeLabel keeps the code label bounded to what a process can return.
func ExitCodeLabel(code int, signaled bool) string {
	if signaled || code < 0 {
		return SignalCode
	}
	return strconv.Itoa(code)
}

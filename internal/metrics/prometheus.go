package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus exposes the host-observability surface alongside the CSV
// sink (spec's CSV schema is the tested contract; Prometheus is the
// additional surface this codebase family always carries — SPEC_FULL §3).
// Grounded on the teacher's metrics.go registration style, retargeted from
// ws_* connection/broadcast metrics to ingest_* pipeline metrics.
type Prometheus struct {
	messagesTotal   *prometheus.CounterVec
	endToEndLatency prometheus.Histogram
	parseErrors     prometheus.Counter
	capacityErrors  prometheus.Counter
	memoryLimit     prometheus.Gauge
}

var promRegisterOnce = newPromRegistry()

// newPromRegistry builds and registers the metric family exactly once per
// process — a second Pipeline in the same process (e.g. in tests) reuses
// the already-registered collectors instead of panicking on a duplicate
// MustRegister, the way the teacher's package-level init() would if
// constructed twice.
func newPromRegistry() *Prometheus {
	p := &Prometheus{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_messages_total",
			Help: "Total applied non-delete messages by table",
		}, []string{"table"}),
		endToEndLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ingest_end_to_end_latency_ms",
			Help:    "End-to-end latency (send to render-end) in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_parse_errors_total",
			Help: "Total malformed frames dropped by the decoder",
		}),
		capacityErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_capacity_exceeded_total",
			Help: "Total upserts rejected because a table was at its slot cap",
		}),
		memoryLimit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ingest_memory_limit_bytes",
			Help: "Container memory limit detected from cgroup, 0 if unconstrained",
		}),
	}
	prometheus.MustRegister(p.messagesTotal, p.endToEndLatency, p.parseErrors, p.capacityErrors, p.memoryLimit)
	p.memoryLimit.Set(float64(cgroupMemoryLimit()))
	return p
}

// NewPrometheus returns the process-wide Prometheus collector set.
func NewPrometheus() *Prometheus { return promRegisterOnce }

// ObserveMessage records one applied message's table and end-to-end
// latency (when render timing was supplied).
func (p *Prometheus) ObserveMessage(table string, rec Record) {
	p.messagesTotal.WithLabelValues(table).Inc()
	if rec.EndToEndLatency > 0 {
		p.endToEndLatency.Observe(float64(rec.EndToEndLatency))
	}
}

func (p *Prometheus) IncParseError()      { p.parseErrors.Inc() }
func (p *Prometheus) IncCapacityExceeded() { p.capacityErrors.Inc() }

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler { return promhttp.Handler() }

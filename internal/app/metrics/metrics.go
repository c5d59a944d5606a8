package metrics

import (
	"EnglishTeacher/internal/service/teacher"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — метрики Prometheus: вызовы модели и активные сессии.
type Metrics struct {
	completions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	sessions    prometheus.Gauge
	exchanges   prometheus.Counter
}

// New регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		completions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teacher_completions_total",
				Help: "Total number of completion calls by kind and result",
			},
			[]string{"kind", "result"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "teacher_completion_duration_seconds",
				Help:    "Duration of completion calls in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms .. ~51s
			},
			[]string{"kind"},
		),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "teacher_active_sessions",
			Help: "Current number of live sessions",
		}),
		exchanges: f.NewCounter(prometheus.CounterOpts{
			Name: "teacher_exchanges_total",
			Help: "Total number of exchanges shown to learners",
		}),
	}
}

// ObserveCompletion учитывает один вызов модели.
func (m *Metrics) ObserveCompletion(kind string, dur time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.completions.WithLabelValues(kind, result).Inc()
	m.duration.WithLabelValues(kind).Observe(dur.Seconds())
}

func (m *Metrics) SetSessions(n int) { m.sessions.Set(float64(n)) }

func (m *Metrics) IncExchanges() { m.exchanges.Inc() }

var _ teacher.Observer = (*Metrics)(nil)

package audio

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors of an engine. A nil *Metrics records
// nothing.
type Metrics struct {
	activeVoices   prometheus.Gauge
	playsTotal     *prometheus.CounterVec
	evictionsTotal *prometheus.CounterVec
	reclaimedTotal *prometheus.CounterVec
	completions    prometheus.Counter
	decodeDuration *prometheus.HistogramVec
}

// NewMetrics creates the engine metrics and registers them on registry.
func NewMetrics(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		activeVoices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voicepool_active_voices",
			Help: "Number of voices currently playing or looping",
		}),
		playsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voicepool_plays_total",
				Help: "Play requests by category and result",
			},
			[]string{"category", "result"}, // result: ok, disabled, unsupported, decode_failed, no_voice, error
		),
		evictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voicepool_evictions_total",
				Help: "Voices stolen to admit a new request",
			},
			[]string{"policy"},
		),
		reclaimedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voicepool_reclaimed_total",
				Help: "Voices returned to the pool",
			},
			[]string{"reason"}, // reason: reaper, admission, stop, external
		),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voicepool_completions_total",
			Help: "Completion notifications delivered",
		}),
		decodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voicepool_decode_duration_seconds",
				Help:    "Time spent loading samples, cache hits included",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 0.1ms to ~1.6s
			},
			[]string{"codec"},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.activeVoices.Describe(ch)
	m.playsTotal.Describe(ch)
	m.evictionsTotal.Describe(ch)
	m.reclaimedTotal.Describe(ch)
	m.completions.Describe(ch)
	m.decodeDuration.Describe(ch)
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.activeVoices.Collect(ch)
	m.playsTotal.Collect(ch)
	m.evictionsTotal.Collect(ch)
	m.reclaimedTotal.Collect(ch)
	m.completions.Collect(ch)
	m.decodeDuration.Collect(ch)
}

func (m *Metrics) setActive(n int) {
	if m != nil {
		m.activeVoices.Set(float64(n))
	}
}

func (m *Metrics) recordPlay(c Category, result string) {
	if m != nil {
		m.playsTotal.WithLabelValues(c.String(), result).Inc()
	}
}

func (m *Metrics) recordEviction(policy string) {
	if m != nil {
		m.evictionsTotal.WithLabelValues(policy).Inc()
	}
}

func (m *Metrics) recordReclaimed(reason string, n int) {
	if m != nil && n > 0 {
		m.reclaimedTotal.WithLabelValues(reason).Add(float64(n))
	}
}

func (m *Metrics) recordCompletions(n int) {
	if m != nil && n > 0 {
		m.completions.Add(float64(n))
	}
}

func (m *Metrics) observeDecode(codec string, seconds float64) {
	if m != nil {
		m.decodeDuration.WithLabelValues(codec).Observe(seconds)
	}
}

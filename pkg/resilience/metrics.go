package resilience

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "resilience",
		Name:      "breaker_state",
		Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"breaker"})

	breakerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resilience",
		Name:      "breaker_calls_total",
		Help:      "Calls through a circuit breaker by result (success, failure, rejected)",
	}, []string{"breaker", "result"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resilience",
		Name:      "breaker_transitions_total",
		Help:      "Circuit breaker state transitions by target state",
	}, []string{"breaker", "to"})
)

// breakerMetrics holds the collectors of one breaker with its label bound
type breakerMetrics struct {
	state       prometheus.Gauge
	calls       *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

func newBreakerMetrics(name string) breakerMetrics {
	labels := prometheus.Labels{"breaker": name}
	return breakerMetrics{
		state:       breakerState.With(labels),
		calls:       breakerCalls.MustCurryWith(labels),
		transitions: breakerTransitions.MustCurryWith(labels),
	}
}

// gobreaker numbers its states closed=0, half-open=1, open=2
func (m breakerMetrics) setState(s gobreaker.State) {
	m.state.Set(float64(s))
}

func (m breakerMetrics) transition(to gobreaker.State) {
	m.transitions.WithLabelValues(to.String()).Inc()
	m.setState(to)
}

func (m breakerMetrics) call(result string) {
	m.calls.WithLabelValues(result).Inc()
}

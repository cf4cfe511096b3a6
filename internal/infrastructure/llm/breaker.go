package llm

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// circuitState is the state of the summarizer circuit.
type circuitState int

const (
	circuitClosed   circuitState = iota // calls flow through
	circuitOpen                         // calls are rejected
	circuitHalfOpen                     // one trial call is in flight
)

func (s circuitState) String() string {
	switch s {
	case circuitClosed:
		return "closed"
	case circuitOpen:
		return "open"
	case circuitHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

var circuitTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "risk",
	Subsystem: "summarizer",
	Name:      "circuit_transitions_total",
	Help:      "Summarizer circuit breaker state transitions by from-state and to-state.",
}, []string{"from_state", "to_state"})

func init() {
	prometheus.MustRegister(circuitTransitions)
}

// breaker trips after threshold consecutive failures and rejects calls for
// openDuration, then lets a single trial call through.
type breaker struct {
	mu           sync.Mutex
	state        circuitState
	failures     int
	lastFailure  time.Time
	threshold    int
	openDuration time.Duration
	now          func() time.Time
}

func newBreaker(threshold int, openDuration time.Duration) *breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if openDuration <= 0 {
		openDuration = 30 * time.Second
	}
	return &breaker{
		threshold:    threshold,
		openDuration: openDuration,
		now:          time.Now,
	}
}

func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case circuitOpen:
		if b.now().Sub(b.lastFailure) >= b.openDuration {
			b.transition(circuitHalfOpen)
			return true
		}
		return false
	case circuitHalfOpen:
		return false
	default:
		return true
	}
}

func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.transition(circuitClosed)
}

func (b *breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()

	switch {
	case b.state == circuitHalfOpen:
		b.transition(circuitOpen)
	case b.state == circuitClosed && b.failures >= b.threshold:
		b.transition(circuitOpen)
	}
}

// recordAbandoned handles a call the caller gave up on. It does not count as
// a failure, but an abandoned trial call re-opens the circuit so the next one
// can run after openDuration.
func (b *breaker) recordAbandoned() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == circuitHalfOpen {
		b.lastFailure = b.now()
		b.transition(circuitOpen)
	}
}

func (b *breaker) current() circuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// transition must be called with b.mu held.
func (b *breaker) transition(to circuitState) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	circuitTransitions.WithLabelValues(from.String(), to.String()).Inc()
}

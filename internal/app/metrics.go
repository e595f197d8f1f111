package app

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/example/presidium/internal/core/procerr"
)

// Metrics counts service outcomes. A nil *Metrics records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	conflicts  *prometheus.CounterVec
	votesCast  *prometheus.CounterVec
}

// NewMetrics registers the service counters. A nil registry returns nil.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		return nil
	}
	factory := promauto.With(registry)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presidium_operations_total",
			Help: "Service operations by aggregate, operation and outcome",
		}, []string{"aggregate", "operation", "outcome"}),
		conflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presidium_save_conflicts_total",
			Help: "Optimistic concurrency conflicts that triggered a retry",
		}, []string{"aggregate"}),
		votesCast: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presidium_votes_cast_total",
			Help: "Votes recorded by voting type and choice",
		}, []string{"voting_type", "vote"}),
	}
}

func (m *Metrics) observe(aggregate, operation string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(aggregate, operation, outcome(err)).Inc()
}

func (m *Metrics) conflict(aggregate string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(aggregate).Inc()
}

func (m *Metrics) voteCast(votingType, choice string) {
	if m == nil {
		return
	}
	m.votesCast.WithLabelValues(votingType, choice).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := procerr.CodeOf(err); code != "" {
		return strings.ToLower(string(code))
	}
	return "error"
}

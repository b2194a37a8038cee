package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EvaluationPasses counts completed evaluation passes by outcome
	EvaluationPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energymon_evaluation_passes_total",
		Help: "Completed alert evaluation passes.",
	}, []string{"outcome"})

	// EventsTriggered counts triggered alert events by rule kind
	EventsTriggered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energymon_alert_events_triggered_total",
		Help: "Alert events inserted by the evaluation engine.",
	}, []string{"kind"})

	// ReadingsIngested counts stored readings by source
	ReadingsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energymon_readings_ingested_total",
		Help: "Energy readings stored.",
	}, []string{"source"})
)

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "negex",
		Name:      "documents_total",
		Help:      "Documents processed per configuration and status.",
	}, []string{"config", "status"})

	spansEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "negex",
		Name:      "spans_total",
		Help:      "Spans seen per configuration and outcome.",
	}, []string{"config", "outcome"})

	processingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "negex",
		Name:      "processing_seconds",
		Help:      "Time spent in one negation pass.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"config"})
)

const (
	statusOK    = "ok"
	statusError = "error"

	outcomeNegated  = "negated"
	outcomeAffirmed = "affirmed"
	outcomeSkipped  = "skipped"
)

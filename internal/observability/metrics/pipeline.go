package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type pipeline struct {
	postsIngested      *prometheus.CounterVec
	compositionsTotal  *prometheus.CounterVec
	retrievedExamples  prometheus.Histogram
	generationDuration *prometheus.HistogramVec
}

func newPipeline(registry *prometheus.Registry) pipeline {
	p := pipeline{
		postsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "posts",
				Name:      "ingested_total",
				Help:      "Posts added to the knowledge base, by result.",
			},
			[]string{"result"},
		),
		compositionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "prompts",
				Name:      "compositions_total",
				Help:      "Prompt compositions by outcome.",
			},
			[]string{"outcome"},
		),
		retrievedExamples: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "prompts",
				Name:      "retrieved_examples",
				Help:      "Similar posts retrieved per successful composition.",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
			},
		),
		generationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "generation_duration_seconds",
				Help:      "Text-generation call duration by backend and status.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"backend", "status"},
		),
	}
	registry.MustRegister(p.postsIngested, p.compositionsTotal, p.retrievedExamples, p.generationDuration)
	return p
}

func (p pipeline) RecordIngest(result string) {
	p.postsIngested.WithLabelValues(result).Inc()
}

// RecordComposition counts one composition. examples is only observed on success.
func (p pipeline) RecordComposition(outcome string, examples int) {
	p.compositionsTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		p.retrievedExamples.Observe(float64(examples))
	}
}

func (p pipeline) ObserveGeneration(backend, status string, duration time.Duration) {
	p.generationDuration.WithLabelValues(backend, status).Observe(duration.Seconds())
}

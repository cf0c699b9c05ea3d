// Package metrics exposes the tutor's Prometheus instruments on a private
// registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submit outcomes.
const (
	OutcomeCorrect   = "correct"
	OutcomeIncorrect = "incorrect"
	OutcomeNoPending = "no_pending"
	OutcomeError     = "error"
)

// Metrics holds the instruments. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	submits       *prometheus.CounterVec
	fallbacks     prometheus.Counter
	reviews       *prometheus.CounterVec
	scoreDelta    prometheus.Histogram
	questions     *prometheus.CounterVec
	evaluateTimer *prometheus.HistogramVec
}

// New registers all instruments on a fresh registry together with the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		submits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiztutor_submits_total",
				Help: "Total number of answer submissions",
			},
			[]string{"outcome"},
		),
		fallbacks: f.NewCounter(
			prometheus.CounterOpts{
				Name: "quiztutor_evaluator_fallbacks_total",
				Help: "Evaluations replaced by the fallback result",
			},
		),
		reviews: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiztutor_phase_reviews_total",
				Help: "Phase reviews attempted, by result",
			},
			[]string{"result"},
		),
		scoreDelta: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quiztutor_score_delta",
				Help:    "Score deltas applied per submit",
				Buckets: prometheus.LinearBuckets(-60, 10, 13),
			},
		),
		questions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiztutor_questions_total",
				Help: "Question generation attempts, by status",
			},
			[]string{"status"},
		),
		evaluateTimer: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quiztutor_evaluation_duration_seconds",
				Help:    "Time spent waiting on the answer evaluator",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
	}
}

// Submit counts a submission by outcome.
func (m *Metrics) Submit(outcome string) {
	if m == nil {
		return
	}
	m.submits.WithLabelValues(outcome).Inc()
}

// EvaluatorFallback counts an evaluation that fell back.
func (m *Metrics) EvaluatorFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

// ReviewResult counts a phase review attempt.
func (m *Metrics) ReviewResult(result string) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(result).Inc()
}

// ScoreDelta observes an applied delta.
func (m *Metrics) ScoreDelta(delta int) {
	if m == nil {
		return
	}
	m.scoreDelta.Observe(float64(delta))
}

// Question counts a question generation attempt.
func (m *Metrics) Question(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.questions.WithLabelValues(status).Inc()
}

// EvaluationTimer starts a timer; call the returned func with the outcome.
func (m *Metrics) EvaluationTimer() func(ok bool) {
	if m == nil {
		return func(bool) {}
	}
	var status string
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		m.evaluateTimer.WithLabelValues(status).Observe(v)
	}))
	return func(ok bool) {
		status = "ok"
		if !ok {
			status = "error"
		}
		timer.ObserveDuration()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

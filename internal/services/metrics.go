package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts records created by the services. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	molecules *prometheus.CounterVec
	analyses  *prometheus.CounterVec
	users     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		molecules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moleqa",
			Name:      "molecules_created_total",
			Help:      "Molecules stored, by submission source.",
		}, []string{"source"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moleqa",
			Name:      "analyses_created_total",
			Help:      "Analyses stored, by model and prediction type.",
		}, []string{"model_type", "prediction_type"}),
		users: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "moleqa",
			Name:      "users_created_total",
			Help:      "Users stored.",
		}),
	}
	reg.MustRegister(m.molecules, m.analyses, m.users)
	return m
}

func (m *Metrics) moleculeCreated(source string) {
	if m != nil {
		m.molecules.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) analysisCreated(modelType, predictionType string) {
	if m != nil {
		m.analyses.WithLabelValues(modelType, predictionType).Inc()
	}
}

func (m *Metrics) userCreated() {
	if m != nil {
		m.users.Inc()
	}
}

package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ExtractionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docuflow_extraction_total",
			Help: "Extraction runs by document type and outcome",
		},
		[]string{"type", "outcome"},
	)

	ExtractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docuflow_extraction_duration_seconds",
			Help:    "Time spent extracting a document, model call included",
			Buckets: []float64{1, 2, 5, 10, 20, 40, 80, 160},
		},
		[]string{"type"},
	)

	ConfidenceScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docuflow_extraction_confidence",
			Help:    "Confidence scores reported by the model",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	CommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docuflow_commits_total",
			Help: "Committed reviews by document type",
		},
		[]string{"type"},
	)

	RemindersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docuflow_reminders_total",
			Help: "Reminder alerts created by the due-date sweep",
		},
	)

	EmailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docuflow_reminder_emails_total",
			Help: "Reminder emails by outcome",
		},
		[]string{"outcome"},
	)

	TasksInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docuflow_tasks_in_flight",
			Help: "Background extraction tasks currently running",
		},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		ExtractionTotal,
		ExtractionDuration,
		ConfidenceScore,
		CommitsTotal,
		RemindersTotal,
		EmailsTotal,
		TasksInFlight,
	)
}

// Handler exposes the default registry on a gin route.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

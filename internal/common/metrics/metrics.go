package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_submissions_total",
			Help: "Total questionnaire submissions by outcome",
		},
		[]string{"status"},
	)

	ReportsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assessment_reports_generated_total",
			Help: "Total report documents generated successfully",
		},
	)

	ReportFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_report_failures_total",
			Help: "Total report generation failures by error code",
		},
		[]string{"error_code"},
	)

	LeadDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_lead_deliveries_total",
			Help: "Lead record deliveries by sink and outcome",
		},
		[]string{"sink", "status"},
	)

	SubmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "assessment_submission_duration_seconds",
			Help: "End-to-end submission handling duration",
		},
	)

	OverallScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assessment_overall_score",
			Help:    "Distribution of computed overall readiness scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
)

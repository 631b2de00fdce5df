package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	enrollmentsTotal      prometheus.Counter
	lessonCompletions     *prometheus.CounterVec
	submissionsTotal      prometheus.Counter
	gradesTotal           prometheus.Counter
	quizAttemptsTotal     *prometheus.CounterVec
	uploadRequestsTotal   *prometheus.CounterVec
	uploadRejectedTotal   *prometheus.CounterVec
	uploadLatencySeconds  prometheus.Histogram
	analyticsCacheLookups *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		enrollmentsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lms_enrollments_total",
			Help: "Number of successful course enrollments.",
		})

		lessonCompletions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_lesson_completions_total",
			Help: "Lesson completion toggles by resulting action.",
		}, []string{"action"})

		submissionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lms_submissions_total",
			Help: "Number of assignment submissions received.",
		})

		gradesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lms_grades_total",
			Help: "Number of grades entered on submissions.",
		})

		quizAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_quiz_attempts_total",
			Help: "Quiz attempts recorded, labelled by pass state.",
		}, []string{"passed"})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_requests_total",
			Help: "Files stored, labelled by detected MIME type.",
		}, []string{"mime"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_rejected_total",
			Help: "Uploads rejected, labelled by reason.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upload_latency_seconds",
			Help:    "Time spent validating and storing uploads.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		})

		analyticsCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_cache_lookups_total",
			Help: "Analytics cache lookups, labelled by report and result.",
		}, []string{"report", "result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			enrollmentsTotal,
			lessonCompletions,
			submissionsTotal,
			gradesTotal,
			quizAttemptsTotal,
			uploadRequestsTotal,
			uploadRejectedTotal,
			uploadLatencySeconds,
			analyticsCacheLookups,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Enrollments exposes the enrollment counter.
func Enrollments() prometheus.Counter {
	RegisterMetrics()
	return enrollmentsTotal
}

// LessonCompletions exposes the completion toggle counter.
func LessonCompletions() *prometheus.CounterVec {
	RegisterMetrics()
	return lessonCompletions
}

// Submissions exposes the submission counter.
func Submissions() prometheus.Counter {
	RegisterMetrics()
	return submissionsTotal
}

// Grades exposes the grading counter.
func Grades() prometheus.Counter {
	RegisterMetrics()
	return gradesTotal
}

// QuizAttempts exposes the quiz attempt counter.
func QuizAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return quizAttemptsTotal
}

// UploadRequests exposes the stored upload counter.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected exposes the rejected upload counter.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency exposes the upload latency histogram.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// AnalyticsCacheLookups exposes the analytics cache hit/miss counter.
func AnalyticsCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return analyticsCacheLookups
}

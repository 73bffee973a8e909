// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeePayments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "school_fee_payments_total",
		Help: "Student fee months settled.",
	})
	SalaryPayments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "school_salary_payments_total",
		Help: "Teacher salary months paid.",
	})
	AttendanceMarks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "school_attendance_marks_total",
		Help: "Attendance marks written, by entity and status.",
	}, []string{"entity", "status"})
	BlobUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "school_blob_uploads_total",
		Help: "Blob uploads by folder and result.",
	}, []string{"folder", "result"})
	LiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "school_live_subscribers",
		Help: "Open live collection subscriptions.",
	})
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "school_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "code"})
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "school_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// GinMiddleware records request counts and latency per matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

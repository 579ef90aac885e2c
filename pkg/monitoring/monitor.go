package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 业务指标
	PaymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursemart_payments_total",
			Help: "Payment state transitions",
		},
		[]string{"status"},
	)

	EnrollmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursemart_enrollments_total",
			Help: "Enrollments created or reactivated",
		},
		[]string{"source"},
	)

	ReviewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursemart_reviews_total",
			Help: "Reviews saved",
		},
		[]string{"action"},
	)

	DiscountSyncUpdated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coursemart_discount_sync_updated_total",
			Help: "Discount flags changed by the sync job",
		},
	)
)

var initOnce sync.Once

// Init 可重复调用，只注册一次
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			PaymentsTotal,
			EnrollmentsTotal,
			ReviewsTotal,
			DiscountSyncUpdated,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

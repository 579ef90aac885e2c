package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddlewareCountsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Init()
	Init()

	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/courses/:slug", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", PrometheusHandler())

	before := testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/courses/:slug", "204"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/go-basics", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/courses/:slug", "204")))

	PaymentsTotal.WithLabelValues("approved").Inc()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "coursemart_payments_total"))
}

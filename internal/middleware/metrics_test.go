package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/metrics"
)

func setupMetricsRouter() (*gin.Engine, *metrics.Metrics) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
	router := gin.New()
	router.Use(Metrics(m))
	return router, m
}

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	router, m := setupMetricsRouter()
	router.GET("/api/projects/:projectId", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects/"+string(rune('a'+i)), nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/projects/:projectId", "2xx"))
	assert.Equal(t, 3.0, got)
}

func TestMetrics_SkipsInfrastructureEndpoints(t *testing.T) {
	router, m := setupMetricsRouter()
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, 0, testutil.CollectAndCount(m.HTTPRequestsTotal))
}

func TestMetrics_UnmatchedRoute(t *testing.T) {
	router, m := setupMetricsRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "4xx")))
}

// Every response status lands in exactly one status class.
func TestProperty_StatusCategorized(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("request counted under its status class", prop.ForAll(
		func(status int) bool {
			router, m := setupMetricsRouter()
			router.GET("/api/status", func(c *gin.Context) { c.Status(status) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))

			class := string(rune('0'+status/100)) + "xx"
			return testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/status", class)) == 1
		},
		gen.IntRange(200, 599),
	))

	properties.TestingRun(t)
}

package metrics

import (
	"strings"
	"time"
)

var infraEndpoints = []string{"/metrics", "/health", "/ready"}

// RecordHTTPRequest counts a finished request by status class and observes its latency.
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.safeExecute("RecordHTTPRequest", func() {
		m.HTTPRequestsTotal.WithLabelValues(method, endpoint, categorizeStatus(statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	})
}

// categorizeStatus folds a status code into its class, e.g. 404 -> "4xx".
func categorizeStatus(code int) string {
	if code < 200 || code > 599 {
		return "unknown"
	}
	return string(rune('0'+code/100)) + "xx"
}

// ShouldSkipEndpoint reports whether path is an infrastructure endpoint,
// with or without the API base path in front.
func ShouldSkipEndpoint(path string) bool {
	for _, suffix := range infraEndpoints {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

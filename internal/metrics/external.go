package metrics

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	uuidPattern  = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	schemeHostRe = regexp.MustCompile(`^https?://[^/]+`)
)

// RecordExternalAPICall records a call to the hosted platform
func (m *Metrics) RecordExternalAPICall(endpoint, method string, statusCode int, duration time.Duration, err error) {
	m.safeExecute("RecordExternalAPICall", func() {
		endpoint = normalizeEndpoint(endpoint)
		status := strconv.Itoa(statusCode)

		m.ExternalAPIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
		m.ExternalAPIRequestDuration.WithLabelValues(endpoint, status).Observe(duration.Seconds())

		if err != nil || statusCode >= 400 {
			m.ExternalAPIErrors.WithLabelValues(endpoint, getErrorType(statusCode, err)).Inc()
		}
	})
}

// normalizeEndpoint strips the host and query and replaces IDs with {id}
// Example: https://p.example.com/api/entities/Project/123e4567-...?q=1 -> /api/entities/Project/{id}
func normalizeEndpoint(endpoint string) string {
	endpoint = schemeHostRe.ReplaceAllString(endpoint, "")
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	return uuidPattern.ReplaceAllString(endpoint, "{id}")
}

var statusErrorTypes = map[int]string{
	400: "bad_request",
	401: "unauthorized",
	403: "forbidden",
	404: "not_found",
	408: "request_timeout",
	429: "too_many_requests",
	502: "bad_gateway",
	503: "service_unavailable",
	504: "gateway_timeout",
}

// transportErrorTypes is checked in order against the error text.
var transportErrorTypes = []struct {
	needles []string
	kind    string
}{
	{[]string{"connection refused"}, "connection_refused"},
	{[]string{"no such host"}, "dns_error"},
	{[]string{"timeout", "deadline exceeded"}, "timeout"},
	{[]string{"EOF", "connection reset"}, "connection_reset"},
	{[]string{"TLS", "certificate"}, "tls_error"},
}

// getErrorType labels a failed platform call by status, or by the
// transport error when no response arrived.
func getErrorType(statusCode int, err error) string {
	if kind, ok := statusErrorTypes[statusCode]; ok {
		return kind
	}
	switch {
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500 && statusCode < 600:
		return "server_error"
	case err == nil:
		return "unknown"
	}

	msg := err.Error()
	for _, t := range transportErrorTypes {
		for _, needle := range t.needles {
			if strings.Contains(msg, needle) {
				return t.kind
			}
		}
	}
	return "network_error"
}

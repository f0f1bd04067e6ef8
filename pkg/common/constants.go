package common

const (
	RequestIDHeader = "X-Request-Id"

	HealthPath      = "/health"
	AdminHealthPath = "/__/health"
	MetricsPath     = "/metrics"
)

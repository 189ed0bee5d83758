package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/schhatbar/PriorityPoll/internal/metrics"
)

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Fiber strings are backed by the fasthttp buffer; copy before c.Next().
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		metrics.Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		metrics.Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		metrics.Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid label cardinality explosion.
func sanitizeEndpoint(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) < 4 || parts[1] != "api" {
		return path
	}
	switch parts[2] {
	case "polls":
		parts[3] = ":id"
	case "user-votes", "user-points", "user-profile":
		parts[3] = ":name"
	default:
		return path
	}
	return strings.Join(parts, "/")
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}

package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/ToneGuard/ToneGuard/pkg/infra/prometheus"
)

type MetricsMiddleware struct {
	logger *logrus.Logger
}

func NewMetricsMiddleware(logger *logrus.Logger) *MetricsMiddleware {
	return &MetricsMiddleware{
		logger: logger,
	}
}

func (m *MetricsMiddleware) MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := GetStatusClass(strconv.Itoa(c.Response().StatusCode()))
		prometheus.RequestTotal.WithLabelValues(c.Method(), status).Inc()

		if prometheus.GetConfig().EnableLatency {
			elapsed := float64(time.Since(start).Milliseconds())
			prometheus.RequestLatency.WithLabelValues(c.Route().Path).Observe(elapsed)
		}

		return err
	}
}

// GetStatusClass returns the status class of a code (e.g., "2xx")
func GetStatusClass(status string) string {
	code, err := strconv.Atoi(status)
	if err != nil {
		return "5xx"
	}
	return fmt.Sprintf("%dxx", code/100)
}

package jamai

import (
	"context"
	"sync"
	"time"

	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type jamaiMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var (
	jamaiMetricsOnce sync.Once
	jamaiMetricsOK   bool
	metricsJamAI     jamaiMetrics
)

func ensureJamAIMetrics() bool {
	jamaiMetricsOnce.Do(func() {
		meter := otel.Meter("github.com/zatekoja/clinicassistant/jamai")

		requestCount, err := meter.Int64Counter(
			"ai.jamai.request.count",
			metric.WithDescription("Number of gen_tables requests"),
		)
		if err != nil {
			return
		}
		requestDuration, err := meter.Float64Histogram(
			"ai.jamai.request.duration",
			metric.WithDescription("gen_tables request duration in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}
		requestErrors, err := meter.Int64Counter(
			"ai.jamai.request.errors",
			metric.WithDescription("Number of failed gen_tables requests"),
		)
		if err != nil {
			return
		}
		rateLimitWait, err := meter.Float64Histogram(
			"ai.jamai.rate_limit.wait",
			metric.WithDescription("Time spent waiting for the outbound rate limiter in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}

		metricsJamAI = jamaiMetrics{
			requestCount:    requestCount,
			requestDuration: requestDuration,
			requestErrors:   requestErrors,
			rateLimitWait:   rateLimitWait,
		}
		jamaiMetricsOK = true
	})
	return jamaiMetricsOK
}

func recordJamAIMetric(ctx context.Context, operation string, kind providers.TableKind, statusCode int, duration time.Duration, err error) {
	if !ensureJamAIMetrics() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "jamai"),
		attribute.String("jamai.operation", operation),
		attribute.String("jamai.table_kind", string(kind)),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	metricsJamAI.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metricsJamAI.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		metricsJamAI.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordJamAIRateLimitWait(ctx context.Context, operation string, wait time.Duration) {
	if !ensureJamAIMetrics() {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "jamai"),
		attribute.String("jamai.operation", operation),
	}
	metricsJamAI.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}

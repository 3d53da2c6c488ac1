package kafka_middleware

import (
	"agendo/pkg/kafka"
	"agendo/pkg/metrics"
	"context"
	"time"
)

// MetricsProducerMiddleware records publish counts and latency in Prometheus.
func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		metrics.ObservePublish(msg.Topic, time.Since(start).Seconds(), err)
		return err
	}
}

package outbox

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"checklist-service/pkg/circuitbreaker"
	"checklist-service/pkg/metrics"
	"checklist-service/pkg/mq"
	"checklist-service/pkg/trace"
	"checklist-service/pkg/util"
)

// Dispatcher drains pending outbox events to the MQ. Publishing goes through a
// circuit breaker so a broken broker does not hammer every tick.
type Dispatcher struct {
	repo       *Repository
	publisher  *mq.Publisher
	breaker    *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
	maxRetries int
	interval   time.Duration
	batchSize  int
}

func NewDispatcher(
	repo *Repository,
	publisher *mq.Publisher,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		repo:       repo,
		publisher:  publisher,
		breaker:    circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		logger:     logger,
		maxRetries: 5,
		interval:   1 * time.Second,
		batchSize:  100,
	}
}

// WithMaxRetries sets the retry budget per event.
func (d *Dispatcher) WithMaxRetries(maxRetries int) *Dispatcher {
	d.maxRetries = maxRetries
	return d
}

// WithInterval sets the scan interval.
func (d *Dispatcher) WithInterval(interval time.Duration) *Dispatcher {
	d.interval = interval
	return d
}

// WithBatchSize sets the batch size per scan.
func (d *Dispatcher) WithBatchSize(batchSize int) *Dispatcher {
	d.batchSize = batchSize
	return d
}

// Start runs the dispatcher loop until ctx is cancelled. Call in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("Starting Outbox Dispatcher",
		zap.Int("max_retries", d.maxRetries),
		zap.Duration("interval", d.interval),
		zap.Int("batch_size", d.batchSize),
	)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox Dispatcher stopped")
			return
		case <-ticker.C:
			d.processPendingEvents(ctx)
		}
	}
}

func (d *Dispatcher) processPendingEvents(ctx context.Context) {
	events, err := d.repo.GetPendingEvents(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("Failed to get pending events", zap.Error(err))
		return
	}

	if len(events) == 0 {
		return
	}

	d.logger.Debug("Processing pending events",
		zap.Int("count", len(events)),
	)

	for _, event := range events {
		if err := d.publishEvent(ctx, event); err != nil {
			d.logger.Error("Failed to publish event",
				zap.Int64("event_id", event.ID),
				zap.String("routing_key", event.RoutingKey),
				zap.Error(err),
			)
			metrics.IncrementOutboxDispatch("failed")

			retryable, errorType := util.IsRetryableError(err)
			if !retryable {
				// Hopeless event: park it on the DLQ for inspection.
				d.logger.Warn("Non-retryable publish error, sending to DLQ",
					zap.Int64("event_id", event.ID),
					zap.String("error_type", errorType),
				)
				if dlqErr := d.publisher.PublishToDLQ(event.RoutingKey, event.Payload, err.Error()); dlqErr != nil {
					d.logger.Error("Failed to publish event to DLQ",
						zap.Int64("event_id", event.ID),
						zap.Error(dlqErr),
					)
				}
				if deadErr := d.repo.MarkAsDead(ctx, event.ID); deadErr != nil {
					d.logger.Error("Failed to mark event as dead",
						zap.Int64("event_id", event.ID),
						zap.Error(deadErr),
					)
				}
				continue
			}

			if err := d.repo.MarkAsFailed(ctx, event.ID, d.maxRetries); err != nil {
				d.logger.Error("Failed to mark event as failed",
					zap.Int64("event_id", event.ID),
					zap.Error(err),
				)
			}
			continue
		}

		if err := d.repo.MarkAsSent(ctx, event.ID); err != nil {
			d.logger.Error("Failed to mark event as sent",
				zap.Int64("event_id", event.ID),
				zap.Error(err),
			)
		} else {
			metrics.IncrementOutboxDispatch("sent")
			d.logger.Debug("Event published successfully",
				zap.Int64("event_id", event.ID),
				zap.String("routing_key", event.RoutingKey),
			)
		}
	}
}

func (d *Dispatcher) publishEvent(ctx context.Context, event *Event) error {
	var payload interface{}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	ctx = extractTraceID(ctx, event.Payload)
	return d.breaker.Execute(func() error {
		return d.publisher.PublishWithContext(ctx, event.RoutingKey, payload)
	})
}

// extractTraceID lifts a trace_id embedded in the payload into ctx so the
// publish carries it forward.
func extractTraceID(ctx context.Context, payload json.RawMessage) context.Context {
	var payloadMap map[string]interface{}
	if err := json.Unmarshal(payload, &payloadMap); err != nil {
		return ctx
	}
	if traceID, ok := payloadMap[trace.TraceIDKey].(string); ok && traceID != "" {
		return trace.WithContext(ctx, traceID)
	}
	return ctx
}

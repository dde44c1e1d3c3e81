package worker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// RetryAttempts are immediate publish attempts within one batch.
	RetryAttempts int
	RetryDelay    time.Duration
	// MaxRetries is how many batches may retry an event before it is failed.
	MaxRetries int
	Channel    string
}

type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	sleep   func(time.Duration)
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) (*OutboxProcessor, error) {
	switch {
	case config.BatchSize <= 0:
		return nil, fmt.Errorf("batch size must be greater than 0")
	case config.RetryAttempts <= 0:
		return nil, fmt.Errorf("retry attempts must be greater than 0")
	case config.RetryDelay <= 0:
		return nil, fmt.Errorf("retry delay must be greater than 0")
	case config.MaxRetries <= 0:
		return nil, fmt.Errorf("max retries must be greater than 0")
	case config.Channel == "":
		return nil, fmt.Errorf("channel is required")
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
		sleep:   time.Sleep,
	}, nil
}

// ProcessBatch claims up to BatchSize due events and publishes them. Failures
// of individual events are recorded on the event and do not fail the batch.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEventsWithLock(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error(err, "Failed to process event",
				"event_id", event.ID.String(),
				"event_type", event.EventType)
		}
	}

	return nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	msg := messaging.Message{
		ID:      event.ID.String(),
		Type:    event.EventType,
		Payload: event.Payload,
	}

	err := p.retry(event.EventType, func() error {
		return p.broker.Publish(ctx, p.config.Channel, msg)
	})
	if err == nil {
		p.metrics.OutboxEventsProcessed.Inc()
		if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil, nil); err != nil {
			return fmt.Errorf("failed to mark event processed: %w", err)
		}
		return nil
	}

	p.metrics.OutboxEventsFailed.Inc()
	errStr := err.Error()

	if event.RetryCount+1 >= p.config.MaxRetries {
		if updateErr := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusFailed, &errStr, nil); updateErr != nil {
			p.logger.Error(updateErr, "Failed to update event status", "event_id", event.ID.String())
		}
		return err
	}

	retryAt := p.now().Add(p.backoff(event.RetryCount))
	if updateErr := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusRetry, &errStr, &retryAt); updateErr != nil {
		p.logger.Error(updateErr, "Failed to update event status", "event_id", event.ID.String())
	}
	return err
}

// backoff doubles the delay for every earlier retry, capped at one hour.
func (p *OutboxProcessor) backoff(retries int) time.Duration {
	d := time.Duration(float64(p.config.RetryDelay) * math.Pow(2, float64(retries)))
	if d > time.Hour || d <= 0 {
		return time.Hour
	}
	return d
}

func (p *OutboxProcessor) retry(eventType string, fn func() error) error {
	var err error
	for i := 0; i < p.config.RetryAttempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < p.config.RetryAttempts-1 {
			p.metrics.OutboxRetries.WithLabelValues(eventType).Inc()
			p.sleep(p.config.RetryDelay)
		}
	}
	return err
}

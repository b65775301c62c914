package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/rain-predict-service/internal/domain"
	"github.com/couchcryptid/rain-predict-service/internal/observability"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer turns a raw prediction request into a serialized result.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline consumes prediction requests, classifies them and publishes the results.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil while the pipeline is running and its last
// extract succeeded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("prediction pipeline is not consuming")
	}
	return nil
}

// Run consumes request batches until ctx is cancelled. Extract and publish
// failures pause the loop with a growing delay instead of returning.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	p.ready.Store(true)
	defer func() {
		p.ready.Store(false)
		p.metrics.PipelineRunning.Set(0)
	}()

	retry := newRetryBackoff(200*time.Millisecond, 5*time.Second)
	for ctx.Err() == nil {
		if !p.runCycle(ctx, retry) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// runCycle pulls one batch of requests, classifies it and publishes the
// results. It reports whether the loop should continue.
func (p *Pipeline) runCycle(ctx context.Context, retry *retryBackoff) bool {
	start := time.Now()

	requests, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.ready.Store(false)
		p.logger.Error("fetching prediction requests failed", "error", err, "retry_in", retry.current)
		return retry.wait(ctx)
	}
	p.ready.Store(true)
	if len(requests) == 0 {
		return true
	}

	p.metrics.MessagesConsumed.Add(float64(len(requests)))
	p.metrics.BatchSize.Observe(float64(len(requests)))
	retry.reset()

	published, err := p.classifyAndPublish(ctx, requests)
	if err != nil {
		p.logger.Error("publishing predictions failed", "error", err, "retry_in", retry.current)
		return retry.wait(ctx)
	}
	if published > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	}
	return true
}

// classifyAndPublish predicts every request in the batch and writes the
// results in one call. Rejected requests are committed immediately so they
// are never redelivered; accepted ones are committed only after the write
// succeeds.
func (p *Pipeline) classifyAndPublish(ctx context.Context, requests []domain.RawEvent) (int, error) {
	results := make([]domain.OutputEvent, 0, len(requests))
	accepted := make([]domain.RawEvent, 0, len(requests))

	for _, req := range requests {
		out, err := p.transformer.Transform(ctx, req)
		if err != nil {
			p.logger.Warn("prediction rejected, skipping message",
				"error", err,
				"kind", domain.ErrorKind(err),
				"topic", req.Topic,
				"partition", req.Partition,
				"offset", req.Offset,
			)
			p.commit(ctx, req)
			continue
		}
		results = append(results, out)
		accepted = append(accepted, req)
	}
	if len(results) == 0 {
		return 0, nil
	}

	if err := p.loader.LoadBatch(ctx, results); err != nil {
		return 0, fmt.Errorf("write %d predictions: %w", len(results), err)
	}
	p.metrics.MessagesProduced.Add(float64(len(results)))

	for _, req := range accepted {
		p.commit(ctx, req)
	}
	return len(results), nil
}

func (p *Pipeline) commit(ctx context.Context, req domain.RawEvent) {
	if req.Commit == nil {
		return
	}
	if err := req.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", req.Topic, "partition", req.Partition, "offset", req.Offset)
	}
}

// retryBackoff doubles the pause after each consecutive failure, up to max.
type retryBackoff struct {
	initial, max, current time.Duration
}

func newRetryBackoff(initial, maxDelay time.Duration) *retryBackoff {
	return &retryBackoff{initial: initial, max: maxDelay, current: initial}
}

func (b *retryBackoff) reset() { b.current = b.initial }

// wait sleeps for the current delay and grows it. It returns false if ctx
// ends first.
func (b *retryBackoff) wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	timer := time.NewTimer(b.current)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	b.current = min(b.current*2, b.max)
	return true
}

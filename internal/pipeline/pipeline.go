package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/observability"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer decodes a raw event into a weather report.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.WeatherReport, error)
}

// BatchLoader writes multiple weather reports to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, reports []domain.WeatherReport) error
}

// Retry delay after extract or load failures: starts at 200ms and doubles
// up to 5s. A successful extract resets it.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline runs the extract → decode → publish loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int

	// published is set once the first report reaches the sink.
	published atomic.Bool
	backoff   time.Duration
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
		backoff:     initialBackoff,
	}
}

// CheckReadiness returns nil once the pipeline has published at least one
// report.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.published.Load() {
		return errors.New("pipeline has not published any reports yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled. Errors from
// the source or sink are retried with backoff, so Run only returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for ctx.Err() == nil {
		if !p.runBatch(ctx) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// batchResult counts what happened to the events of one batch.
type batchResult struct {
	published int
	skipped   int
}

// runBatch processes one batch. It returns false when the pipeline should stop.
func (p *Pipeline) runBatch(ctx context.Context) bool {
	start := time.Now()

	events, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.wait(ctx)
	}
	if len(events) == 0 {
		return true
	}

	p.backoff = initialBackoff
	p.metrics.MessagesConsumed.Add(float64(len(events)))
	p.metrics.BatchSize.Observe(float64(len(events)))

	res, err := p.decodeAndPublish(ctx, events)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("load batch failed", "error", err, "batch_size", len(events)-res.skipped)
		return p.wait(ctx)
	}

	if res.published > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.published.Store(true)
	}
	p.logger.Debug("batch done",
		"published", res.published,
		"skipped", res.skipped,
		"duration", time.Since(start),
	)
	return true
}

// decodeAndPublish transforms each event and publishes the successes in one
// load. Events that fail to decode are committed immediately. Decoded events
// are committed only after a successful load.
func (p *Pipeline) decodeAndPublish(ctx context.Context, events []domain.RawEvent) (batchResult, error) {
	var res batchResult
	reports := make([]domain.WeatherReport, 0, len(events))
	decoded := make([]domain.RawEvent, 0, len(events))

	for _, raw := range events {
		report, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("decode failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			res.skipped++
			continue
		}
		reports = append(reports, report)
		decoded = append(decoded, raw)
	}

	if len(reports) == 0 {
		return res, nil
	}
	if err := p.loader.LoadBatch(ctx, reports); err != nil {
		return res, err
	}

	p.metrics.MessagesProduced.Add(float64(len(reports)))
	for _, raw := range decoded {
		p.commit(ctx, raw)
	}
	res.published = len(reports)
	return res, nil
}

// wait sleeps for the current backoff and doubles it. It returns false if
// the context ends first.
func (p *Pipeline) wait(ctx context.Context) bool {
	timer := time.NewTimer(p.backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	p.backoff = min(p.backoff*2, maxBackoff)
	return true
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/observability"
)

// MetarTransformer implements Transformer: it extracts the report from a
// raw event, decodes it, and flattens the observation.
type MetarTransformer struct {
	decoder Decoder
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a MetarTransformer around the given decoder.
func NewTransformer(decoder Decoder, logger *slog.Logger, metrics *observability.Metrics) *MetarTransformer {
	return &MetarTransformer{
		decoder: decoder,
		logger:  logger,
		metrics: metrics,
	}
}

func (t *MetarTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.WeatherReport, error) {
	report, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.WeatherReport{}, err
	}

	start := time.Now()
	obs, err := t.decoder.Decode(ctx, report)
	t.metrics.DecodeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		t.metrics.DecodeOutcomes.WithLabelValues("failed").Inc()
		return domain.WeatherReport{}, fmt.Errorf("decode report: %w", err)
	}

	if n := len(obs.UnparsedGroups); n > 0 {
		t.metrics.UnparsedGroups.WithLabelValues("body").Add(float64(n))
	}
	if n := len(obs.UnparsedRemarks); n > 0 {
		t.metrics.UnparsedGroups.WithLabelValues("remarks").Add(float64(n))
	}

	out := domain.BuildWeatherReport(obs)
	if out.DecodeCompleted {
		t.metrics.DecodeOutcomes.WithLabelValues("complete").Inc()
	} else {
		t.metrics.DecodeOutcomes.WithLabelValues("incomplete").Inc()
		t.logger.Debug("report decoded with unparsed groups",
			"station", out.Station,
			"unparsed", out.UnparsedGroups,
			"offset", raw.Offset,
		)
	}
	return out, nil
}

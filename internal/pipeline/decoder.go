package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/metar"
)

// Decoder turns a raw report into an observation.
type Decoder interface {
	Decode(ctx context.Context, report domain.RawReport) (*metar.Observation, error)
}

// MetarDecoder implements Decoder with the METAR grammar.
type MetarDecoder struct {
	strict bool
	logger *slog.Logger
}

// NewMetarDecoder creates a decoder. In lenient mode (strict false) reports
// with unrecognized groups still decode and carry their problems as warnings.
func NewMetarDecoder(strict bool, logger *slog.Logger) *MetarDecoder {
	return &MetarDecoder{strict: strict, logger: logger}
}

func (d *MetarDecoder) Decode(ctx context.Context, report domain.RawReport) (*metar.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := append(report.DecodeOptions(),
		metar.WithStrict(d.strict),
		metar.WithLogger(d.logger),
	)
	return metar.Decode(report.Code, opts...)
}

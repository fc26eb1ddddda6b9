package pipeline_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/metar"
	"github.com/couchcryptid/metar-etl/internal/observability"
	"github.com/couchcryptid/metar-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var received = time.Date(2024, time.June, 20, 12, 0, 0, 0, time.UTC)

func newTransformer(strict bool) (*pipeline.MetarTransformer, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	dec := pipeline.NewMetarDecoder(strict, slog.Default())
	return pipeline.NewTransformer(dec, slog.Default(), metrics), metrics
}

func TestMetarTransformer_Transform(t *testing.T) {
	tfm, metrics := newTransformer(true)

	raw := domain.RawEvent{
		Value:     []byte(`{"raw_text":"METAR KEWR 111851Z VRB03G19KT 2SM TSRA BR FEW015 BKN040CB 18/16 A2992","utc_offset_minutes":-240}`),
		Timestamp: received,
	}
	out, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "KEWR", out.Station)
	assert.Equal(t, time.Date(2024, time.June, 11, 18, 51, 0, 0, time.UTC), out.ObservedAt)
	assert.Equal(t, -240, out.UTCOffsetMinutes)
	assert.Equal(t, "IFR", out.FlightCategory)
	assert.True(t, out.DecodeCompleted)
	require.NotNil(t, out.Measurements.CeilingFt)
	assert.InDelta(t, 4000, *out.Measurements.CeilingFt, 1e-9)

	assert.InDelta(t, 1, counterValue(t, metrics.DecodeOutcomes.WithLabelValues("complete")), 1e-9)
}

func TestMetarTransformer_Transform_BareLine(t *testing.T) {
	tfm, _ := newTransformer(true)

	out, err := tfm.Transform(context.Background(), domain.RawEvent{
		Value:     []byte("SPECI KJFK 191251Z 31015KT 10SM SCT250 22/09 A3002="),
		Timestamp: received,
	})
	require.NoError(t, err)
	assert.Equal(t, "KJFK", out.Station)
	assert.Equal(t, "SPECI", out.ReportType)
	assert.Equal(t, "VFR", out.FlightCategory)
}

func TestMetarTransformer_Transform_Lenient(t *testing.T) {
	tfm, metrics := newTransformer(false)

	out, err := tfm.Transform(context.Background(), domain.RawEvent{
		Value:     []byte("KEWR 111851Z 09010KT FOO BAR"),
		Timestamp: received,
	})
	require.NoError(t, err)
	assert.False(t, out.DecodeCompleted)
	assert.Equal(t, []string{"FOO", "BAR"}, out.UnparsedGroups)

	assert.InDelta(t, 1, counterValue(t, metrics.DecodeOutcomes.WithLabelValues("incomplete")), 1e-9)
	assert.InDelta(t, 2, counterValue(t, metrics.UnparsedGroups.WithLabelValues("body")), 1e-9)
}

func TestMetarTransformer_Transform_Strict(t *testing.T) {
	tfm, metrics := newTransformer(true)

	_, err := tfm.Transform(context.Background(), domain.RawEvent{
		Value:     []byte("KEWR 111851Z 09010KT FOO BAR"),
		Timestamp: received,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, metar.ErrUnparsedGroups)

	var perr *metar.ParserError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "body", perr.Group)

	assert.InDelta(t, 1, counterValue(t, metrics.DecodeOutcomes.WithLabelValues("failed")), 1e-9)
}

func TestMetarTransformer_Transform_InvalidEnvelope(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"empty", "   "},
		{"broken json", `{"raw_text":`},
		{"empty raw text", `{"raw_text":""}`},
		{"month out of range", `{"raw_text":"KEWR 111851Z 09010KT","month":13}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tfm, _ := newTransformer(true)
			_, err := tfm.Transform(context.Background(), domain.RawEvent{Value: []byte(tt.value)})
			require.Error(t, err)
		})
	}
}

func TestMetarDecoder_CancelledContext(t *testing.T) {
	dec := pipeline.NewMetarDecoder(true, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dec.Decode(ctx, domain.RawReport{Code: "KEWR 111851Z 09010KT"})
	assert.ErrorIs(t, err, context.Canceled)
}

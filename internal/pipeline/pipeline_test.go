package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/observability"
	"github.com/couchcryptid/metar-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

// mockExtractor hands out one batch per call, then blocks until the context
// is cancelled to simulate an idle topic.
type mockExtractor struct {
	batches [][]domain.RawEvent
	index   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockTransformer struct {
	failOn map[string]bool
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.WeatherReport, error) {
	if m.failOn[string(raw.Key)] {
		return domain.WeatherReport{}, errors.New("bad report")
	}
	return domain.WeatherReport{ID: string(raw.Key), RawText: string(raw.Value)}, nil
}

type mockLoader struct {
	mu       sync.Mutex
	failures int
	calls    int
	loaded   []domain.WeatherReport
	done     chan struct{}
}

func (m *mockLoader) LoadBatch(_ context.Context, reports []domain.WeatherReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failures {
		return errors.New("broker unavailable")
	}
	m.loaded = append(m.loaded, reports...)
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	return nil
}

func (m *mockLoader) ids() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.loaded))
	for _, r := range m.loaded {
		ids = append(ids, r.ID)
	}
	return ids
}

// commitRecorder collects the offsets whose Commit callback ran.
type commitRecorder struct {
	mu      sync.Mutex
	offsets []int64
}

func (c *commitRecorder) event(key string, offset int64) domain.RawEvent {
	return domain.RawEvent{
		Key:    []byte(key),
		Value:  []byte("METAR " + key + " 101651Z 21010KT 10SM FEW030 24/18 A3001"),
		Topic:  "raw-metar-reports",
		Offset: offset,
		Commit: func(_ context.Context) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.offsets = append(c.offsets, offset)
			return nil
		},
	}
}

func (c *commitRecorder) committed() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.offsets...)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	commits := &commitRecorder{}
	ext := &mockExtractor{batches: [][]domain.RawEvent{{
		commits.event("KEWR", 1),
		commits.event("KJFK", 2),
	}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	if diff := cmp.Diff([]string{"KEWR", "KJFK"}, ldr.ids()); diff != "" {
		t.Fatalf("loaded reports mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int64{1, 2}, commits.committed())
	require.NoError(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 2, counterValue(t, metrics.MessagesConsumed), 1e-9)
	assert.InDelta(t, 2, counterValue(t, metrics.MessagesProduced), 1e-9)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, ldr, slog.Default(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.ids())
	require.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_TransformErrorSkipsAndCommits(t *testing.T) {
	commits := &commitRecorder{}
	ext := &mockExtractor{batches: [][]domain.RawEvent{{
		commits.event("BAD", 7),
		commits.event("KEWR", 8),
	}}}
	tfm := &mockTransformer{failOn: map[string]bool{"BAD": true}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, []string{"KEWR"}, ldr.ids())
	assert.ElementsMatch(t, []int64{7, 8}, commits.committed())
	assert.InDelta(t, 1, counterValue(t, metrics.TransformErrors), 1e-9)
}

func TestPipeline_Run_AllTransformsFail(t *testing.T) {
	commits := &commitRecorder{}
	ext := &mockExtractor{batches: [][]domain.RawEvent{{commits.event("BAD", 3)}}}
	tfm := &mockTransformer{failOn: map[string]bool{"BAD": true}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.ids())
	assert.Equal(t, 0, ldr.calls)
	assert.Equal(t, []int64{3}, commits.committed())
	require.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_LoadErrorRetriesWithoutCommit(t *testing.T) {
	commits := &commitRecorder{}
	first := commits.event("KEWR", 11)
	// A failed load leaves the offset uncommitted so the broker redelivers it.
	ext := &mockExtractor{batches: [][]domain.RawEvent{{first}, {first}}}
	ldr := &mockLoader{failures: 1, done: make(chan struct{})}
	done := ldr.done

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("pipeline did not retry the load")
	}
	cancel()
	require.NoError(t, <-errCh)

	assert.Equal(t, []string{"KEWR"}, ldr.ids())
	assert.Equal(t, 2, ldr.calls)
	assert.Equal(t, []int64{11}, commits.committed())
}

func TestPipeline_Run_StopsDuringBackoff(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.RawEvent{{{Key: []byte("KEWR")}}}}
	ldr := &mockLoader{failures: 100}

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, p.Run(ctx))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, ldr.calls)
}

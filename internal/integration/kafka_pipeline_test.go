//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/metar-etl/internal/adapter/kafka"
	"github.com/couchcryptid/metar-etl/internal/config"
	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/observability"
	"github.com/couchcryptid/metar-etl/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSourceTopic = "test-source"
	testSinkTopic   = "test-sink"
)

var receivedAt = time.Date(2024, time.June, 10, 17, 30, 0, 0, time.UTC)

// decodedMessage holds a deserialized message read from the sink topic.
type decodedMessage struct {
	Report  domain.WeatherReport
	Key     string
	Headers map[string]string
}

// readDecoded reads a single message from the sink consumer and deserializes it.
func readDecoded(ctx context.Context, t *testing.T, consumer *kafkago.Reader) decodedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var report domain.WeatherReport
	require.NoError(t, json.Unmarshal(msg.Value, &report), "unmarshal sink message")

	return decodedMessage{
		Report:  report,
		Key:     string(msg.Key),
		Headers: headers,
	}
}

func envelope(t *testing.T, code string) []byte {
	t.Helper()
	payload, err := json.Marshal(domain.RawRecord{RawText: code, Month: 6, Year: 2024})
	require.NoError(t, err)
	return payload
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func newSinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader and
// kafka.Writer round-trip a report through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-reader")

	reports := loadMockData(t)
	payload := envelope(t, reports[0]) // KEWR routine report

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("KEWR"),
		Value: payload,
		Time:  receivedAt,
	}))

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("KEWR"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(pipeline.NewMetarDecoder(false, discardLogger()), discardLogger(), metrics)
	report, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.WeatherReport{report}))

	dm := readDecoded(ctx, t, newSinkConsumer(t, broker))
	assert.Equal(t, report.ID, dm.Key)
	assert.Equal(t, "KEWR", dm.Headers["station"])
	assert.Equal(t, "METAR", dm.Headers["report_type"])
	_, err = time.Parse(time.RFC3339, dm.Headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")

	assert.Equal(t, "KEWR", dm.Report.Station)
	assert.Equal(t, time.Date(2024, time.June, 10, 16, 51, 0, 0, time.UTC), dm.Report.ObservedAt)
	assert.Equal(t, "VFR", dm.Report.FlightCategory)
	assert.Contains(t, dm.Report.Summary, "station: KEWR")
}

// TestPipelineEndToEnd wires Reader, Transformer (with the decode cache) and
// Writer against real Kafka and checks every sample report is published.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-pipeline")
	reports := loadMockData(t)

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(reports))
	for i, code := range reports {
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(fmt.Sprintf("report-%d", i)),
			Value: envelope(t, code),
			Time:  receivedAt,
		})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	decoder := pipeline.NewCachedDecoder(pipeline.NewMetarDecoder(false, discardLogger()), 100, metrics)
	transformer := pipeline.NewTransformer(decoder, discardLogger(), metrics)
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	received := make([]decodedMessage, 0, len(reports))
	for len(received) < len(reports) {
		received = append(received, readDecoded(ctx, t, consumer))
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	require.Len(t, received, len(reports))
	stations := map[string]int{}
	for _, dm := range received {
		stations[dm.Report.Station]++

		assert.NotEmpty(t, dm.Headers["station"], "missing station header")
		_, err := time.Parse(time.RFC3339, dm.Headers["processed_at"])
		assert.NoError(t, err, "invalid processed_at format")
		assert.False(t, dm.Report.TimeBucket.IsZero(), "missing time_bucket")
		assert.NotEmpty(t, dm.Report.Summary)
	}
	assert.Equal(t, 2, stations["KEWR"], "KEWR routine and special reports")
	assert.Equal(t, 1, stations["EGLL"])

	// Spot-check the special report: thunderstorm under a CB ceiling with
	// 3 SM visibility.
	var foundSpeci bool
	for _, dm := range received {
		if dm.Report.ReportType != "SPECI" {
			continue
		}
		foundSpeci = true
		assert.Equal(t, "KEWR", dm.Report.Station)
		assert.Equal(t, "MVFR", dm.Report.FlightCategory)
		require.NotNil(t, dm.Report.Measurements.CeilingFt)
		assert.InDelta(t, 1500, *dm.Report.Measurements.CeilingFt, 1e-9)
		assert.Equal(t, time.Date(2024, time.June, 10, 17, 0, 0, 0, time.UTC), dm.Report.TimeBucket)
		break
	}
	assert.True(t, foundSpeci, "expected to find the KEWR SPECI report")
}

// TestPipelineTransformError verifies that an undecodable message (poison
// pill) is skipped and the pipeline continues with valid messages.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-poison")
	reports := loadMockData(t)

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte(`{"raw_text":`), Time: receivedAt},
		kafkago.Message{Key: []byte("garbage"), Value: []byte("NOT A WEATHER REPORT"), Time: receivedAt},
		kafkago.Message{Key: []byte("good"), Value: envelope(t, reports[0]), Time: receivedAt},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(pipeline.NewMetarDecoder(true, discardLogger()), discardLogger(), metrics)
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	dm := readDecoded(ctx, t, consumer)
	assert.Equal(t, "KEWR", dm.Report.Station)

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}

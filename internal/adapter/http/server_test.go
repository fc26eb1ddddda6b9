package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	httpadapter "github.com/couchcryptid/metar-etl/internal/adapter/http"
	"github.com/couchcryptid/metar-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(readyErr error) *httpadapter.Server {
	decoder := pipeline.NewMetarDecoder(true, slog.Default())
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, decoder, slog.Default())
}

func get(t *testing.T, srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(fmt.Errorf("not ready yet")), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestDecode(t *testing.T) {
	code := "METAR KEWR 101651Z 21010KT 10SM FEW030 24/18 A3001"
	rec := get(t, newTestServer(nil), "/decode?month=6&year=2024&code="+url.QueryEscape(code))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Summary string `json:"summary"`
		Report  struct {
			Station        string `json:"station"`
			ObservedAt     string `json:"observed_at"`
			FlightCategory string `json:"flight_category"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Summary, "station: KEWR")
	assert.Equal(t, "KEWR", body.Report.Station)
	assert.Equal(t, "2024-06-10T16:51:00Z", body.Report.ObservedAt)
	assert.Equal(t, "VFR", body.Report.FlightCategory)
}

func TestDecode_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing code", "/decode"},
		{"bad month", "/decode?code=KEWR&month=13"},
		{"non-numeric year", "/decode?code=KEWR&year=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(nil), tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestDecode_UnprocessableReport(t *testing.T) {
	code := "KEWR 101651Z 21010KT FOO BAR"
	rec := get(t, newTestServer(nil), "/decode?code="+url.QueryEscape(code))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "body", body["group"])
	assert.Contains(t, body["error"], "FOO BAR")
}

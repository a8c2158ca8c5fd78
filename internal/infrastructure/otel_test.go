package infrastructure

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myxpicks/internal/config"
	"myxpicks/internal/shared/testutil"
)

func scrape(t *testing.T, providers *OTelProviders) string {
	t.Helper()
	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestInitializeOTel_Prometheus(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := InitializeOTel(config.OTelConfig{
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1,
	}, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.MeterProvider)
	require.NotNil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer, "tracing disabled still yields a tracer")

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	require.NoError(t, RegisterRuntimeGauges(providers.Meter, time.Now()))

	ctx := context.Background()
	RecordParse(ctx, metrics, map[string]int{"primary": 2, "fallback": 1}, 3)
	RecordRefresh(ctx, metrics, OutcomeSuccess, 1500*time.Millisecond)
	RecordPruned(ctx, metrics, 4)

	body := scrape(t, providers)
	assert.Contains(t, body, "picks_parsed_total{")
	assert.Contains(t, body, `matcher="primary"`)
	assert.Contains(t, body, `matcher="fallback"`)
	assert.Contains(t, body, "report_lines_skipped_total")
	assert.Contains(t, body, "refresh_runs_total{")
	assert.Contains(t, body, `outcome="success"`)
	assert.Contains(t, body, "refresh_duration_seconds_bucket")
	assert.Contains(t, body, "history_pruned_total")
	assert.Contains(t, body, "runtime_goroutines")
}

func TestInitializeOTel_Separate(t *testing.T) {
	cfg := config.OTelConfig{TraceExporter: "none", MetricExporter: "prometheus"}

	first, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)
	defer first.Shutdown(context.Background())

	second, err := InitializeOTel(cfg, nil)
	require.NoError(t, err, "each provider set owns its registry")
	defer second.Shutdown(context.Background())
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(config.OTelConfig{TraceExporter: "none", MetricExporter: "none"}, nil)
	require.NoError(t, err)

	assert.Nil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.MeterProvider)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	RecordRefresh(context.Background(), metrics, OutcomeFailure, time.Second)

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnknownExporter(t *testing.T) {
	_, err := InitializeOTel(config.OTelConfig{TraceExporter: "otlp", MetricExporter: "none"}, nil)
	assert.Error(t, err)

	_, err = InitializeOTel(config.OTelConfig{TraceExporter: "none", MetricExporter: "statsd"}, nil)
	assert.Error(t, err)
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordParse(ctx, nil, map[string]int{"primary": 1}, 1)
		RecordRefresh(ctx, nil, OutcomeSuccess, time.Second)
		RecordPruned(ctx, nil, 1)
		RecordError(ctx, errors.New("no span"))
	})
}

func TestCollectRuntimeStats(t *testing.T) {
	stats := CollectRuntimeStats(time.Now().Add(-time.Minute))
	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.HeapAllocBytes)
	assert.GreaterOrEqual(t, stats.UptimeSeconds, 60.0)
}

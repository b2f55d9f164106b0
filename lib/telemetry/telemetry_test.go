package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	require.NoError(t, Config{}.Validate())
	require.NoError(t, Config{
		Traces:      ExporterConfig{Protocol: ProtocolHttp, Endpoint: "http://localhost:4318/v1/traces"},
		SampleRatio: 0.25,
	}.Validate())

	require.ErrorContains(t, Config{Traces: ExporterConfig{Protocol: "udp", Endpoint: "x"}}.Validate(), "unknown protocol")
	require.ErrorContains(t, Config{Metrics: ExporterConfig{Protocol: ProtocolGrpc}}.Validate(), "missing endpoint")
	require.ErrorContains(t, Config{SampleRatio: 2}.Validate(), "sample_ratio")
}

func TestMetricInterval(t *testing.T) {
	require.Equal(t, defaultMetricInterval, Config{}.metricInterval())
	require.Equal(t, 3*time.Second, Config{MetricIntervalSeconds: 3}.metricInterval())
}

func TestSetupWithoutExporters(t *testing.T) {
	tel, err := Setup(context.Background(), "test:telemetry", Config{})
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)
	require.NotNil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestInstrumentProcess(t *testing.T) {
	stats, err := InstrumentProcess(context.Background())
	require.NoError(t, err)
	defer stats.Stop()

	rss, _, err := stats.Sample(context.Background())
	require.NoError(t, err)
	require.NotZero(t, rss)
}

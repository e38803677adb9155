package config

import (
	"bvvassist-backend/internal/scrapers/oparl"
	"bvvassist-backend/lib/telemetry"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, Defaults(), c)
	require.Equal(t, oparl.DefaultRetryPolicy, c.RetryPolicy())
	require.Equal(t, 30*time.Second, c.Timeout())
	require.Zero(t, c.CacheTtl())
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, FileName), []byte(`{
		log_level: "debug",
		retry: {max_retries: 5, delay_seconds: 0.5},
		cache: {size: 512, ttl_seconds: 3600},
	}`), 0o644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "bvvassist.local.json5"), []byte(`{
		system_url_template: "http://localhost:9000/%s/system",
	}`), 0o644)
	require.NoError(t, err)
	t.Chdir(dir)

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "debug", c.LogLevel)
	require.Equal(t, oparl.RetryPolicy{MaxRetries: 5, Delay: 500 * time.Millisecond}, c.RetryPolicy())
	require.Equal(t, 512, c.Cache.Size)
	require.Equal(t, time.Hour, c.CacheTtl())
	require.Equal(t, "http://localhost:9000/%s/system", c.SystemUrlTemplate)
	require.Equal(t, Defaults().PlenaryClassifications, c.PlenaryClassifications)
	require.Equal(t, 8080, c.Server.Port)
}

func TestValidate(t *testing.T) {
	c := Defaults()
	c.SystemUrlTemplate = "https://example.org/system"
	require.Error(t, c.Validate())

	c = Defaults()
	c.Retry.MaxRetries = -1
	require.Error(t, c.Validate())

	require.NoError(t, Defaults().Validate())
}

func TestOtlpSetup(t *testing.T) {
	c := Defaults()
	setup := c.OtlpSetup("bvv-server")
	require.False(t, setup.Enabled())
	require.Equal(t, 5*time.Second, setup.MetricInterval)
	require.Equal(t, 30*time.Second, c.PerfStatsInterval())

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, FileName), []byte(`{
		telemetry: {
			traces: {http_endpoint: "http://collector:4318/v1/traces", headers: {authorization: "token"}},
			metrics: {grpc_endpoint: "http://collector:4317", http_endpoint: "http://collector:4318"},
		},
	}`), 0o644)
	require.NoError(t, err)
	t.Chdir(dir)

	c, err = Load()
	require.NoError(t, err)
	setup = c.OtlpSetup("bvv-server")
	require.Equal(t, "bvv-server", setup.ServiceName)
	require.Equal(t, telemetry.Endpoint{
		Protocol: telemetry.ProtocolHttp,
		Url:      "http://collector:4318/v1/traces",
		Headers:  map[string]string{"authorization": "token"},
	}, setup.Traces)
	require.Equal(t, telemetry.ProtocolGrpc, setup.Metrics.Protocol)
	require.Equal(t, "http://collector:4317", setup.Metrics.Url)

	c.Telemetry.Traces.HttpEndpoint = "collector:4318"
	require.Error(t, c.Validate())
}

package config

import (
	"bvvassist-backend/internal/council"
	"bvvassist-backend/internal/district"
	"bvvassist-backend/internal/scrapers/oparl"
	"bvvassist-backend/lib/configutil"
	"bvvassist-backend/lib/telemetry"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// FileName is searched for from the working directory upwards, a bvvassist.local.json5 next to
// it overrides single fields.
const FileName = "bvvassist.json5"

type RetryConfig struct {
	MaxRetries   int     `json:"max_retries"`
	DelaySeconds float64 `json:"delay_seconds"`
}

type CacheConfig struct {
	// Size bounds the entries per cache, 0 means unbounded.
	Size int `json:"size"`
	// TtlSeconds expires entries, 0 keeps them for the lifetime of the process.
	TtlSeconds int `json:"ttl_seconds"`
}

type ServerConfig struct {
	Port int `json:"port"`
	// PurgeSchedule is a cron expression for dropping the cache, empty disables it.
	PurgeSchedule string `json:"purge_schedule"`
}

// OtlpEndpoint exports one otel signal. GrpcEndpoint wins over HttpEndpoint, neither set
// disables the signal.
type OtlpEndpoint struct {
	GrpcEndpoint string            `json:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

func (e OtlpEndpoint) endpoint() telemetry.Endpoint {
	switch {
	case e.GrpcEndpoint != "":
		return telemetry.Endpoint{Protocol: telemetry.ProtocolGrpc, Url: e.GrpcEndpoint, Headers: e.Headers}
	case e.HttpEndpoint != "":
		return telemetry.Endpoint{Protocol: telemetry.ProtocolHttp, Url: e.HttpEndpoint, Headers: e.Headers}
	default:
		return telemetry.Endpoint{}
	}
}

type TelemetryConfig struct {
	Traces                OtlpEndpoint `json:"traces"`
	Metrics               OtlpEndpoint `json:"metrics"`
	MetricIntervalSeconds int          `json:"metric_interval_seconds"`
	// PerfStatsIntervalSeconds is how often the server records cpu and memory gauges, a negative
	// value disables it.
	PerfStatsIntervalSeconds int `json:"perf_stats_interval_seconds"`
}

type Config struct {
	LogLevel               string          `json:"log_level"`
	TimeoutSeconds         int             `json:"timeout_seconds"`
	RequestsPerSecond      float64         `json:"requests_per_second"`
	Retry                  RetryConfig     `json:"retry"`
	SystemUrlTemplate      string          `json:"system_url_template"`
	PlenaryClassifications []string        `json:"plenary_classifications"`
	OrganizationWorkers    int             `json:"organization_workers"`
	Cache                  CacheConfig     `json:"cache"`
	Server                 ServerConfig    `json:"server"`
	Telemetry              TelemetryConfig `json:"telemetry"`
	// DumpHttpDir gets a new http-* directory per process with a text file per upstream response,
	// empty disables it.
	DumpHttpDir string `json:"dump_http_dir"`
}

// Defaults mirror the behavior of the upstream-facing pipeline when nothing is configured.
func Defaults() Config {
	return Config{
		LogLevel:          "info",
		TimeoutSeconds:    30,
		RequestsPerSecond: 10,
		Retry: RetryConfig{
			MaxRetries:   oparl.DefaultRetryPolicy.MaxRetries,
			DelaySeconds: oparl.DefaultRetryPolicy.Delay.Seconds(),
		},
		SystemUrlTemplate:      district.DefaultSystemUrlTemplate,
		PlenaryClassifications: council.DefaultPlenaryClassifications,
		OrganizationWorkers:    8,
		Server: ServerConfig{
			Port:          8080,
			PurgeSchedule: "0 4 * * *",
		},
		Telemetry: TelemetryConfig{
			MetricIntervalSeconds:    5,
			PerfStatsIntervalSeconds: 30,
		},
	}
}

// Load reads FileName with Defaults filling every field it leaves out.
func Load() (Config, error) {
	c, err := configutil.ReadWithDefaults(FileName, Defaults())
	if err != nil {
		return c, err
	}
	return c, c.Validate()
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	if strings.Count(c.SystemUrlTemplate, "%s") != 1 {
		return fmt.Errorf("system_url_template must contain exactly one %%s: %q", c.SystemUrlTemplate)
	}
	if c.Retry.MaxRetries < 0 || c.Retry.DelaySeconds < 0 {
		return fmt.Errorf("retry values must not be negative")
	}
	if c.Cache.Size < 0 || c.Cache.TtlSeconds < 0 {
		return fmt.Errorf("cache values must not be negative")
	}
	for name, e := range map[string]OtlpEndpoint{"traces": c.Telemetry.Traces, "metrics": c.Telemetry.Metrics} {
		for _, raw := range []string{e.GrpcEndpoint, e.HttpEndpoint} {
			if raw == "" {
				continue
			}
			u, err := url.Parse(raw)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("telemetry.%s endpoint must be an absolute url: %q", name, raw)
			}
		}
	}
	return nil
}

// OtlpSetup is the otel export configuration of the process named serviceName.
func (c Config) OtlpSetup(serviceName string) telemetry.Config {
	return telemetry.Config{
		ServiceName:    serviceName,
		Traces:         c.Telemetry.Traces.endpoint(),
		Metrics:        c.Telemetry.Metrics.endpoint(),
		MetricInterval: time.Duration(c.Telemetry.MetricIntervalSeconds) * time.Second,
	}
}

func (c Config) PerfStatsInterval() time.Duration {
	return time.Duration(c.Telemetry.PerfStatsIntervalSeconds) * time.Second
}

func (c Config) RetryPolicy() oparl.RetryPolicy {
	return oparl.RetryPolicy{
		MaxRetries: c.Retry.MaxRetries,
		Delay:      time.Duration(c.Retry.DelaySeconds * float64(time.Second)),
	}
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) CacheTtl() time.Duration {
	return time.Duration(c.Cache.TtlSeconds) * time.Second
}

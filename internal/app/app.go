// Package app wires the pipeline components together from a Config.
package app

import (
	"bvvassist-backend/internal/agenda"
	"bvvassist-backend/internal/cache"
	"bvvassist-backend/internal/components/assert"
	"bvvassist-backend/internal/components/chrono"
	"bvvassist-backend/internal/components/metrics"
	"bvvassist-backend/internal/components/telemetry"
	"bvvassist-backend/internal/config"
	"bvvassist-backend/internal/council"
	"bvvassist-backend/internal/district"
	"bvvassist-backend/internal/scrapers/oparl"
	"bvvassist-backend/lib/restyutil"
	"context"
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	report_app_purge = "app.purge"
	report_app_dump  = "app.dump"
)

// App holds the long lived pipeline components of one process.
type App struct {
	Config     config.Config
	Metrics    *metrics.Metrics
	API        oparl.CachedClient
	Loader     district.Loader
	Searcher   agenda.Searcher
	Classifier council.Classifier
	Time       chrono.TimeAPI

	tel telemetry.API
}

// New builds an App. Metrics are registered with reg.
func New(tel telemetry.API, c config.Config, reg prometheus.Registerer, clock chrono.TimeAPI) *App {
	assert.NotNil(tel)
	assert.NotNil(reg)
	assert.NotNil(clock)

	m := metrics.New(reg)
	scoped := telemetry.NewScopedAPI("app", tel)

	clientOpts := oparl.ClientOptions{
		Timeout:           c.Timeout(),
		RequestsPerSecond: c.RequestsPerSecond,
		Metrics:           m,
	}
	if c.DumpHttpDir != "" {
		output, err := restyutil.NewDirectoryOutput(c.DumpHttpDir)
		if err != nil {
			scoped.ReportWarning(report_app_dump, err, c.DumpHttpDir)
		} else {
			scoped.ReportDebug(report_app_dump, output.Directory())
			clientOpts.Dump = output
		}
	}
	client := oparl.NewClient(tel, clientOpts)
	api := oparl.NewCachedClient(
		client,
		cache.New[json.RawMessage](tel, cache.Options{
			Name:    "fetch",
			Size:    c.Cache.Size,
			TTL:     c.CacheTtl(),
			Metrics: m,
		}),
		cache.New[[]json.RawMessage](tel, cache.Options{
			Name:    "collect",
			Size:    c.Cache.Size,
			TTL:     c.CacheTtl(),
			Metrics: m,
		}),
	)

	normalizer := council.NewNormalizer(tel, api, c.OrganizationWorkers)
	loader := district.NewLoader(tel, api, normalizer, district.LoaderOptions{
		SystemUrlTemplate: c.SystemUrlTemplate,
		Retry:             c.RetryPolicy(),
	})

	return &App{
		Config:     c,
		Metrics:    m,
		API:        api,
		Loader:     loader,
		Searcher:   agenda.NewSearcher(tel, api, c.OrganizationWorkers),
		Classifier: council.NewClassifier(c.PlenaryClassifications),
		Time:       clock,
		tel:        scoped,
	}
}

// Load resolves the district named by input and loads its snapshot.
func (a *App) Load(ctx context.Context, input string) (district.Snapshot, error) {
	d, err := district.Resolve(input)
	if err != nil {
		return district.Snapshot{}, err
	}
	snapshot, err := a.Loader.Load(ctx, d)
	if err != nil {
		return snapshot, fmt.Errorf("load district: %w", err)
	}
	return snapshot, nil
}

// GenderHistory runs council.GenderHistory up to the current year.
func (a *App) GenderHistory(snapshot district.Snapshot) ([]council.GenderYear, error) {
	return council.GenderHistory(snapshot.Members, a.Classifier, a.Time.Now().Year())
}

// Purge drops every cached upstream response.
func (a *App) Purge() {
	a.API.Purge()
	a.tel.ReportDebug(report_app_purge)
}

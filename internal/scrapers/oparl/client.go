// client.go contains the single-request fetch primitive, it knows nothing about pagination
// or caching.

package oparl

import (
	"bvvassist-backend/internal/components/assert"
	"bvvassist-backend/internal/components/metrics"
	"bvvassist-backend/internal/components/telemetry"
	"bvvassist-backend/lib/restyutil"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_fetch         = "client.fetch"
	report_client_collect_pages = "client.collect-pages"
)

// Fetcher performs a single GET and returns the parsed JSON body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (json.RawMessage, error)
}

// PageCollector accumulates the items of a paginated collection.
type PageCollector interface {
	CollectPages(ctx context.Context, startUrl string, policy RetryPolicy) ([]json.RawMessage, error)
}

// API is everything the pipeline needs from an OParl endpoint.
type API interface {
	Fetcher
	PageCollector
}

type ClientOptions struct {
	// Timeout bounds a single request, 0 falls back to 30 seconds.
	Timeout time.Duration
	// RequestsPerSecond limits the request rate, 0 disables limiting.
	RequestsPerSecond float64
	UserAgent         string
	Metrics           *metrics.Metrics
	// Dump receives every exchange with the upstream when set.
	Dump restyutil.Output
}

// Client implements API on top of resty.
type Client struct {
	http    *resty.Client
	tel     telemetry.API
	metrics *metrics.Metrics
	// wait blocks between retries, swapped out by tests
	wait func(ctx context.Context, d time.Duration) error
}

func NewClient(tel telemetry.API, opts ClientOptions) *Client {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("oparl_scraper", tel)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 30
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "bvvassist-backend (+https://oparl.org)"
	}

	httpClient := resty.New()
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("user-agent", userAgent)
	httpClient.SetHeader("accept", "application/json")

	if opts.RequestsPerSecond > 0 {
		// burst of at least 1 so that no request is dropped
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, "scrapers/oparl/http")
	if opts.Dump != nil {
		restyutil.Dump(httpClient, opts.Dump)
	}

	return &Client{
		http:    httpClient,
		tel:     tel,
		metrics: opts.Metrics,
		wait:    sleepContext,
	}
}

// Fetch issues a single GET against url. Every failure comes back as a *FetchError.
func (c *Client) Fetch(ctx context.Context, url string) (json.RawMessage, error) {
	c.tel.ReportDebug(report_client_fetch, url)
	start := time.Now()

	body, err := c.fetch(ctx, url)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			c.metrics.ObserveFetch(fe.Kind.String(), time.Since(start))
		}
		return nil, err
	}

	c.metrics.ObserveFetch("ok", time.Since(start))
	return body, nil
}

func (c *Client) fetch(ctx context.Context, url string) (json.RawMessage, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, &FetchError{
			Url:        url,
			Kind:       FETCH_TRANSPORT,
			Underlying: err,
		}
	}

	status := res.StatusCode()
	if status < 200 || status >= 300 {
		return nil, &FetchError{
			Url:        url,
			Kind:       FETCH_STATUS,
			StatusCode: status,
			Underlying: fmt.Errorf("unexpected status %s", res.Status()),
		}
	}

	body := res.Body()
	if !json.Valid(body) {
		return nil, &FetchError{
			Url:        url,
			Kind:       FETCH_DECODE,
			StatusCode: status,
			Underlying: fmt.Errorf("body is not valid json (%d bytes)", len(body)),
		}
	}

	return json.RawMessage(body), nil
}

// FetchInto fetches url and decodes the body into T. A body that does not fit T is reported
// as a FETCH_DECODE error.
func FetchInto[T any](ctx context.Context, fetcher Fetcher, url string) (T, error) {
	var out T
	body, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(body, &out)
	if err != nil {
		return out, &FetchError{
			Url:        url,
			Kind:       FETCH_DECODE,
			Underlying: fmt.Errorf("unmarshal %T: %w", out, err),
		}
	}
	return out, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package oparl

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RetryPolicy controls how often a failing page is requested before pagination is abandoned.
type RetryPolicy struct {
	// MaxRetries is the total number of attempts per page, values below 1 mean a single attempt.
	MaxRetries int
	// Delay is the fixed pause between two attempts.
	Delay time.Duration
}

// DefaultRetryPolicy makes three attempts, five seconds apart.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 3, Delay: 5 * time.Second}

func (p RetryPolicy) attempts() int {
	if p.MaxRetries < 1 {
		return 1
	}
	return p.MaxRetries
}

func (p RetryPolicy) String() string {
	return fmt.Sprintf("retries=%d delay=%s", p.attempts(), p.Delay)
}

// CollectPages follows the links.next chain starting at startUrl and returns the data items
// of every page in page-then-item order.
//
// A page that keeps failing after policy's attempts, or whose body is malformed, ends the
// collection: the items gathered so far are returned with a nil error. A page without a
// data key ends the collection the same way. The only error returned is the context's.
func (c *Client) CollectPages(ctx context.Context, startUrl string, policy RetryPolicy) ([]json.RawMessage, error) {
	return collectPages(ctx, c, startUrl, policy, c)
}

type pageHooks interface {
	pageFailed(url string, attempt int, err error)
	pageAbandoned(url string, collected int, err error)
	pageAccepted(url string, items int)
	endWithoutData(url string)
	waitRetry(ctx context.Context, d time.Duration) error
}

func collectPages(ctx context.Context, fetcher Fetcher, startUrl string, policy RetryPolicy, hooks pageHooks) ([]json.RawMessage, error) {
	var items []json.RawMessage
	visited := map[string]struct{}{}

	url := startUrl
	for url != "" {
		if _, seen := visited[url]; seen {
			// a next link pointing back at an earlier page would never terminate
			hooks.pageAbandoned(url, len(items), fmt.Errorf("pagination cycle"))
			return items, nil
		}
		visited[url] = struct{}{}

		body, err := fetchWithRetry(ctx, fetcher, url, policy, hooks)
		if ctx.Err() != nil {
			return items, ctx.Err()
		}
		if err != nil {
			hooks.pageAbandoned(url, len(items), err)
			return items, nil
		}

		var page Page
		err = json.Unmarshal(body, &page)
		if err != nil {
			hooks.pageAbandoned(url, len(items), fmt.Errorf("unmarshal page: %w", err))
			return items, nil
		}
		if page.Data == nil {
			hooks.endWithoutData(url)
			return items, nil
		}

		items = append(items, *page.Data...)
		hooks.pageAccepted(url, len(*page.Data))

		next, err := page.NextUrl()
		if err != nil {
			hooks.pageAbandoned(url, len(items), fmt.Errorf("unmarshal links: %w", err))
			return items, nil
		}
		url = next
	}

	return items, nil
}

func fetchWithRetry(ctx context.Context, fetcher Fetcher, url string, policy RetryPolicy, hooks pageHooks) (json.RawMessage, error) {
	attempts := policy.attempts()
	for attempt := 1; ; attempt++ {
		body, err := fetcher.Fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		hooks.pageFailed(url, attempt, err)

		if !IsTransient(err) || attempt >= attempts {
			return nil, err
		}
		err = hooks.waitRetry(ctx, policy.Delay)
		if err != nil {
			return nil, err
		}
	}
}

func (c *Client) pageFailed(url string, attempt int, err error) {
	c.tel.ReportWarning(
		report_client_collect_pages,
		fmt.Errorf("attempt %d: %w", attempt, err),
		url,
	)
}

func (c *Client) pageAbandoned(url string, collected int, err error) {
	c.tel.ReportBroken(
		report_client_collect_pages,
		fmt.Errorf("abandon pagination: %w", err),
		url,
		collected,
	)
}

func (c *Client) pageAccepted(url string, items int) {
	c.tel.ReportDebug(report_client_collect_pages, url, items)
	c.metrics.AddCollectedPage(items)
}

func (c *Client) endWithoutData(url string) {
	c.tel.ReportWarning(
		report_client_collect_pages,
		fmt.Errorf("page has no data key, treating it as the end"),
		url,
	)
}

func (c *Client) waitRetry(ctx context.Context, d time.Duration) error {
	return c.wait(ctx, d)
}

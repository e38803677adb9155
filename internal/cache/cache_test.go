package cache

import (
	"bvvassist-backend/internal/components/metrics"
	"bvvassist-backend/internal/components/telemetry"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestCache[V any](t testing.TB) (*Cache[V], *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return New[V](&telemetry.Recorder{}, Options{Name: t.Name(), Metrics: m}), m
}

func TestKey(t *testing.T) {
	testCases := []struct {
		parts  []any
		expect string
	}{
		{parts: []any{"fetch", "https://a.de/x"}, expect: "fetch\x1fhttps://a.de/x"},
		{parts: []any{"collect", "https://a.de/x", 3, time.Second}, expect: "collect\x1fhttps://a.de/x\x1f3\x1f1s"},
		{parts: nil, expect: ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expect, Key(test.parts...))
	}

	require.NotEqual(t, Key("https://a.de/p?page=1"), Key("https://a.de/p?page=2"))
}

func TestGetMemoizesSuccess(t *testing.T) {
	c, m := newTestCache[[]string](t)

	var calls int
	producer := func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	first, err := c.Get(context.Background(), "k", producer)
	require.NoError(t, err)
	second, err := c.Get(context.Background(), "k", producer)
	require.NoError(t, err)

	require.Equal(t, 1, calls)
	require.Equal(t, first, second)
	// the stored slice itself is returned, not a copy
	require.Same(t, &first[0], &second[0])

	require.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
}

func TestGetDoesNotMemoizeFailure(t *testing.T) {
	c, _ := newTestCache[int](t)

	var calls int
	failing := errors.New("upstream down")
	producer := func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, failing
		}
		return 42, nil
	}

	_, err := c.Get(context.Background(), "k", producer)
	require.ErrorIs(t, err, failing)
	_, stored := c.Peek("k")
	require.False(t, stored)

	value, err := c.Get(context.Background(), "k", producer)
	require.NoError(t, err)
	require.Equal(t, 42, value)
	require.Equal(t, 2, calls)
}

func TestGetDistinctKeys(t *testing.T) {
	c, _ := newTestCache[string](t)

	for _, key := range []string{"a", "b", "a", "b", "c"} {
		value, err := c.Get(context.Background(), key, func(ctx context.Context) (string, error) {
			return "value of " + key, nil
		})
		require.NoError(t, err)
		require.Equal(t, "value of "+key, value)
	}
	require.Equal(t, 3, c.Len())
}

func TestInvalidateAndPurge(t *testing.T) {
	c, _ := newTestCache[int](t)

	var calls int
	producer := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, _ := c.Get(context.Background(), "k", producer)
	require.Equal(t, 1, v)

	require.True(t, c.Invalidate("k"))
	require.False(t, c.Invalidate("k"))

	v, _ = c.Get(context.Background(), "k", producer)
	require.Equal(t, 2, v)

	c.Purge()
	require.Equal(t, 0, c.Len())

	v, _ = c.Get(context.Background(), "k", producer)
	require.Equal(t, 3, v)
}

func TestGetConcurrentSingleProducer(t *testing.T) {
	c, _ := newTestCache[int](t)

	var calls atomic.Int64
	release := make(chan struct{})
	producer := func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	const callers = 16
	results := make([]int, callers)
	wg := sync.WaitGroup{}
	started := sync.WaitGroup{}
	for i := 0; i < callers; i++ {
		wg.Add(1)
		started.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			value, err := c.Get(context.Background(), "shared", producer)
			require.NoError(t, err)
			results[i] = value
		}()
	}
	started.Wait()
	// give every goroutine the chance to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int64(1), calls.Load())
	for _, r := range results {
		require.Equal(t, 7, r)
	}
}

func TestGetCancelledCallerDoesNotFailOthers(t *testing.T) {
	c, _ := newTestCache[int](t)

	producing := make(chan struct{})
	release := make(chan struct{})
	producer := func(ctx context.Context) (int, error) {
		close(producing)
		select {
		case <-release:
			return 7, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Get(first, "k", producer)
		firstErr <- err
	}()
	<-producing

	type result struct {
		value int
		err   error
	}
	second := make(chan result, 1)
	go func() {
		value, err := c.Get(context.Background(), "k", producer)
		second <- result{value: value, err: err}
	}()
	// let the second caller join the in-flight call
	time.Sleep(50 * time.Millisecond)

	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	require.Equal(t, 7, got.value)

	stored, ok := c.Peek("k")
	require.True(t, ok)
	require.Equal(t, 7, stored)
}

func TestGetCancelledSoleCallerStillStores(t *testing.T) {
	c, _ := newTestCache[int](t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	producer := func(ctx context.Context) (int, error) {
		defer close(done)
		cancel()
		// the producer does not observe the caller's cancellation
		require.NoError(t, ctx.Err())
		return 3, nil
	}

	_, err := c.Get(ctx, "k", producer)
	<-done
	if err != nil {
		require.ErrorIs(t, err, context.Canceled)
	}

	require.Eventually(t, func() bool {
		_, ok := c.Peek("k")
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestBoundedSize(t *testing.T) {
	c := New[int](&telemetry.Recorder{}, Options{Name: "bounded", Size: 2})

	for i, key := range []string{"a", "b", "c"} {
		_, err := c.Get(context.Background(), key, func(ctx context.Context) (int, error) {
			return i, nil
		})
		require.NoError(t, err)
	}

	require.Equal(t, 2, c.Len())
	_, ok := c.Peek("a")
	require.False(t, ok)
}

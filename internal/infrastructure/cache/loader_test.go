package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNotifier records pg_notify publishes.
type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sqls []string
	args [][]any
}

func (f *fakeNotifier) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sqls = append(f.sqls, sql)
	f.args = append(f.args, arguments)
	return pgconn.CommandTag{}, f.err
}

func TestFetchCachesValue(t *testing.T) {
	l := NewLoader(nil)
	ctx := context.Background()

	calls := 0
	producer := func(ctx context.Context) (any, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		val, err := l.Fetch(ctx, "k", producer)
		require.NoError(t, err)
		assert.Equal(t, "value", val)
	}

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, l.GetStats().Keys)
}

func TestFetchDeduplicatesConcurrentCallers(t *testing.T) {
	l := NewLoader(nil)
	ctx := context.Background()

	var calls int64
	release := make(chan struct{})
	producer := func(ctx context.Context) (any, error) {
		atomic.AddInt64(&calls, 1)
		<-release
		return 42, nil
	}

	const workers = 10
	results := make(chan any, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			val, err := l.Fetch(ctx, "shared", producer)
			assert.NoError(t, err)
			results <- val
		}()
	}

	close(release)
	wg.Wait()
	close(results)

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	for val := range results {
		assert.Equal(t, 42, val)
	}
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	l := NewLoader(nil)
	ctx := context.Background()

	boom := errors.New("producer failed")
	calls := 0

	_, err := l.Fetch(ctx, "k", func(ctx context.Context) (any, error) {
		calls++
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, l.GetStats().Keys)

	// Next fetch retries and succeeds.
	val, err := l.Fetch(ctx, "k", func(ctx context.Context) (any, error) {
		calls++
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", val)
	assert.Equal(t, 2, calls)
}

func TestFetchRespectsContextCancellation(t *testing.T) {
	l := NewLoader(nil)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = l.Fetch(context.Background(), "slow", func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "late", nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Fetch(ctx, "slow", func(ctx context.Context) (any, error) {
		t.Fatal("producer must not run for a waiter")
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
}

func TestInvalidateDropsSingleKey(t *testing.T) {
	l := NewLoader(nil)
	ctx := context.Background()

	calls := map[string]int{}
	fetch := func(key string) {
		_, err := l.Fetch(ctx, key, func(ctx context.Context) (any, error) {
			calls[key]++
			return key, nil
		})
		require.NoError(t, err)
	}

	fetch("a")
	fetch("b")
	l.Invalidate("a")

	fetch("a")
	fetch("b")

	assert.Equal(t, 2, calls["a"])
	assert.Equal(t, 1, calls["b"])
}

func TestInvalidateAll(t *testing.T) {
	l := NewLoader(nil)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		_, err := l.Fetch(ctx, key, func(ctx context.Context) (any, error) {
			return key, nil
		})
		require.NoError(t, err)
	}
	require.Equal(t, 3, l.GetStats().Keys)

	l.InvalidateAll()
	assert.Equal(t, 0, l.GetStats().Keys)
}

func TestInvalidationListeners(t *testing.T) {
	l := NewLoader(nil)

	var keys []string
	l.OnInvalidation(func(key string) {
		keys = append(keys, key)
	})

	l.Invalidate("a")
	l.InvalidateAll()

	assert.Equal(t, []string{"a", ""}, keys)
}

func TestListenerPanicDoesNotPropagate(t *testing.T) {
	l := NewLoader(nil)

	l.OnInvalidation(func(key string) {
		panic("listener bug")
	})

	called := false
	l.OnInvalidation(func(key string) {
		called = true
	})

	assert.NotPanics(t, func() {
		l.Invalidate("a")
	})
	assert.True(t, called, "later listeners still run after a panic")
}

func TestInvalidatePublishesToPeers(t *testing.T) {
	l := NewLoader(nil)
	notifier := &fakeNotifier{}
	l.notify = notifier

	l.Invalidate("reconciliation:abc")
	l.InvalidateAll()

	require.Len(t, notifier.args, 2)
	for _, sql := range notifier.sqls {
		assert.Contains(t, sql, "pg_notify")
	}
	assert.Equal(t, []any{InvalidationChannel, "reconciliation:abc"}, notifier.args[0])
	assert.Equal(t, []any{InvalidationChannel, ""}, notifier.args[1])
}

func TestInvalidateSurvivesPublishFailure(t *testing.T) {
	l := NewLoader(nil)
	l.notify = &fakeNotifier{err: errors.New("connection refused")}

	_, err := l.Fetch(context.Background(), "k", func(ctx context.Context) (any, error) {
		return "value", nil
	})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		l.Invalidate("k")
	})
	// Local state is dropped even when the publish fails.
	assert.Equal(t, 0, l.GetStats().Keys)
}

func TestProducerIgnoresFirstCallerCancellation(t *testing.T) {
	l := NewLoader(nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())

	started := make(chan struct{})
	release := make(chan struct{})
	var producerErr error

	go func() {
		_, _ = l.Fetch(firstCtx, "k", func(ctx context.Context) (any, error) {
			close(started)
			<-release
			producerErr = ctx.Err()
			return "fresh", nil
		})
	}()
	<-started

	// The caller that started the flight goes away mid-production.
	cancelFirst()

	done := make(chan struct{})
	var val any
	var err error
	go func() {
		defer close(done)
		val, err = l.Fetch(context.Background(), "k", func(ctx context.Context) (any, error) {
			t.Error("producer must not run for a waiter")
			return nil, nil
		})
	}()

	close(release)
	<-done

	require.NoError(t, err)
	assert.Equal(t, "fresh", val)
	assert.NoError(t, producerErr, "shared flight must not inherit one caller's cancellation")
}

func TestStartStopWithoutPool(t *testing.T) {
	l := NewLoader(nil)

	require.NoError(t, l.Start(context.Background()))
	// Second start is a no-op.
	require.NoError(t, l.Start(context.Background()))

	l.Stop()
	l.Stop()
}

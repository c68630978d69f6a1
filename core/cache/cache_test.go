package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	store, err := NewMemoryStore(100)
	require.NoError(t, err)
	return New(store)
}

type recordingLoader struct {
	mu    sync.Mutex
	data  map[string]int
	calls [][]string
}

func (l *recordingLoader) load(_ context.Context, missing []string) (map[string]int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, append([]string(nil), missing...))
	out := make(map[string]int)
	for _, k := range missing {
		if v, ok := l.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func TestRememberMany(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty keys never call the loader", func(t *testing.T) {
		c := newTestCache(t)
		loader := &recordingLoader{}

		got, err := RememberMany(ctx, c, nil, "ns", time.Minute, loader.load)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Empty(t, loader.calls)
	})

	t.Run("Loader called once per miss set", func(t *testing.T) {
		c := newTestCache(t)
		loader := &recordingLoader{data: map[string]int{"one": 1, "two": 2}}

		got, err := RememberMany(ctx, c, []string{"one", "two"}, "ns", time.Minute, loader.load)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 1, *got["one"])
		assert.Equal(t, 2, *got["two"])
		assert.Equal(t, [][]string{{"one", "two"}}, loader.calls)

		got, err = RememberMany(ctx, c, []string{"one", "two", "three"}, "ns", time.Minute, loader.load)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"one", "two"}, {"three"}}, loader.calls)

		require.Contains(t, got, "three")
		assert.Nil(t, got["three"])
		assert.Equal(t, 1, *got["one"])
	})

	t.Run("Unresolved keys are not cached", func(t *testing.T) {
		c := newTestCache(t)
		loader := &recordingLoader{data: map[string]int{}}

		_, err := RememberMany(ctx, c, []string{"ghost"}, "ns", time.Minute, loader.load)
		require.NoError(t, err)
		loader.data["ghost"] = 7

		got, err := RememberMany(ctx, c, []string{"ghost"}, "ns", time.Minute, loader.load)
		require.NoError(t, err)
		assert.Equal(t, 7, *got["ghost"])
		assert.Len(t, loader.calls, 2)
	})

	t.Run("Namespaces do not collide", func(t *testing.T) {
		c := newTestCache(t)
		a := &recordingLoader{data: map[string]int{"k": 1}}
		b := &recordingLoader{data: map[string]int{"k": 2}}

		_, err := RememberMany(ctx, c, []string{"k"}, "a", time.Minute, a.load)
		require.NoError(t, err)
		got, err := RememberMany(ctx, c, []string{"k"}, "b", time.Minute, b.load)
		require.NoError(t, err)
		assert.Equal(t, 2, *got["k"])
	})

	t.Run("Duplicate keys are resolved once", func(t *testing.T) {
		c := newTestCache(t)
		loader := &recordingLoader{data: map[string]int{"one": 1}}

		got, err := RememberMany(ctx, c, []string{"one", "one"}, "ns", time.Minute, loader.load)
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, [][]string{{"one"}}, loader.calls)
	})

	t.Run("Resolver error propagates unmodified", func(t *testing.T) {
		c := newTestCache(t)
		boom := errors.New("boom")

		_, err := RememberMany(ctx, c, []string{"x"}, "ns", time.Minute, func(context.Context, []string) (map[string]int, error) {
			return nil, boom
		})
		assert.Same(t, boom, err)
	})

	t.Run("Expired entries are resolved again", func(t *testing.T) {
		c := newTestCache(t)
		loader := &recordingLoader{data: map[string]int{"one": 1}}

		_, err := RememberMany(ctx, c, []string{"one"}, "ns", time.Millisecond, loader.load)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
		_, err = RememberMany(ctx, c, []string{"one"}, "ns", time.Millisecond, loader.load)
		require.NoError(t, err)
		assert.Len(t, loader.calls, 2)
	})
}

func TestRememberMany_ConcurrentCallersShareResolver(t *testing.T) {
	c := newTestCache(t)
	var calls atomic.Int32
	release := make(chan struct{})

	resolve := func(context.Context, []string) (map[string]int, error) {
		calls.Add(1)
		<-release
		return map[string]int{"a": 1, "b": 2}, nil
	}

	const callers = 8
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	results := make([]map[string]*int, callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			got, err := RememberMany(context.Background(), c, []string{"b", "a"}, "ns", time.Minute, resolve)
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(callers))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	for _, got := range results {
		assert.Equal(t, 1, *got["a"])
		assert.Equal(t, 2, *got["b"])
	}
}

func TestRememberMany_CancelledCallerDoesNotFailOthers(t *testing.T) {
	c := newTestCache(t)
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})

	resolve := func(ctx context.Context, _ []string) (map[string]int, error) {
		if calls.Add(1) == 1 {
			close(entered)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return map[string]int{"a": 1}, nil
	}

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := RememberMany(first, c, []string{"a"}, "ns", time.Minute, resolve)
		firstErr <- err
	}()
	<-entered

	type result struct {
		got map[string]*int
		err error
	}
	second := make(chan result, 1)
	go func() {
		got, err := RememberMany(context.Background(), c, []string{"a"}, "ns", time.Minute, resolve)
		second <- result{got, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	r := <-second
	require.NoError(t, r.err)
	require.NotNil(t, r.got["a"])
	assert.Equal(t, 1, *r.got["a"])
	assert.Equal(t, int32(1), calls.Load())
}

func TestRemember(t *testing.T) {
	c := newTestCache(t)
	var calls int

	fn := func(context.Context) (string, error) {
		calls++
		return "value", nil
	}

	v, err := Remember(context.Background(), c, "key", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = Remember(context.Background(), c, "key", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, 1, calls)
}

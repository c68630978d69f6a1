package invalidation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"food-index/core/cache"
	"food-index/core/pubsub"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPurger struct{ calls int }

func (p *countingPurger) PurgeExpired(context.Context) (int64, error) {
	p.calls++
	return 2, nil
}

func TestReconciler_RunOnce(t *testing.T) {
	bus, store, rebuilder := setup(t)
	ctx := context.Background()
	purger := &countingPurger{}
	r := NewReconciler(bus, time.Minute, purger, nil)

	require.NoError(t, store.SetAdd(ctx, PendingSetKey, "en_GB"))

	drained, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"en_GB"}, drained)
	assert.Equal(t, 1, purger.calls)
	assert.Len(t, rebuilder.Calls(), 1)
}

func TestReconciler_RunDrainsOnTick(t *testing.T) {
	bus, store, rebuilder := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, store.SetAdd(ctx, PendingSetKey, "pt_PT"))

	done := make(chan struct{})
	go func() {
		NewReconciler(bus, 10*time.Millisecond, nil, nil).Run(ctx)
		close(done)
	}()

	select {
	case <-rebuilder.done:
	case <-time.After(2 * time.Second):
		t.Fatal("reconciler did not drain")
	}
	cancel()
	<-done
	assert.Equal(t, []string{"pt_PT"}, rebuilder.Calls()[0])
}

func TestReconciler_DisabledReturns(t *testing.T) {
	bus, _, _ := setup(t)
	NewReconciler(bus, 0, nil, nil).Run(context.Background())
}

type offlineRebuilder struct {
	*fakeRebuilder
	ready atomic.Bool
}

func (r *offlineRebuilder) Ready() bool { return r.ready.Load() }

func (r *offlineRebuilder) Rebuild(ctx context.Context, localeIDs []string) error {
	err := r.fakeRebuilder.Rebuild(ctx, localeIDs)
	r.ready.Store(err == nil)
	return err
}

func TestReconciler_RebuildsOfflineIndexWithNothingPending(t *testing.T) {
	store, err := cache.NewMemoryStore(64)
	require.NoError(t, err)
	rebuilder := &offlineRebuilder{fakeRebuilder: newFakeRebuilder()}
	rebuilder.err = errors.New("database unavailable")
	bus := NewBus(store, pubsub.NewMemory(), "rebuilds", rebuilder, "replica-a", nil)
	r := NewReconciler(bus, time.Minute, nil, nil)
	ctx := context.Background()

	drained, err := r.RunOnce(ctx)
	require.Error(t, err)
	assert.Equal(t, []string{All}, drained)
	assert.False(t, rebuilder.Ready())

	rebuilder.mu.Lock()
	rebuilder.err = nil
	rebuilder.mu.Unlock()

	drained, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{All}, drained)
	assert.True(t, rebuilder.Ready())
	assert.Equal(t, [][]string{nil, nil}, rebuilder.Calls())

	drained, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Nil(t, drained)
	assert.Len(t, rebuilder.Calls(), 2)
}

package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	got := make(chan string, 4)
	sub, err := m.Subscribe(ctx, "rebuild", func(_ context.Context, payload []byte) {
		got <- string(payload)
	})
	require.NoError(t, err)

	_, err = m.Subscribe(ctx, "other", func(context.Context, []byte) {
		t.Error("unexpected delivery on other channel")
	})
	require.NoError(t, err)

	require.NoError(t, m.Publish(ctx, "rebuild", []byte("en_GB")))
	select {
	case p := <-got:
		assert.Equal(t, "en_GB", p)
	case <-time.After(time.Second):
		t.Fatal("payload not delivered")
	}

	require.NoError(t, sub.Unsubscribe())
	require.NoError(t, m.Publish(ctx, "rebuild", []byte("pt_PT")))
	require.NoError(t, m.Close())
	assert.Empty(t, got)

	assert.ErrorIs(t, m.Publish(ctx, "rebuild", nil), ErrClosed)
}

func TestNew(t *testing.T) {
	tr, err := New(&Config{Driver: "memory"}, "test")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, tr)

	_, err = New(&Config{Driver: "kafka"}, "test")
	assert.Error(t, err)
}

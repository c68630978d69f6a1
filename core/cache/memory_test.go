package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemoryStore(2)
	require.NoError(t, err)

	t.Run("Get and Set", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "a", []byte("1"), 0))
		v, ok, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("1"), v)
	})

	t.Run("MGet reports misses as nil", func(t *testing.T) {
		vals, err := s.MGet(ctx, []string{"a", "missing"})
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), vals[0])
		assert.Nil(t, vals[1])
	})

	t.Run("Bounded size evicts the oldest", func(t *testing.T) {
		require.NoError(t, s.MSet(ctx, map[string][]byte{"b": []byte("2")}, 0))
		require.NoError(t, s.Set(ctx, "c", []byte("3"), 0))
		_, ok, _ := s.Get(ctx, "a")
		assert.False(t, ok)
	})

	t.Run("TTL", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "short", []byte("x"), time.Millisecond))
		time.Sleep(3 * time.Millisecond)
		_, ok, _ := s.Get(ctx, "short")
		assert.False(t, ok)
	})

	t.Run("Forget", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "f", []byte("x"), 0))
		require.NoError(t, s.Forget(ctx, "f", "never-set"))
		_, ok, _ := s.Get(ctx, "f")
		assert.False(t, ok)
	})

	t.Run("Sets drain once", func(t *testing.T) {
		require.NoError(t, s.SetAdd(ctx, "pending", "en_GB", "pt_PT", "en_GB"))
		members, err := s.SetMembers(ctx, "pending")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"en_GB", "pt_PT"}, members)

		drained, err := s.SetDrain(ctx, "pending")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"en_GB", "pt_PT"}, drained)

		drained, err = s.SetDrain(ctx, "pending")
		require.NoError(t, err)
		assert.Empty(t, drained)
	})
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(&Config{Driver: "memory", Size: 10}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = NewStore(&Config{Driver: "database"}, nil)
	assert.Error(t, err)

	_, err = NewStore(&Config{Driver: "redis"}, nil)
	assert.Error(t, err)
}

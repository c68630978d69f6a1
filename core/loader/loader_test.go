package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type fakeFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (f *fakeFeature) Name() string    { return f.name }
func (f *fakeFeature) IsEnabled() bool { return f.enabled }
func (f *fakeFeature) Load(fiber.Router) error {
	f.loaded = true
	return f.err
}

func TestManager_LoadAll(t *testing.T) {
	t.Run("Skips disabled features", func(t *testing.T) {
		on := &fakeFeature{name: "foods", enabled: true}
		off := &fakeFeature{name: "legacy"}
		mgr := NewManager(nil)
		mgr.Register(on)
		mgr.Register(off)

		assert.NoError(t, mgr.LoadAll(fiber.New()))
		assert.True(t, on.loaded)
		assert.False(t, off.loaded)
		assert.Len(t, mgr.Features(), 2)
	})

	t.Run("Stops at first failure", func(t *testing.T) {
		bad := &fakeFeature{name: "bad", enabled: true, err: errors.New("boom")}
		next := &fakeFeature{name: "next", enabled: true}
		mgr := NewManager(nil)
		mgr.Register(bad)
		mgr.Register(next)

		err := mgr.LoadAll(fiber.New())
		assert.ErrorContains(t, err, "bad")
		assert.False(t, next.loaded)
	})
}

package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub(t *testing.T) {
	t.Run("should deliver to every subscriber", func(t *testing.T) {
		h := NewHub(4)
		a, cancelA := h.Subscribe()
		b, cancelB := h.Subscribe()
		defer cancelA()
		defer cancelB()

		ev := FileEvent{Event: FileEventChange, Path: "a.md"}
		h.Publish(ev)

		assert.Equal(t, ev, <-a)
		assert.Equal(t, ev, <-b)
	})

	t.Run("should drop events for a full subscriber", func(t *testing.T) {
		h := NewHub(1)
		ch, cancel := h.Subscribe()
		defer cancel()

		h.Publish(FileEvent{Event: FileEventAdd, Path: "1"})
		h.Publish(FileEvent{Event: FileEventAdd, Path: "2"})

		assert.Equal(t, "1", (<-ch).Path)
		assert.Len(t, ch, 0)
	})

	t.Run("should close the channel on cancel", func(t *testing.T) {
		h := NewHub(1)
		ch, cancel := h.Subscribe()
		assert.Equal(t, 1, h.Len())

		cancel()
		cancel()
		_, ok := <-ch
		assert.False(t, ok)
		assert.Equal(t, 0, h.Len())
	})

	t.Run("should close all subscribers", func(t *testing.T) {
		h := NewHub(1)
		ch, cancel := h.Subscribe()
		h.Close()
		_, ok := <-ch
		assert.False(t, ok)
		cancel()
	})
}

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry(t *testing.T) {
	t.Run("should only accept objects", func(t *testing.T) {
		_, err := ParseEntry([]byte(`[1,2]`))
		assert.ErrorIs(t, err, ErrInvalidEntry)

		_, err = ParseEntry([]byte(`{"id":`))
		assert.ErrorIs(t, err, ErrInvalidEntry)

		e, err := ParseEntry([]byte(`{"id":"a"}`))
		require.NoError(t, err)
		assert.Equal(t, "a", e.ID())
	})

	t.Run("should ignore non-string ids", func(t *testing.T) {
		assert.Equal(t, "", Entry(`{"id":7}`).ID())
		assert.Equal(t, "", Entry(`{}`).ID())
	})

	t.Run("should merge fields shallowly and keep unknown ones", func(t *testing.T) {
		e := Entry(`{"id":"a","name":"old","schedule":{"kind":"every","everyMs":1000},"extra":true}`)
		merged, err := e.Merge(Entry(`{"name":"new","schedule":{"kind":"cron","expr":"* * * * *"}}`))
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"id":"a","name":"new","schedule":{"kind":"cron","expr":"* * * * *"},"extra":true}`,
			string(merged))
		// input untouched
		assert.Contains(t, string(e), `"old"`)
	})

	t.Run("should treat dotted keys literally", func(t *testing.T) {
		e, err := Entry(`{"id":"a"}`).With("a.b", 1)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"a","a.b":1}`, string(e))
		assert.Equal(t, int64(1), e.Get("a.b").Int())
	})

	t.Run("should set a boolean field", func(t *testing.T) {
		e, err := Entry(`{"id":"a","enabled":true}`).With("enabled", false)
		require.NoError(t, err)
		assert.False(t, e.Get("enabled").Bool())
	})
}

func TestIDGenerator(t *testing.T) {
	t.Run("should never repeat within the same millisecond", func(t *testing.T) {
		g := NewIDGenerator("job_")
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			id := g.Next()
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})

	t.Run("should carry the prefix", func(t *testing.T) {
		assert.Regexp(t, `^job_\d+$`, NewIDGenerator("job_").Next())
	})
}

package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessagesJSONL(t *testing.T) {
	data := []byte(`{"role":"user","content":"hi"}

not json
{"content":"no role"}
{"role":"assistant","content":{"type":"text","text":"x"}}
null
{"role":"tool"}
`)
	msgs := ParseMessages("chat.jsonl", data)
	require.Len(t, msgs, 4)

	assert.Equal(t, Message{Role: "user", Content: "hi"}, msgs[0])
	assert.Equal(t, Message{Role: "system", Content: "no role"}, msgs[1])
	assert.Equal(t, Message{Role: "assistant", Content: `{"type":"text","text":"x"}`}, msgs[2])
	assert.Equal(t, Message{Role: "tool", Content: `{"role":"tool"}`}, msgs[3])
}

func TestParseMessagesJSON(t *testing.T) {
	t.Run("should accept a bare list", func(t *testing.T) {
		msgs := ParseMessages("s.json", []byte(`[{"role":"user","content":"a"},{"role":"assistant","content":""}]`))
		require.Len(t, msgs, 2)
		assert.Equal(t, "a", msgs[0].Content)
		assert.Equal(t, "", msgs[1].Content)
	})

	t.Run("should read the messages key", func(t *testing.T) {
		msgs := ParseMessages("s.json", []byte(`{"meta":1,"messages":[{"role":"user","content":"m"}]}`))
		require.Len(t, msgs, 1)
		assert.Equal(t, "m", msgs[0].Content)
	})

	t.Run("should read the history key", func(t *testing.T) {
		msgs := ParseMessages("s.json", []byte(`{"history":[{"content":[1, 2]}]}`))
		require.Len(t, msgs, 1)
		assert.Equal(t, Message{Role: "system", Content: "[1,2]"}, msgs[0])
	})

	t.Run("should prefer messages over history", func(t *testing.T) {
		msgs := ParseMessages("s.json", []byte(`{"history":[{"content":"h"}],"messages":[{"content":"m"}]}`))
		require.Len(t, msgs, 1)
		assert.Equal(t, "m", msgs[0].Content)
	})

	t.Run("should synthesize a system entry for other documents", func(t *testing.T) {
		msgs := ParseMessages("dir/state.json", []byte(`{"a":1,"b":[true]}`))
		require.Len(t, msgs, 1)
		assert.Equal(t, "system", msgs[0].Role)
		assert.Equal(t, "Raw JSON data from state.json\n```json\n{\n  \"a\": 1,\n  \"b\": [\n    true\n  ]\n}\n```", msgs[0].Content)
	})

	t.Run("should fall back to literal content when unparsable", func(t *testing.T) {
		msgs := ParseMessages("broken.json", []byte(`{"a":`))
		require.Len(t, msgs, 2)
		assert.Equal(t, Message{Role: "system", Content: "Raw content from broken.json"}, msgs[0])
		assert.Equal(t, Message{Role: "assistant", Content: `{"a":`}, msgs[1])
	})

	t.Run("should serialize entries with falsy content whole", func(t *testing.T) {
		msgs := ParseMessages("s.json", []byte(`[{"role":"user","content":null}, {"content":0}, "plain"]`))
		require.Len(t, msgs, 3)
		assert.Equal(t, `{"role":"user","content":null}`, msgs[0].Content)
		assert.Equal(t, `{"content":0}`, msgs[1].Content)
		assert.Equal(t, Message{Role: "system", Content: `"plain"`}, msgs[2])
	})
}

func TestParseMessagesLiteral(t *testing.T) {
	for _, name := range []string{"notes.md", "plain"} {
		msgs := ParseMessages(name, []byte(`["looks like json"]`))
		require.Len(t, msgs, 2, name)
		assert.Equal(t, "assistant", msgs[1].Role)
		assert.Equal(t, `["looks like json"]`, msgs[1].Content)
	}
}

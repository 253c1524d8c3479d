package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter(t *testing.T) {
	t.Run("should read the recognized keys", func(t *testing.T) {
		fm, body := ParseFrontmatter("---\nname: \"Web Search\"\ndescription: 'finds things'\nenabled: false\nauthor: me\n---\n# Body\n")

		assert.True(t, fm.Present)
		assert.Equal(t, "Web Search", fm.Name)
		assert.Equal(t, "finds things", fm.Description)
		require.NotNil(t, fm.Enabled)
		assert.False(t, *fm.Enabled)
		assert.Equal(t, "# Body\n", body)
	})

	t.Run("should handle CRLF line endings", func(t *testing.T) {
		fm, body := ParseFrontmatter("---\r\nname: x\r\n---\r\nbody")
		assert.True(t, fm.Present)
		assert.Equal(t, "x", fm.Name)
		assert.Equal(t, "body", body)
	})

	t.Run("should stop at the closing delimiter", func(t *testing.T) {
		fm, body := ParseFrontmatter("---\nname: a\n---\nname: b\n")
		assert.Equal(t, "a", fm.Name)
		assert.Equal(t, "name: b\n", body)
	})

	t.Run("should treat a missing header as plain content", func(t *testing.T) {
		content := "# Title\nname: not frontmatter\n"
		fm, body := ParseFrontmatter(content)
		assert.False(t, fm.Present)
		assert.Empty(t, fm.Name)
		assert.Equal(t, content, body)
	})

	t.Run("should require the delimiter on the first line", func(t *testing.T) {
		content := "\n---\nname: x\n---\n"
		fm, body := ParseFrontmatter(content)
		assert.False(t, fm.Present)
		assert.Equal(t, content, body)
	})

	t.Run("should ignore an unclosed header", func(t *testing.T) {
		content := "---\nname: x\ndescription: y\n"
		fm, body := ParseFrontmatter(content)
		assert.False(t, fm.Present)
		assert.Empty(t, fm.Name)
		assert.Equal(t, content, body)
	})

	t.Run("should leave enabled unset on a non-boolean", func(t *testing.T) {
		fm, _ := ParseFrontmatter("---\nenabled: maybe\n---\n")
		assert.True(t, fm.Present)
		assert.Nil(t, fm.Enabled)
	})

	t.Run("should accept a closing delimiter at end of input", func(t *testing.T) {
		fm, body := ParseFrontmatter("---\ndescription: d\n---")
		assert.True(t, fm.Present)
		assert.Equal(t, "d", fm.Description)
		assert.Equal(t, "", body)
	})
}

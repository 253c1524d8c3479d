package resource

import (
	"strconv"
	"strings"
)

const delimiter = "---"

// Frontmatter holds the keys recognized in a skill header.
type Frontmatter struct {
	Name        string
	Description string
	// Enabled is nil when the key is absent or not a boolean.
	Enabled *bool
	// Present is true when a closed header block was found.
	Present bool
}

// ParseFrontmatter reads a "---" delimited header from the top of a markdown
// document and returns it with the remaining body. Unknown keys are ignored.
// A header that is never closed is treated as ordinary content.
func ParseFrontmatter(content string) (Frontmatter, string) {
	line, rest, more := strings.Cut(content, "\n")
	if strings.TrimRight(line, " \t\r") != delimiter {
		return Frontmatter{}, content
	}

	var fm Frontmatter
	for more {
		line, rest, more = strings.Cut(rest, "\n")
		trimmed := strings.TrimSpace(line)

		if trimmed == delimiter {
			fm.Present = true
			return fm, rest
		}

		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		value = unquote(strings.TrimSpace(value))

		switch strings.TrimSpace(key) {
		case "name":
			fm.Name = value
		case "description":
			fm.Description = value
		case "enabled":
			if b, err := strconv.ParseBool(value); err == nil {
				fm.Enabled = &b
			}
		}
	}

	return Frontmatter{}, content
}

func unquote(s string) string {
	return strings.TrimSpace(strings.Trim(s, `"'`))
}

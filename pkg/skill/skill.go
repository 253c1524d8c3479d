// Package skill manages skill definitions under workspace/skills and the
// skills.json registry that records which of them are enabled.
package skill

import (
	"errors"
	"regexp"
	"strings"
)

// DefaultDescription is recorded for skills saved without a description.
const DefaultDescription = "Custom skill"

// RegistryFile is the registry's file name inside the skills root.
const RegistryFile = "skills.json"

// Skill is one entry of the merged listing.
type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
	Registered  bool   `json:"registered"` // has a registry entry
	HasContent  bool   `json:"hasContent"` // has a definition on disk
	Modified    int64  `json:"modified,omitempty"`
}

var (
	// ErrNameRequired is returned by Save without a name
	ErrNameRequired = errors.New("skill name is required")
)

var whitespace = regexp.MustCompile(`\s+`)

// IDFromName derives a skill id: lower case with whitespace runs replaced by
// underscores.
func IDFromName(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(name), "_")
}

package store

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Entry is one raw JSON element of a store document.
type Entry []byte

// ParseEntry validates raw as a JSON object.
func ParseEntry(raw []byte) (Entry, error) {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil, ErrInvalidEntry
	}
	return Entry(append([]byte(nil), raw...)), nil
}

// ID returns the string id field, or "" when absent.
func (e Entry) ID() string {
	r := gjson.GetBytes(e, "id")
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}

// Get reads a field by key. The key is not interpreted as a path.
func (e Entry) Get(key string) gjson.Result {
	return gjson.GetBytes(e, escapeKey(key))
}

// IsObject reports whether the entry is a JSON object.
func (e Entry) IsObject() bool {
	return gjson.ParseBytes(e).IsObject()
}

// With returns a copy of e with key set to value.
func (e Entry) With(key string, value interface{}) (Entry, error) {
	out, err := sjson.SetBytes(append([]byte(nil), e...), escapeKey(key), value)
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", key, err)
	}
	return Entry(out), nil
}

// Merge returns a copy of e with every top-level field of patch applied over
// it, like a shallow object spread. Field order of e is kept; new fields are
// appended.
func (e Entry) Merge(patch Entry) (Entry, error) {
	if !patch.IsObject() {
		return nil, ErrInvalidEntry
	}
	out := append([]byte(nil), e...)
	var err error
	gjson.ParseBytes(patch).ForEach(func(k, v gjson.Result) bool {
		out, err = sjson.SetRawBytes(out, escapeKey(k.String()), []byte(v.Raw))
		return err == nil
	})
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return Entry(out), nil
}

// MarshalJSON emits the raw bytes.
func (e Entry) MarshalJSON() ([]byte, error) {
	if len(e) == 0 {
		return []byte("null"), nil
	}
	return e, nil
}

// UnmarshalJSON keeps a copy of the raw bytes.
func (e *Entry) UnmarshalJSON(data []byte) error {
	*e = append((*e)[:0], data...)
	return nil
}

var pathEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`, "!", `\!`)

// escapeKey makes a literal object key safe to use as a gjson/sjson path.
func escapeKey(key string) string {
	return pathEscaper.Replace(key)
}

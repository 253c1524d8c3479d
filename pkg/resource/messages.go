package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Message is one renderable chat entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RoleSystem is assigned to entries that carry no role of their own.
const RoleSystem = "system"

// ParseMessages turns a resource file into chat messages. It never fails:
// content that cannot be read as messages is returned as a literal block.
func ParseMessages(name string, data []byte) []Message {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jsonl":
		return parseLines(data)
	case ".json":
		if msgs, ok := parseDocument(name, data); ok {
			return msgs
		}
	}
	return literal(name, data)
}

// parseLines drops lines that are blank or not JSON.
func parseLines(data []byte) []Message {
	msgs := []Message{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !gjson.Valid(line) {
			continue
		}
		r := gjson.Parse(line)
		if r.Type == gjson.Null {
			continue
		}
		msgs = append(msgs, normalize(r))
	}
	return msgs
}

func parseDocument(name string, data []byte) ([]Message, bool) {
	if !gjson.ValidBytes(data) {
		return nil, false
	}
	doc := gjson.ParseBytes(data)

	var list gjson.Result
	switch {
	case doc.Type == gjson.Null:
		return nil, false
	case doc.IsArray():
		list = doc
	case doc.IsObject() && doc.Get("messages").IsArray():
		list = doc.Get("messages")
	case doc.IsObject() && doc.Get("history").IsArray():
		list = doc.Get("history")
	default:
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(doc.Raw), "", "  "); err != nil {
			return nil, false
		}
		return []Message{{
			Role:    RoleSystem,
			Content: fmt.Sprintf("Raw JSON data from %s\n```json\n%s\n```", filepath.Base(name), buf.String()),
		}}, true
	}

	items := list.Array()
	msgs := make([]Message, 0, len(items))
	for _, item := range items {
		msgs = append(msgs, normalize(item))
	}
	return msgs, true
}

func literal(name string, data []byte) []Message {
	return []Message{
		{Role: RoleSystem, Content: "Raw content from " + filepath.Base(name)},
		{Role: "assistant", Content: string(data)},
	}
}

// normalize applies the role default and stringifies non-string content.
// When content is missing or falsy the whole entry is serialized instead.
func normalize(r gjson.Result) Message {
	var role, content gjson.Result
	if r.IsObject() {
		role = r.Get("role")
		content = r.Get("content")
	}

	m := Message{Role: RoleSystem}
	if truthy(role) {
		if role.Type == gjson.String {
			m.Role = role.Str
		} else {
			m.Role = compact(role.Raw)
		}
	}

	switch {
	case content.Type == gjson.String:
		m.Content = content.Str
	case truthy(content):
		m.Content = compact(content.Raw)
	default:
		m.Content = compact(r.Raw)
	}
	return m
}

func truthy(r gjson.Result) bool {
	if !r.Exists() {
		return false
	}
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		return true
	}
}

func compact(raw string) string {
	return string(pretty.Ugly([]byte(raw)))
}

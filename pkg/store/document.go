package store

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Shape is the top-level form of a store document.
type Shape int

const (
	// Bare documents are a top-level array.
	Bare Shape = iota
	// Wrapped documents are an object holding the array under a key.
	Wrapped
)

func (s Shape) String() string {
	if s == Wrapped {
		return "wrapped"
	}
	return "bare"
}

// Document is a decoded store file. The shape is fixed when the document is
// read and reused when it is written back.
type Document struct {
	Shape   Shape
	Entries []Entry

	key string
	// original bytes of a wrapped document, source of its sibling keys
	raw []byte
}

// Key returns the wrapping key, or "" for a bare document.
func (d *Document) Key() string {
	if d.Shape == Bare {
		return ""
	}
	return d.key
}

// Decode classifies data. Empty or blank input is an empty bare document.
func Decode(data []byte, key string) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &Document{Shape: Bare, Entries: []Entry{}, key: key}, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	root := gjson.ParseBytes(data)
	switch {
	case root.IsArray():
		return &Document{Shape: Bare, Entries: entries(root), key: key}, nil
	case root.IsObject():
		doc := &Document{Shape: Wrapped, Entries: []Entry{}, key: key, raw: append([]byte(nil), data...)}
		list := root.Get(escapeKey(key))
		switch {
		case !list.Exists() || list.Type == gjson.Null:
		case list.IsArray():
			doc.Entries = entries(list)
		default:
			return nil, fmt.Errorf("%w: %q is not an array", ErrMalformed, key)
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: top level is neither array nor object", ErrMalformed)
	}
}

// emptyDocument is used when the file does not exist yet.
func emptyDocument(shape Shape, key string) *Document {
	doc := &Document{Shape: shape, Entries: []Entry{}, key: key}
	if shape == Wrapped {
		doc.raw = []byte("{}")
	}
	return doc
}

// Encode serializes the document in its original shape, indented.
func (d *Document) Encode() ([]byte, error) {
	list := encodeList(d.Entries)
	if d.Shape == Bare {
		return pretty.Pretty(list), nil
	}

	out, err := sjson.SetRawBytes(append([]byte(nil), d.raw...), escapeKey(d.key), list)
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", d.key, err)
	}
	return pretty.Pretty(out), nil
}

func entries(list gjson.Result) []Entry {
	items := list.Array()
	out := make([]Entry, 0, len(items))
	for _, item := range items {
		out = append(out, Entry(item.Raw))
	}
	return out
}

func encodeList(list []Entry) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		if len(e) == 0 {
			buf.WriteString("null")
			continue
		}
		buf.Write(e)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

// Package resource maps opaque resource ids (memories, chat sessions, skills)
// to files under a sandboxed root.
//
// A resource is stored in one of these shapes, tried in this order:
//
//	<root>/<id>/          directory holding one .md, .json or .jsonl file
//	<root>/<id>.md
//	<root>/<id>.json
//	<root>/<id>.jsonl
//	<root>/<id>           extensionless file
//
// The order is a compatibility contract with older on-disk layouts and must
// not change. Missing resources report ErrNotFound; unsafe ids report
// sandbox.ErrAccessDenied.
package resource

// Package sandbox confines caller-supplied paths to a fixed root directory.
//
// Every filesystem-touching operation in the gateway routes its input through
// this package before any I/O happens.
//
// Invariants:
//   - A resolved path equals the root or has the root followed by a separator
//     as its prefix. "/data/app2" is never inside "/data/app".
//   - Leaf identifiers (session, skill, job ids) never contain a separator or
//     a NUL byte.
//   - A rejected input yields ErrAccessDenied and no I/O.
//
// Usage:
//
//	root, err := sandbox.NewRoot("/srv/nanobot/workspace")
//	abs, err := root.Resolve("memory/notes.md")
//	leaf, err := root.Leaf(id)
package sandbox

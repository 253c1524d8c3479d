// Package store performs shape-preserving read-modify-write cycles on a JSON
// document that holds a list of entries.
//
// Two on-disk shapes are supported and a write always reproduces the shape it
// read:
//
//	[{"id": "a"}, ...]                      bare
//	{"version": 1, "jobs": [{"id": "a"}]}   wrapped under a key
//
// Sibling keys of a wrapped document are carried over from the original bytes.
// Entries are kept as raw JSON so fields this package does not know about
// survive every rewrite.
//
// Invariants:
//   - Writers inside one process are serialized per Store.
//   - Nothing locks across processes. Two processes mutating one file can
//     lose an update; the last rename wins.
//   - A malformed document is never overwritten.
package store

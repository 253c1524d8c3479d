// Package memory manages session memories under workspace/memory.
//
// Invariants:
// - Every identifier is resolved through the resource resolver, so it never
//   leaves the memory root.
// - Reading a memory that does not exist yields empty content, not an error.
// - Deleting a memory that does not exist succeeds.
//
// Usage:
//
//	mgr := memory.NewManager(resolver, logger)
//	_ = mgr.Save("today", "# notes")
//	content, _ := mgr.Get("today")
//	_ = content
package memory

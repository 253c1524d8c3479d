// Package workspace exposes the managed directory as a browsable file tree
// and reports changes below it.
//
// Browser lists, reads, writes, renames and deletes files through a
// sandbox.Root, so no caller-supplied path can leave the base directory.
// Watcher follows the same directory with fsnotify, coalesces bursts of
// events per path, and hands them to a Hub that fans them out to any number
// of subscribers (the gateway's websocket clients).
//
// Example usage:
//
//	root, _ := sandbox.NewRoot("/srv/nanobot")
//	files := workspace.NewBrowser(root, logger)
//	entries, _ := files.Tree("workspace")
//
//	hub := workspace.NewHub(64)
//	w, _ := workspace.NewWatcher(workspace.WatcherConfig{
//		Root:    root.Dir(),
//		OnEvent: hub.Publish,
//	})
//	_ = w.Start()
//	defer w.Stop()
package workspace

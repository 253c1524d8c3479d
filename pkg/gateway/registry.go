package gateway

import (
	"sort"
	"sync"
)

// WatchRegistry tracks open watch connections so shutdown can reach them;
// http.Server does not see hijacked connections.
type WatchRegistry struct {
	mu    sync.RWMutex
	conns map[string]*WatchClient
}

func newWatchRegistry() *WatchRegistry {
	return &WatchRegistry{conns: make(map[string]*WatchClient)}
}

func (r *WatchRegistry) add(c *WatchClient) {
	r.mu.Lock()
	r.conns[c.ID] = c
	r.mu.Unlock()
}

func (r *WatchRegistry) remove(id string) {
	r.mu.Lock()
	delete(r.conns, id)
	r.mu.Unlock()
}

// Count returns the number of open watch connections.
func (r *WatchRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Snapshot describes every open connection, oldest first.
func (r *WatchRegistry) Snapshot() []ClientInfo {
	r.mu.RLock()
	infos := make([]ClientInfo, 0, len(r.conns))
	for _, c := range r.conns {
		infos = append(infos, c.info())
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].ConnectedAt.Equal(infos[j].ConnectedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].ConnectedAt.Before(infos[j].ConnectedAt)
	})
	return infos
}

// CloseAll sends a close frame with reason to every connection. Entries are
// dropped by their handlers as they exit.
func (r *WatchRegistry) CloseAll(reason string) {
	r.mu.RLock()
	conns := make([]*WatchClient, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	for _, c := range conns {
		c.Close(reason)
	}
}

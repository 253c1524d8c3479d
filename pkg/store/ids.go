package store

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator issues "<prefix><unix-ms>" ids that never repeat within a
// process, even when called twice in the same millisecond.
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	last   int64
	now    func() time.Time
}

// NewIDGenerator creates a generator, e.g. NewIDGenerator("job_").
func NewIDGenerator(prefix string) *IDGenerator {
	return &IDGenerator{prefix: prefix, now: time.Now}
}

// Next returns the next id.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return g.prefix + strconv.FormatInt(ms, 10)
}

package auth

import (
	"sync"
	"time"
)

// ThrottleConfig holds the login throttle thresholds.
type ThrottleConfig struct {
	MaxAttempts int
	Window      time.Duration
	Block       time.Duration
}

// DefaultThrottleConfig returns 10 attempts per 15 minutes with a 15 minute block.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		MaxAttempts: 10,
		Window:      15 * time.Minute,
		Block:       15 * time.Minute,
	}
}

// attemptState tracks failed logins for one client key
type attemptState struct {
	count         int
	windowStarted time.Time
	blockedUntil  time.Time
}

// Throttle is a per-client sliding window of failed logins with a lockout
// once the window fills up.
type Throttle struct {
	mu       sync.Mutex
	attempts map[string]*attemptState
	cfg      ThrottleConfig
	now      func() time.Time

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewThrottle creates a throttle. Zero thresholds fall back to the defaults.
func NewThrottle(cfg ThrottleConfig) *Throttle {
	def := DefaultThrottleConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Block <= 0 {
		cfg.Block = def.Block
	}
	return &Throttle{
		attempts:    make(map[string]*attemptState),
		cfg:         cfg,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
}

// IsBlocked reports whether key is locked out and for how many more seconds.
// Expired records are evicted on the way.
func (t *Throttle) IsBlocked(key string) (bool, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	state, ok := t.attempts[key]
	if !ok {
		return false, 0
	}
	if now.Before(state.blockedUntil) {
		return true, retryAfterSeconds(state.blockedUntil.Sub(now))
	}
	if t.expired(state, now) {
		delete(t.attempts, key)
	}
	return false, 0
}

// RecordFailure counts a failed login. It reports whether the key is now
// blocked and the retry-after in seconds.
func (t *Throttle) RecordFailure(key string) (bool, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	state, ok := t.attempts[key]
	if ok && now.Before(state.blockedUntil) {
		return true, retryAfterSeconds(state.blockedUntil.Sub(now))
	}
	if !ok || t.expired(state, now) {
		state = &attemptState{windowStarted: now}
		t.attempts[key] = state
	}

	state.count++
	if state.count >= t.cfg.MaxAttempts {
		state.blockedUntil = now.Add(t.cfg.Block)
		return true, retryAfterSeconds(t.cfg.Block)
	}
	return false, 0
}

// RecordSuccess forgets key entirely.
func (t *Throttle) RecordSuccess(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, key)
}

// Sweep evicts every expired record and returns how many remain.
func (t *Throttle) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for key, state := range t.attempts {
		if now.Before(state.blockedUntil) {
			continue
		}
		if t.expired(state, now) {
			delete(t.attempts, key)
		}
	}
	return len(t.attempts)
}

// Len returns the number of tracked keys.
func (t *Throttle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.attempts)
}

// StartSweeper runs Sweep every interval until Stop. onSweep, if set,
// receives the remaining record count.
func (t *Throttle) StartSweeper(interval time.Duration, onSweep func(remaining int)) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				n := t.Sweep()
				if onSweep != nil {
					onSweep(n)
				}
			case <-t.stopCleanup:
				return
			}
		}
	}()
}

// Stop stops the sweeper goroutine
func (t *Throttle) Stop() {
	t.stopOnce.Do(func() { close(t.stopCleanup) })
}

// expired is true once a finished block or the window has elapsed.
// Callers have already ruled out an active block.
func (t *Throttle) expired(state *attemptState, now time.Time) bool {
	if !state.blockedUntil.IsZero() {
		return true
	}
	return now.Sub(state.windowStarted) >= t.cfg.Window
}

// retryAfterSeconds rounds up so a client never retries early.
func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

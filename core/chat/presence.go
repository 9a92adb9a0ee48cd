package chat

import (
	"sync"
	"time"
)

// TypingTracker tracks fire-and-forget "typing" broadcasts keyed by project.
// A typing signal self-expires after the configured window even if no
// explicit "stopped typing" broadcast ever arrives; expiry is evaluated
// lazily on read so no timers are needed.
type TypingTracker struct {
	mu        sync.Mutex
	expiry    time.Duration
	deadlines map[string]time.Time
	now       func() time.Time
}

func NewTypingTracker(expiry time.Duration) *TypingTracker {
	return &TypingTracker{
		expiry:    expiry,
		deadlines: make(map[string]time.Time),
		now:       time.Now,
	}
}

// Set records a typing signal for key; typing=false clears it immediately.
func (t *TypingTracker) Set(key string, typing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if typing {
		t.deadlines[key] = t.now().Add(t.expiry)
	} else {
		delete(t.deadlines, key)
	}
}

func (t *TypingTracker) IsTyping(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	deadline, ok := t.deadlines[key]
	if !ok {
		return false
	}
	if t.now().After(deadline) {
		delete(t.deadlines, key)
		return false
	}
	return true
}

// Active returns all keys with a live typing signal.
func (t *TypingTracker) Active() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	keys := make([]string, 0, len(t.deadlines))
	for key, deadline := range t.deadlines {
		if now.After(deadline) {
			delete(t.deadlines, key)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

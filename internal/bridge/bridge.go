// Package bridge provides sources of native appearance data.
//
// A bridge answers synchronous requests for the text of a named appearance
// and pushes new text through a single registered callback whenever the
// platform reports a change.
package bridge

import (
	"sync"

	"github.com/opencode-ai/appearances/internal/appearance"
)

// Compile-time checks.
var (
	_ appearance.Bridge = (*Memory)(nil)
	_ appearance.Bridge = (*Directory)(nil)
	_ appearance.Bridge = (*Helper)(nil)
)

// Once caches the result of the first initialization attempt. A failure is
// never retried.
type Once struct {
	once sync.Once
	ok   bool
}

// Do runs init on the first call and returns its cached result.
func (o *Once) Do(init func() bool) bool {
	o.once.Do(func() {
		o.ok = init()
	})
	return o.ok
}

// callbackSlot holds the single update callback.
type callbackSlot struct {
	mu sync.RWMutex
	fn func(string)
}

func (c *callbackSlot) set(fn func(string)) {
	c.mu.Lock()
	c.fn = fn
	c.mu.Unlock()
}

func (c *callbackSlot) emit(text string) bool {
	c.mu.RLock()
	fn := c.fn
	c.mu.RUnlock()
	if fn == nil {
		return false
	}
	fn(text)
	return true
}

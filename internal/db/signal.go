package db

import "sync"

// ChangeSignal fans a "data changed" notification out to subscribers. The
// gateways fire it after every successful mutation so cached or rendered
// views of the collection can invalidate themselves.
type ChangeSignal struct {
	mu   sync.Mutex
	subs []func()
}

// Subscribe registers fn to run on every notification. Callbacks must not
// block; they typically push into a buffered channel.
func (c *ChangeSignal) Subscribe(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Notify invokes all subscribers.
func (c *ChangeSignal) Notify() {
	c.mu.Lock()
	subs := make([]func(), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

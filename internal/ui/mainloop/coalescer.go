package mainloop

import "sync"

// Coalescer delivers the latest of a burst of values to apply in a single
// loop task. Values posted while a task is queued replace the pending one.
type Coalescer[V any] struct {
	mu        sync.Mutex
	post      func(func())
	apply     func(V)
	value     V
	queued    bool
	merged    int
	destroyed bool
}

// NewCoalescer creates a coalescer that schedules through post, typically
// Loop.Post. apply runs on the loop.
func NewCoalescer[V any](post func(func()), apply func(V)) *Coalescer[V] {
	if post == nil || apply == nil {
		panic("mainloop.NewCoalescer: post and apply are required")
	}
	return &Coalescer[V]{post: post, apply: apply}
}

// Post records v. Only the first value of a burst queues a task.
func (c *Coalescer[V]) Post(v V) {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.value = v
	if c.queued {
		c.merged++
		c.mu.Unlock()
		return
	}
	c.queued = true
	c.mu.Unlock()

	c.post(c.flush)
}

func (c *Coalescer[V]) flush() {
	c.mu.Lock()
	if c.destroyed || !c.queued {
		c.mu.Unlock()
		return
	}
	v := c.value
	c.queued = false
	c.mu.Unlock()

	c.apply(v)
}

// Merged returns how many posted values were superseded before delivery.
func (c *Coalescer[V]) Merged() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.merged
}

// Destroy drops the pending value and rejects further posts.
func (c *Coalescer[V]) Destroy() {
	c.mu.Lock()
	var zero V
	c.value = zero
	c.queued = false
	c.destroyed = true
	c.mu.Unlock()
}

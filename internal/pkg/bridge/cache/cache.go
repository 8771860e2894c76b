// Package cache holds the bounded per-conversation buffer of inbound
// messages. It is written by the single event-client goroutine and read by
// any number of request handlers.
package cache

import (
	"sync"

	bridge "github.com/sparxmathsalternative/damnis/internal/pkg/bridge/domain"
)

// DefaultCapacity is the per-conversation retention limit.
const DefaultCapacity = 50

// MessageCache maps conversation IDs to fixed-capacity FIFO buffers. The
// outer lock guards only the map; each buffer carries its own lock so
// traffic on one conversation never blocks another.
type MessageCache struct {
	mu       sync.RWMutex
	buffers  map[string]*ring
	capacity int
}

// New constructs a MessageCache with the given per-conversation capacity.
// Non-positive capacities fall back to DefaultCapacity.
func New(capacity int) *MessageCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MessageCache{
		buffers:  make(map[string]*ring),
		capacity: capacity,
	}
}

// Append records a message for the conversation, evicting the single oldest
// entry when the buffer is full. The buffer is created on first use.
func (c *MessageCache) Append(conversationID string, m bridge.Message) {
	c.mu.RLock()
	b := c.buffers[conversationID]
	c.mu.RUnlock()

	if b == nil {
		c.mu.Lock()
		b = c.buffers[conversationID]
		if b == nil {
			b = newRing(c.capacity)
			c.buffers[conversationID] = b
		}
		c.mu.Unlock()
	}

	b.push(m)
}

// ReadLast returns up to n most recent messages for the conversation in
// chronological (oldest-first) order. Unknown conversations yield an empty
// slice, never an error.
func (c *MessageCache) ReadLast(conversationID string, n int) []bridge.Message {
	c.mu.RLock()
	b := c.buffers[conversationID]
	c.mu.RUnlock()

	if b == nil || n <= 0 {
		return []bridge.Message{}
	}
	return b.last(n)
}

// Total reports the number of messages currently retained across all
// conversations. Used by the health endpoint.
func (c *MessageCache) Total() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0
	for _, b := range c.buffers {
		total += b.len()
	}
	return total
}

// ring is a fixed-capacity circular buffer. push is O(1); entries are never
// mutated after insertion.
type ring struct {
	mu      sync.RWMutex
	entries []bridge.Message
	start   int
	size    int
}

func newRing(capacity int) *ring {
	return &ring{entries: make([]bridge.Message, capacity)}
}

func (r *ring) push(m bridge.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == len(r.entries) {
		// Full: overwrite the oldest slot and advance the window.
		r.entries[r.start] = m
		r.start = (r.start + 1) % len(r.entries)
		return
	}
	r.entries[(r.start+r.size)%len(r.entries)] = m
	r.size++
}

func (r *ring) last(n int) []bridge.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > r.size {
		n = r.size
	}
	out := make([]bridge.Message, 0, n)
	for i := r.size - n; i < r.size; i++ {
		out = append(out, r.entries[(r.start+i)%len(r.entries)])
	}
	return out
}

func (r *ring) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

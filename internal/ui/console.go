package ui

import (
	"strings"
	"sync"
)

// Console buffers program output for the runner view. The sequence number
// changes on every write so the view only re-renders when needed.
type Console struct {
	mu  sync.Mutex
	buf strings.Builder
	seq uint64
}

func (c *Console) Write(s string) {
	if s == "" {
		return
	}
	c.mu.Lock()
	c.buf.WriteString(s)
	c.seq++
	c.mu.Unlock()
}

func (c *Console) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Snapshot returns the text together with its sequence number.
func (c *Console) Snapshot() (string, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String(), c.seq
}

package sync

import (
	"context"
	"sync"
)

// Coordinator runs sync cycles one at a time and remembers whether the
// last cycle asked for another pass. Local store writes never depend on
// it; a failed cycle leaves the store untouched and the caller decides
// whether to surface the connectivity warning.
type Coordinator struct {
	mu        sync.Mutex
	backend   Backend
	replica   Replica
	needsSync bool
	lastErr   error
}

func NewCoordinator(backend Backend, replica Replica) *Coordinator {
	return &Coordinator{backend: backend, replica: replica}
}

// SetBackend swaps the configured backend for subsequent cycles.
func (c *Coordinator) SetBackend(backend Backend) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backend = backend
}

func (c *Coordinator) Backend() Backend {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend
}

// Sync runs exactly one cycle against the configured backend. The
// returned flag mirrors the replica's needs-further-sync indicator and
// is also retained for NeedsSync.
func (c *Coordinator) Sync(ctx context.Context) (bool, error) {
	c.mu.Lock()
	backend := c.backend
	replica := c.replica
	c.mu.Unlock()

	needs, err := backend.Run(ctx, replica)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	if err == nil {
		c.needsSync = needs
	} else {
		c.needsSync = true
	}
	return needs, err
}

// MarkDirty records that local state changed since the last cycle. Wired
// as the store's commit hook.
func (c *Coordinator) MarkDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.needsSync = true
}

// NeedsSync reports whether the last cycle left work outstanding, either
// because the replica said so or because the cycle failed.
func (c *Coordinator) NeedsSync() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needsSync
}

// LastError returns the error from the most recent cycle, if any.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

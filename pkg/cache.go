package qvectors

import (
	"fmt"
	"sync"
)

// RunCache keeps the conditions of the last run seen. Readers share the
// snapshot; a run change is loaded by a single writer.
type RunCache struct {
	provider  ConditionsProvider
	harmonics []int

	mu      sync.RWMutex
	current *RunConditions
	reloads int
}

func NewRunCache(provider ConditionsProvider, harmonics []int) *RunCache {
	return &RunCache{provider: provider, harmonics: harmonics}
}

// Get returns the conditions of run, refreshing the cache if it holds
// another run.
func (c *RunCache) Get(run int) (*RunConditions, error) {
	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()
	if current != nil && current.Run == run {
		return current, nil
	}
	return c.Refresh(run)
}

// Refresh loads run unless another caller already did. On failure the cache
// is left empty.
func (c *RunCache) Refresh(run int) (*RunConditions, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.current.Run == run {
		return c.current, nil
	}

	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Loading conditions for run %d", run), "cache")
	}
	conditions, err := LoadRunConditions(c.provider, run, c.harmonics)
	if err != nil {
		c.current = nil
		return nil, fmt.Errorf("error loading conditions for run %d: %w", run, err)
	}
	c.current = conditions
	c.reloads++
	runReloads.Inc()
	return conditions, nil
}

// Current returns the cached snapshot, nil before the first load.
func (c *RunCache) Current() *RunConditions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *RunCache) Reloads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reloads
}

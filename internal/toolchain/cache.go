package toolchain

import (
	"fmt"
	"sync"

	"github.com/goplus/kiss/internal/par"
	"github.com/qiniu/x/errors"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes resolved compilers by name. It is safe for concurrent
// use. Failed resolutions are not cached.
type Cache struct {
	reg *Registry

	mu       sync.RWMutex
	resolved map[string]*ResolvedCompiler
	flight   singleflight.Group
}

// NewCache returns a Cache resolving compilers declared in reg.
// reg must not change once the Cache is in use.
func NewCache(reg *Registry) *Cache {
	return &Cache{
		reg:      reg,
		resolved: make(map[string]*ResolvedCompiler),
	}
}

// Registry returns the registry c resolves from.
func (c *Cache) Registry() *Registry {
	return c.reg
}

// Resolve returns the resolved compiler name, resolving it on first use.
// Concurrent calls for the same name share one resolution.
func (c *Cache) Resolve(name string) (*ResolvedCompiler, error) {
	c.mu.RLock()
	rc, ok := c.resolved[name]
	c.mu.RUnlock()
	if ok {
		return rc, nil
	}

	v, err, _ := c.flight.Do(name, func() (any, error) {
		rc, err := Resolve(c.reg, name)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if old, ok := c.resolved[name]; ok {
			return old, nil
		}
		c.resolved[name] = rc
		return rc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ResolvedCompiler), nil
}

// ResolveAll resolves every concrete compiler of the registry with at
// most jobs resolutions running at a time. It reports every failure,
// ordered by compiler name.
func (c *Cache) ResolveAll(jobs int) (map[string]*ResolvedCompiler, error) {
	if jobs < 1 {
		jobs = 1
	}
	names := c.reg.Compilers()
	var work par.Work[string]
	for _, name := range names {
		work.Add(name)
	}
	failed := work.Do(jobs, func(name string) error {
		_, err := c.Resolve(name)
		return err
	})

	var errs errors.List
	ret := make(map[string]*ResolvedCompiler, len(names))
	for _, name := range names {
		if err, ok := failed[name]; ok {
			errs.Add(err)
			continue
		}
		c.mu.RLock()
		ret[name] = c.resolved[name]
		c.mu.RUnlock()
	}
	if len(errs) > 0 {
		return ret, fmt.Errorf("failed to resolve %d of %d compilers: %w", len(errs), len(names), errs.ToError())
	}
	return ret, nil
}

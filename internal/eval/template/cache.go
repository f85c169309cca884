package template

import "sync"

// Cache stores compiled templates keyed by their source text
type Cache interface {
	Get(source string) (*Template, bool)
	Put(source string, tpl *Template)
}

// MemoryCache is an unbounded, process-lifetime Cache
type MemoryCache struct {
	templates map[string]*Template
	mu        sync.RWMutex
}

// NewMemoryCache creates an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		templates: make(map[string]*Template),
	}
}

// Get returns the template compiled from source, if any
func (c *MemoryCache) Get(source string) (*Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tpl, ok := c.templates[source]
	return tpl, ok
}

// Put stores tpl unless source is already cached
func (c *MemoryCache) Put(source string, tpl *Template) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.templates[source]; ok {
		return
	}
	c.templates[source] = tpl
}

// Len returns the number of cached templates
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

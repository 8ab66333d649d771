package resolve

import "sync"

// ScopeCache remembers which connection serves a scope (an Azure
// subscription id) and the most recently used scope.
//
// Entries are only added or overwritten, never evicted. The cache lives for
// the process and is safe for concurrent use.
type ScopeCache struct {
	mu          sync.RWMutex
	connections map[string]string
	lastScope   string
}

// NewScopeCache creates an empty scope cache.
func NewScopeCache() *ScopeCache {
	return &ScopeCache{connections: make(map[string]string)}
}

// Remember records connection for scope and marks scope as last used.
// Empty values are ignored.
func (c *ScopeCache) Remember(scope, connection string) {
	if scope == "" || connection == "" {
		return
	}
	c.mu.Lock()
	c.connections[scope] = connection
	c.lastScope = scope
	c.mu.Unlock()
}

// Connection returns the connection remembered for scope.
func (c *ScopeCache) Connection(scope string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conn, ok := c.connections[scope]
	return conn, ok
}

// Last returns the most recently remembered scope and its connection.
func (c *ScopeCache) Last() (scope, connection string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastScope == "" {
		return "", "", false
	}
	return c.lastScope, c.connections[c.lastScope], true
}

// Len returns the number of remembered scopes.
func (c *ScopeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.connections)
}

package resolve_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/cckmops/internal/resolve"
)

func TestScopeCache(t *testing.T) {
	t.Parallel()

	cache := resolve.NewScopeCache()
	_, _, ok := cache.Last()
	assert.False(t, ok)

	cache.Remember("", "conn")
	cache.Remember("sub", "")
	assert.Equal(t, 0, cache.Len())

	cache.Remember("sub1", "conn1")
	cache.Remember("sub2", "conn2")
	cache.Remember("sub1", "conn1b")

	conn, ok := cache.Connection("sub1")
	assert.True(t, ok)
	assert.Equal(t, "conn1b", conn)

	scope, conn, ok := cache.Last()
	assert.True(t, ok)
	assert.Equal(t, "sub1", scope)
	assert.Equal(t, "conn1b", conn)
	assert.Equal(t, 2, cache.Len())
}

// TestScopeCacheConcurrent verifies the cache is safe for concurrent use
func TestScopeCacheConcurrent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping concurrency test in short mode")
	}

	t.Parallel()

	cache := resolve.NewScopeCache()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers * 2)

	for i := 0; i < workers; i++ {
		go func(id int) {
			defer wg.Done()
			cache.Remember(fmt.Sprintf("sub-%d", id), fmt.Sprintf("conn-%d", id))
		}(i)
		go func() {
			defer wg.Done()
			cache.Last()
			cache.Connection("sub-0")
		}()
	}

	wg.Wait()

	assert.Equal(t, workers, cache.Len())
	for i := 0; i < workers; i++ {
		conn, ok := cache.Connection(fmt.Sprintf("sub-%d", i))
		assert.True(t, ok)
		assert.Equal(t, fmt.Sprintf("conn-%d", i), conn)
	}
}

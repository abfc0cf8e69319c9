package testutil

import (
	"testing"

	"github.com/nhle/school-dashboard/internal/cache"
)

// NewTestCache creates an in-memory notification cache with all
// migrations applied. It automatically closes the cache when the test
// completes.
func NewTestCache(t *testing.T) *cache.Cache {
	t.Helper()

	c, err := cache.Open(":memory:")
	if err != nil {
		t.Fatalf("creating test cache: %v", err)
	}

	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("closing test cache: %v", err)
		}
	})

	return c
}

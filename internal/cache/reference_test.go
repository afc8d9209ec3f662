package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceCacheSetGetInvalidate(t *testing.T) {
	c, err := NewReferenceCache()
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get("color_keys")
	assert.False(t, ok)

	assert.True(t, c.Set("color_keys", []string{"1", "2"}, 2, c.Generation()))
	v, ok := c.Get("color_keys")
	require.True(t, ok)
	assert.Equal(t, []string{"1", "2"}, v)

	c.Invalidate()
	_, ok = c.Get("color_keys")
	assert.False(t, ok)
}

func TestNilReferenceCache(t *testing.T) {
	var c *ReferenceCache
	assert.False(t, c.Set("k", 1, 1, c.Generation()))
	_, ok := c.Get("k")
	assert.False(t, ok)
	c.Invalidate()
	c.Close()
}

func TestReferenceCacheSkipsSetAfterInvalidate(t *testing.T) {
	c, err := NewReferenceCache()
	require.NoError(t, err)
	defer c.Close()

	// a reader loads, a writer invalidates, then the reader tries to store
	gen := c.Generation()
	c.Invalidate()
	assert.False(t, c.Set("color_keys", []string{"stale"}, 1, gen))
	_, ok := c.Get("color_keys")
	assert.False(t, ok)

	assert.True(t, c.Set("color_keys", []string{"fresh"}, 1, c.Generation()))
	v, ok := c.Get("color_keys")
	require.True(t, ok)
	assert.Equal(t, []string{"fresh"}, v)
}

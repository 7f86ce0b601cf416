package cachechain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intEqual(a, b int) bool { return a == b }

// TestSingleLayerLRU reproduces the single-layer LRU walkthrough: a
// four-slot cache seeded with three fruits, then driven past capacity.
func TestSingleLayerLRU(t *testing.T) {
	c, err := NewCache(
		WithCapacity[int](4),
		WithInitValues([]Pair[int]{
			{Key: "blueberry", Value: 1},
			{Key: "cherry", Value: 3},
			{Key: "strawberry", Value: 2},
		}),
	)
	require.NoError(t, err)

	require.NoError(t, c.Store("tangerine", 4))
	require.NoError(t, c.Store("mango", 5))
	require.NoError(t, c.Store("strawberry", 6))

	require.Equal(t, []Pair[int]{
		{Key: "cherry", Value: 3},
		{Key: "tangerine", Value: 4},
		{Key: "mango", Value: 5},
		{Key: "strawberry", Value: 6},
	}, c.Items())
	require.Equal(t, 4, c.Len())
	require.False(t, c.Contains("blueberry"))
}

func TestCacheLookupMiss(t *testing.T) {
	c, err := NewCache[int](WithCapacity[int](2))
	require.NoError(t, err)

	_, err = c.Lookup("missing")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheDeleteAndPop(t *testing.T) {
	c, err := NewCache[string](WithCapacity[string](3))
	require.NoError(t, err)

	require.NoError(t, c.Store("a", "apple"))
	require.NoError(t, c.Store("b", "banana"))

	v, err := c.Pop("a")
	require.NoError(t, err)
	require.Equal(t, "apple", v)
	require.False(t, c.Contains("a"))

	require.Equal(t, "fallback", c.PopOr("missing", "fallback"))

	err = c.Delete("missing")
	require.ErrorIs(t, err, ErrKeyMissing)
}

func TestCacheSetCapacityTrimsFromMRUEnd(t *testing.T) {
	c, err := NewCache[int](WithCapacity[int](4), WithInitValues([]Pair[int]{
		{Key: "a", Value: 1},
		{Key: "b", Value: 2},
		{Key: "c", Value: 3},
		{Key: "d", Value: 4},
	}))
	require.NoError(t, err)

	require.NoError(t, c.SetCapacity(2))
	require.Equal(t, 2, c.Len())
	// MRU end (most recently inserted: c then d) is trimmed first.
	require.Equal(t, []Pair[int]{{Key: "a", Value: 1}, {Key: "b", Value: 2}}, c.Items())
}

func TestCacheEqual(t *testing.T) {
	build := func() *Cache[int] {
		c, err := NewCache[int](WithCapacity[int](2), WithInitValues([]Pair[int]{
			{Key: "a", Value: 1},
			{Key: "b", Value: 2},
		}))
		require.NoError(t, err)
		return c
	}

	a, b := build(), build()
	require.True(t, a.Equal(b, intEqual))

	require.NoError(t, b.Store("c", 3))
	require.False(t, a.Equal(b, intEqual))
}

func TestWithOpenBackingStoreRequiresTerminalStore(t *testing.T) {
	c, err := NewCache[int](WithCapacity[int](2))
	require.NoError(t, err)

	ran := false
	err = c.WithOpenBackingStore(t.TempDir(), func() error {
		ran = true
		return nil
	})
	require.ErrorIs(t, err, ErrNoBackingStore)
	require.False(t, ran)
}

func TestConfigurationErrors(t *testing.T) {
	_, err := NewCache[int](WithCapacity[int](0))
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	_, err = NewCache[int](
		WithInitValues([]Pair[int]{{Key: "a", Value: 1}}),
		WithInitValuesMap(map[string]int{"b": 2}),
	)
	require.Error(t, err)
}

package cache

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearPrecisionSemantics(t *testing.T) {
	c := NewLinear[*big.Float]()
	v := big.NewFloat(3.25).SetPrec(128)

	require.False(t, c.Check(7, 64), "empty cache must miss")

	c.Store(7, v, 128)

	for _, prec := range []uint{1, 64, 127, 128} {
		assert.Truef(t, c.Check(7, prec), "check at %d bits after store at 128", prec)
	}
	assert.False(t, c.Check(7, 129), "stored precision is insufficient")
	assert.False(t, c.Check(7, 1024))

	got := c.Fetch(7)
	assert.Same(t, v, got, "fetch must return exactly the stored value")

	got, ok := c.Lookup(7, 200)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStoreKeepsBetterEntry(t *testing.T) {
	c := NewLinear[string]()
	c.Store(2, "good", 256)
	c.Store(2, "worse", 64)

	v, ok := c.Lookup(2, 200)
	require.True(t, ok)
	assert.Equal(t, "good", v)

	c.Store(2, "better", 512)
	v, ok = c.Lookup(2, 400)
	require.True(t, ok)
	assert.Equal(t, "better", v)
}

func TestGrowthPreservesEntries(t *testing.T) {
	c := NewLinear[int]()
	for i := 0; i < 50; i++ {
		c.Store(i, i*i, Exact)
	}
	before := c.Cap()
	require.GreaterOrEqual(t, before, 50)

	c.Store(10_000, -1, Exact)
	assert.Greater(t, c.Cap(), before)
	assert.Equal(t, growTo(10_000), c.Cap())

	for i := 0; i < 50; i++ {
		require.True(t, c.Check(i, Exact))
		assert.Equal(t, i*i, c.Fetch(i))
	}
	for _, i := range []int{50, 51, 9_999, 10_001} {
		assert.Falsef(t, c.Check(i, 0), "new slot %d must start invalid", i)
	}
	assert.Equal(t, 51, c.Len())
}

func TestFetchInvalidPanics(t *testing.T) {
	c := NewLinear[int]()
	assert.Panics(t, func() { c.Fetch(3) })
	c.Store(1, 1, 10)
	assert.Panics(t, func() { c.Fetch(0) })
	assert.Panics(t, func() { c.Check(-1, 0) })
}

func TestTriangleLayout(t *testing.T) {
	assert.Equal(t, 0, TriIndex(0, 0))
	assert.Equal(t, 1, TriIndex(1, 0))
	assert.Equal(t, 2, TriIndex(1, 1))
	assert.Equal(t, 3, TriIndex(2, 0))
	assert.Equal(t, uint64(5050+7), TriIndex(uint64(100), 7))

	c := NewTriangle[int]()
	for n := 0; n < 30; n++ {
		for k := 0; k <= n; k++ {
			c.Store(n, k, 1000*n+k, Exact)
		}
	}
	for n := 0; n < 30; n++ {
		for k := 0; k <= n; k++ {
			require.True(t, c.Check(n, k, Exact))
			require.Equal(t, 1000*n+k, c.Fetch(n, k))
		}
	}
	assert.Equal(t, 30*31/2, c.Len())

	assert.Panics(t, func() { c.Check(3, 4, 0) })
	assert.Panics(t, func() { c.Store(3, -1, 0, 0) })
}

func TestBypassMode(t *testing.T) {
	c := NewTriangle[int]()
	c.Store(4, 2, 6, Exact)
	require.True(t, c.Check(4, 2, Exact))

	c.SetDisabled(true)
	assert.True(t, c.Disabled())
	assert.False(t, c.Check(4, 2, 0))
	c.Store(5, 2, 10, Exact)

	c.SetDisabled(false)
	assert.True(t, c.Check(4, 2, Exact), "bypass must not discard existing entries")
	assert.False(t, c.Check(5, 2, 0), "stores during bypass are dropped")
}

func TestStatsAndClear(t *testing.T) {
	c := NewLinear[int]()
	c.Store(0, 1, Exact)
	c.Check(0, 0)
	c.Check(0, 0)
	c.Check(1, 0)

	st := c.Stats()
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.InDelta(t, 2.0/3.0, st.HitRate, 1e-12)
	assert.InDelta(t, 2.0/3.0, c.HitRate(), 1e-12)

	c.Clear()
	st = c.Stats()
	assert.Zero(t, st.Len)
	assert.Zero(t, st.Hits)
	assert.False(t, c.Check(0, 0))
}

func TestConcurrentStoreAndLookup(t *testing.T) {
	c := NewLinear[int]()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				idx := (i*7 + g) % 300
				if v, ok := c.Lookup(idx, 10); ok {
					assert.Equal(t, idx, v)
					continue
				}
				c.Store(idx, idx, 10)
			}
		}(g)
	}
	wg.Wait()

	for i := 0; i < 300; i++ {
		if c.Check(i, 10) {
			assert.Equal(t, i, c.Fetch(i))
		}
	}
}

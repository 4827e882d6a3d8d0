package cache

import "fmt"

// Linear caches values keyed by a single non-negative index.
type Linear[V any] struct {
	s store[V]
}

// NewLinear returns an empty linear cache.
func NewLinear[V any]() *Linear[V] {
	return &Linear[V]{}
}

// Check reports whether n holds a valid entry computed at prec bits or more.
func (c *Linear[V]) Check(n int, prec uint) bool {
	return c.s.check(checkIndex(n), prec)
}

// Fetch returns the value stored at n. It must only follow a successful
// Check; fetching an invalid slot panics.
func (c *Linear[V]) Fetch(n int) V {
	return c.s.fetch(checkIndex(n))
}

// Lookup is Check and Fetch under a single read lock.
func (c *Linear[V]) Lookup(n int, prec uint) (V, bool) {
	return c.s.lookup(checkIndex(n), prec)
}

// Store records v as computed at prec bits.
func (c *Linear[V]) Store(n int, v V, prec uint) {
	c.s.store(checkIndex(n), v, prec)
}

// SetDisabled switches bypass mode: every check misses and stores are dropped.
func (c *Linear[V]) SetDisabled(disabled bool) { c.s.disabled.Store(disabled) }

func (c *Linear[V]) Disabled() bool { return c.s.disabled.Load() }

func (c *Linear[V]) Clear() { c.s.clear() }

func (c *Linear[V]) Len() int { return c.s.stats().Len }

func (c *Linear[V]) Cap() int { return c.s.stats().Cap }

func (c *Linear[V]) HitRate() float64 { return c.s.stats().HitRate }

func (c *Linear[V]) Stats() Stats { return c.s.stats() }

// Triangle caches values keyed by a pair (n, k) with 0 <= k <= n, such as
// binomial coefficients.
type Triangle[V any] struct {
	s store[V]
}

// NewTriangle returns an empty triangular cache.
func NewTriangle[V any]() *Triangle[V] {
	return &Triangle[V]{}
}

func (c *Triangle[V]) Check(n, k int, prec uint) bool {
	return c.s.check(triIndex(n, k), prec)
}

// Fetch returns the value stored at (n, k). Like [Linear.Fetch] it panics
// when the slot is not valid.
func (c *Triangle[V]) Fetch(n, k int) V {
	return c.s.fetch(triIndex(n, k))
}

func (c *Triangle[V]) Lookup(n, k int, prec uint) (V, bool) {
	return c.s.lookup(triIndex(n, k), prec)
}

func (c *Triangle[V]) Store(n, k int, v V, prec uint) {
	c.s.store(triIndex(n, k), v, prec)
}

func (c *Triangle[V]) SetDisabled(disabled bool) { c.s.disabled.Store(disabled) }

func (c *Triangle[V]) Disabled() bool { return c.s.disabled.Load() }

func (c *Triangle[V]) Clear() { c.s.clear() }

func (c *Triangle[V]) Len() int { return c.s.stats().Len }

func (c *Triangle[V]) Cap() int { return c.s.stats().Cap }

func (c *Triangle[V]) HitRate() float64 { return c.s.stats().HitRate }

func (c *Triangle[V]) Stats() Stats { return c.s.stats() }

func checkIndex(n int) int {
	if n < 0 {
		panic(fmt.Sprintf("cache: negative index %d", n))
	}
	return n
}

func triIndex(n, k int) int {
	if n < 0 || k < 0 || k > n {
		panic(fmt.Sprintf("cache: triangle key (%d, %d) out of range", n, k))
	}
	return TriIndex(n, k)
}

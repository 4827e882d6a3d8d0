package cache

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// Exact marks a value that is valid at any precision.
const Exact = ^uint(0)

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits    int64   `json:"hits" yaml:"hits"`
	Misses  int64   `json:"misses" yaml:"misses"`
	HitRate float64 `json:"hit_rate" yaml:"hit_rate"`
	Len     int     `json:"len" yaml:"len"`
	Cap     int     `json:"cap" yaml:"cap"`
}

type entry[V any] struct {
	value V
	prec  uint
	valid bool
}

// store is the slot array behind both layouts.
type store[V any] struct {
	mu       sync.RWMutex
	slots    []entry[V]
	disabled atomic.Bool
	hits     int64
	misses   int64
}

// TriIndex maps the pair (n, k) onto the triangular slot n(n+1)/2 + k.
func TriIndex[T constraints.Integer](n, k T) T {
	return n*(n+1)/2 + k
}

// growTo returns the capacity used when idx does not fit.
func growTo[T constraints.Integer](idx T) T {
	return 3*idx/2 + 100
}

func (s *store[V]) check(idx int, prec uint) bool {
	_, ok := s.lookup(idx, prec)
	return ok
}

func (s *store[V]) lookup(idx int, prec uint) (V, bool) {
	var zero V
	if s.disabled.Load() {
		atomic.AddInt64(&s.misses, 1)
		return zero, false
	}

	s.mu.RLock()
	if idx < len(s.slots) {
		e := s.slots[idx]
		if e.valid && e.prec >= prec {
			s.mu.RUnlock()
			atomic.AddInt64(&s.hits, 1)
			return e.value, true
		}
	}
	s.mu.RUnlock()

	atomic.AddInt64(&s.misses, 1)
	return zero, false
}

func (s *store[V]) fetch(idx int) V {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.disabled.Load() || idx >= len(s.slots) || !s.slots[idx].valid {
		panic(fmt.Sprintf("cache: fetch of invalid slot %d", idx))
	}
	return s.slots[idx].value
}

func (s *store[V]) store(idx int, v V, prec uint) {
	if s.disabled.Load() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx >= len(s.slots) {
		grown := make([]entry[V], growTo(idx))
		copy(grown, s.slots)
		s.slots = grown
	}

	// Never replace a better entry with a worse one.
	if cur := s.slots[idx]; cur.valid && cur.prec > prec {
		return
	}
	s.slots[idx] = entry[V]{value: v, prec: prec, valid: true}
}

func (s *store[V]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = nil
	atomic.StoreInt64(&s.hits, 0)
	atomic.StoreInt64(&s.misses, 0)
}

func (s *store[V]) stats() Stats {
	s.mu.RLock()
	n := 0
	for _, e := range s.slots {
		if e.valid {
			n++
		}
	}
	st := Stats{Len: n, Cap: len(s.slots)}
	s.mu.RUnlock()

	st.Hits = atomic.LoadInt64(&s.hits)
	st.Misses = atomic.LoadInt64(&s.misses)
	if total := st.Hits + st.Misses; total > 0 {
		st.HitRate = float64(st.Hits) / float64(total)
	}
	return st
}

// Package combin provides the combinatorial building blocks of the zeta
// series: cached exact binomial coefficients and Bernoulli numbers,
// Bernoulli polynomials, and rising/falling Pochhammer products over
// arbitrary precision complex numbers.
package combin

import (
	"math/big"
	"sync"

	"github.com/riemann-research/hurwitz-hunter/cache"
	"github.com/riemann-research/hurwitz-hunter/mpc"
)

// Table owns the binomial and Bernoulli caches. The zero value is not
// usable; use NewTable.
type Table struct {
	binom *cache.Triangle[*big.Int]
	bern  *cache.Linear[*big.Rat]

	// fill serializes table construction; lookups of filled entries do
	// not take it.
	fill sync.Mutex
}

// Stats reports the activity of both caches.
type Stats struct {
	Binomial  cache.Stats `json:"binomial" yaml:"binomial"`
	Bernoulli cache.Stats `json:"bernoulli" yaml:"bernoulli"`
}

func NewTable() *Table {
	return &Table{
		binom: cache.NewTriangle[*big.Int](),
		bern:  cache.NewLinear[*big.Rat](),
	}
}

// SetDisabled puts both caches into bypass mode. Results are still
// correct, just recomputed on every call.
func (t *Table) SetDisabled(disabled bool) {
	t.binom.SetDisabled(disabled)
	t.bern.SetDisabled(disabled)
}

func (t *Table) Stats() Stats {
	return Stats{Binomial: t.binom.Stats(), Bernoulli: t.bern.Stats()}
}

func (t *Table) Clear() {
	t.binom.Clear()
	t.bern.Clear()
}

// Binomial returns C(n, k), zero outside 0 <= k <= n. The returned value is
// shared with the cache and must not be modified.
func (t *Table) Binomial(n, k int) *big.Int {
	switch {
	case k < 0 || n < 0 || k > n:
		return new(big.Int)
	case k == 0 || k == n:
		return big.NewInt(1)
	}
	if v, ok := t.binom.Lookup(n, k, cache.Exact); ok {
		return v
	}
	return t.row(n)[k]
}

// row builds row n of Pascal's triangle by C(n,k) = C(n-1,k-1) + C(n-1,k),
// starting from the deepest row already in the cache.
func (t *Table) row(n int) []*big.Int {
	t.fill.Lock()
	defer t.fill.Unlock()

	start := n
	for start > 0 && !t.binom.Check(start, start/2, cache.Exact) {
		start--
	}

	prev := make([]*big.Int, start+1)
	for k := range prev {
		if k == 0 || k == start {
			prev[k] = big.NewInt(1)
			continue
		}
		prev[k] = t.binom.Fetch(start, k)
	}

	for r := start + 1; r <= n; r++ {
		cur := make([]*big.Int, r+1)
		cur[0], cur[r] = big.NewInt(1), big.NewInt(1)
		for k := 1; k < r; k++ {
			cur[k] = new(big.Int).Add(prev[k-1], prev[k])
		}
		for k := 1; k < r; k++ {
			t.binom.Store(r, k, cur[k], cache.Exact)
		}
		prev = cur
	}
	return prev
}

// Bernoulli returns the Bernoulli number B_n with the convention
// B_1 = -1/2. The returned value must not be modified.
func (t *Table) Bernoulli(n int) *big.Rat {
	switch {
	case n < 0:
		panic("combin: negative Bernoulli index")
	case n == 0:
		return big.NewRat(1, 1)
	case n == 1:
		return big.NewRat(-1, 2)
	case n%2 == 1:
		return new(big.Rat)
	}
	if v, ok := t.bern.Lookup(n, cache.Exact); ok {
		return v
	}
	return t.bernoulliUpTo(n)
}

// bernoulliUpTo fills the even Bernoulli numbers through n from
//
//	sum_{k=0}^{m} C(m+1, k) B_k = 0.
func (t *Table) bernoulliUpTo(n int) *big.Rat {
	t.fill.Lock()
	known := 2
	for known <= n && t.bern.Check(known, cache.Exact) {
		known += 2
	}
	t.fill.Unlock()

	// Keep a local copy so the recurrence works in bypass mode too.
	b := make([]*big.Rat, n+1)
	b[0], b[1] = big.NewRat(1, 1), big.NewRat(-1, 2)
	for m := 2; m <= n; m++ {
		if m%2 == 1 {
			b[m] = new(big.Rat)
			continue
		}
		if m < known {
			b[m] = t.bern.Fetch(m)
			continue
		}
		sum := new(big.Rat)
		term := new(big.Rat)
		for k := 0; k < m; k++ {
			if b[k].Sign() == 0 {
				continue
			}
			term.SetInt(t.Binomial(m+1, k))
			term.Mul(term, b[k])
			sum.Add(sum, term)
		}
		sum.Quo(sum, big.NewRat(int64(m+1), 1))
		b[m] = sum.Neg(sum)
		t.bern.Store(m, b[m], cache.Exact)
	}
	return b[n]
}

// BernoulliPoly evaluates B_n(x) = sum_k C(n,k) B_k x^(n-k) by Horner's
// rule at the working precision.
func (t *Table) BernoulliPoly(ctx mpc.Context, n int, x *big.Float) *big.Float {
	coef := func(j int) *big.Float {
		r := new(big.Rat).SetInt(t.Binomial(n, j))
		r.Mul(r, t.Bernoulli(n-j))
		return ctx.Float().SetRat(r)
	}
	acc := coef(n)
	for j := n - 1; j >= 0; j-- {
		acc = ctx.Float().Mul(acc, x)
		acc.Add(acc, coef(j))
	}
	return acc
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the process-wide table used by the package functions.
func Default() *Table {
	defaultOnce.Do(func() { defaultTable = NewTable() })
	return defaultTable
}

// Binomial returns C(n, k) from the default table.
func Binomial(n, k int) *big.Int { return Default().Binomial(n, k) }

// Bernoulli returns B_n from the default table.
func Bernoulli(n int) *big.Rat { return Default().Bernoulli(n) }

// BernoulliPoly evaluates B_n(x) using the default table.
func BernoulliPoly(ctx mpc.Context, n int, x *big.Float) *big.Float {
	return Default().BernoulliPoly(ctx, n, x)
}

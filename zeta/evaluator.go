package zeta

import (
	"io"
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/riemann-research/hurwitz-hunter/cache"
	"github.com/riemann-research/hurwitz-hunter/combin"
	"github.com/riemann-research/hurwitz-hunter/mpc"
)

// DefaultMaxDepth bounds the duplication recursion of the periodic zeta.
// It is reached for q within about 2^-64 of an integer.
const DefaultMaxDepth = 64

// Options configure an Evaluator.
type Options struct {
	Logger       logrus.FieldLogger
	Polylog      PolylogStrategy
	Hurwitz      HurwitzStrategy
	MaxDepth     int
	DisableCache bool
	// Parallel evaluates the two periodic zeta branches of the reflection
	// formula concurrently.
	Parallel bool
}

// Stats is a snapshot of the evaluator caches.
type Stats struct {
	Binomial       cache.Stats `json:"binomial" yaml:"binomial"`
	Bernoulli      cache.Stats `json:"bernoulli" yaml:"bernoulli"`
	Logs           cache.Stats `json:"logs" yaml:"logs"`
	EulerMaclaurin cache.Stats `json:"euler_maclaurin" yaml:"euler_maclaurin"`
	Constants      cache.Stats `json:"constants" yaml:"constants"`
}

// Evaluator evaluates the polylog / periodic zeta / Hurwitz zeta family.
// It owns the caches shared by its calls and is safe for concurrent use;
// each call carries its own precision in an mpc.Context.
type Evaluator struct {
	opts  Options
	log   logrus.FieldLogger
	table *combin.Table

	logs   *cache.Linear[*big.Float] // ln k
	emCoef *cache.Linear[*big.Float] // B_2k / (2k)!
}

// New returns an evaluator. A nil logger discards all output.
func New(opts Options) *Evaluator {
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	e := &Evaluator{
		opts:   opts,
		log:    opts.Logger,
		logs:   cache.NewLinear[*big.Float](),
		emCoef: cache.NewLinear[*big.Float](),
	}
	if opts.DisableCache {
		e.table = combin.NewTable()
		e.table.SetDisabled(true)
		e.logs.SetDisabled(true)
		e.emCoef.SetDisabled(true)
	} else {
		e.table = combin.Default()
	}
	return e
}

// Options returns the evaluator configuration.
func (e *Evaluator) Options() Options { return e.opts }

func (e *Evaluator) Stats() Stats {
	ts := e.table.Stats()
	return Stats{
		Binomial:       ts.Binomial,
		Bernoulli:      ts.Bernoulli,
		Logs:           e.logs.Stats(),
		EulerMaclaurin: e.emCoef.Stats(),
		Constants:      mpc.ConstantStats(),
	}
}

// ClearCache drops the evaluator's own caches. The shared binomial table
// is left alone.
func (e *Evaluator) ClearCache() {
	e.logs.Clear()
	e.emCoef.Clear()
}

// logInt returns ln k at the context precision, through the cache.
func (e *Evaluator) logInt(ctx mpc.Context, k int) *big.Float {
	if v, ok := e.logs.Lookup(k, ctx.Prec()); ok {
		return v
	}
	v, err := ctx.Log(ctx.Int(int64(k)))
	if err != nil {
		// k >= 1 by construction.
		panic(err)
	}
	e.logs.Store(k, v, ctx.Prec())
	return v
}

// emCoefficient returns B_2k/(2k)! at the context precision.
func (e *Evaluator) emCoefficient(ctx mpc.Context, k int) *big.Float {
	if v, ok := e.emCoef.Lookup(k, ctx.Prec()); ok {
		return v
	}
	fact := new(big.Int).MulRange(1, int64(2*k))
	r := new(big.Rat).SetFrac(big.NewInt(1), fact)
	r.Mul(r, e.table.Bernoulli(2*k))
	v := ctx.Float().SetRat(r)
	e.emCoef.Store(k, v, ctx.Prec())
	return v
}

var defaultEvaluator = New(Options{})

// Default returns the shared evaluator behind the package level functions.
func Default() *Evaluator { return defaultEvaluator }

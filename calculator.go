package main

import (
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/riemann-research/hurwitz-hunter/combin"
	"github.com/riemann-research/hurwitz-hunter/hyper"
	"github.com/riemann-research/hurwitz-hunter/mpc"
	"github.com/riemann-research/hurwitz-hunter/zeta"
)

// ==================== CALCULATION ENGINE ====================
type Function string

const (
	FuncHurwitz   Function = "hurwitz"
	FuncPeriodic  Function = "periodic"
	FuncBeta      Function = "beta"
	FuncPolylog   Function = "polylog"
	FuncRiemann   Function = "riemann"
	FuncGamma     Function = "gamma"
	FuncConfluent Function = "confluent"
)

// Point holds the arguments of one evaluation. Unused fields stay zero.
type Point struct {
	S    mpc.Complex
	Q    *big.Float
	Z    mpc.Complex
	A, B mpc.Complex
}

func (p Point) key(fn Function) string {
	var sb strings.Builder
	sb.WriteString(string(fn))
	for _, z := range []mpc.Complex{p.S, p.Z, p.A, p.B} {
		if z.Re != nil {
			sb.WriteString("|" + z.Re.Text('p', 0) + "," + z.Im.Text('p', 0))
		}
	}
	if p.Q != nil {
		sb.WriteString("|" + p.Q.Text('p', 0))
	}
	return sb.String()
}

type Result struct {
	Function Function      `json:"function"`
	Value    mpc.Complex   `json:"-"`
	Elapsed  time.Duration `json:"elapsed"`
	Cached   bool          `json:"cached"`
}

type HurwitzCalculator struct {
	config *CalculationConfig
	eval   *zeta.Evaluator
	ctx    mpc.Context
	cache  *ResultCache
	logger *logrus.Logger

	algorithms map[Function]func(Point) (mpc.Complex, error)
}

func NewHurwitzCalculator(cfg *CalculationConfig, logger *logrus.Logger) (*HurwitzCalculator, error) {
	strategy, err := zeta.ParseHurwitzStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	polylog, err := zeta.ParsePolylogStrategy(cfg.Polylog)
	if err != nil {
		return nil, err
	}

	opts := zeta.Options{
		Polylog:      polylog,
		Hurwitz:      strategy,
		MaxDepth:     cfg.MaxDepth,
		DisableCache: !cfg.UseCache,
		Parallel:     cfg.Parallel,
	}
	if logger != nil {
		opts.Logger = logger
	}

	hc := &HurwitzCalculator{
		config: cfg,
		ctx:    mpc.FromDigits(cfg.Digits),
		cache:  NewResultCache(),
		logger: logger,
		eval:   zeta.New(opts),
	}

	hc.selectAlgorithms()

	return hc, nil
}

func (hc *HurwitzCalculator) selectAlgorithms() {
	ctx, ev := hc.ctx, hc.eval
	hc.algorithms = map[Function]func(Point) (mpc.Complex, error){
		FuncHurwitz: func(p Point) (mpc.Complex, error) {
			return ev.HurwitzZeta(ctx, p.S, p.Q)
		},
		FuncPeriodic: func(p Point) (mpc.Complex, error) {
			return ev.PeriodicZeta(ctx, p.S, p.Q)
		},
		FuncBeta: func(p Point) (mpc.Complex, error) {
			return ev.PeriodicBeta(ctx, p.S, p.Q)
		},
		FuncPolylog: func(p Point) (mpc.Complex, error) {
			return ev.Polylog(ctx, p.S, p.Z, hc.config.Terms)
		},
		FuncRiemann: func(p Point) (mpc.Complex, error) {
			return ev.RiemannZeta(ctx, p.S)
		},
		FuncGamma: func(p Point) (mpc.Complex, error) {
			return ev.Gamma(ctx, p.S)
		},
		FuncConfluent: func(p Point) (mpc.Complex, error) {
			return hyper.Confluent(ctx, p.A, p.B, p.Z)
		},
	}
}

// Context returns the precision context all evaluations run at.
func (hc *HurwitzCalculator) Context() mpc.Context { return hc.ctx }

func (hc *HurwitzCalculator) Evaluator() *zeta.Evaluator { return hc.eval }

func (hc *HurwitzCalculator) Compute(fn Function, p Point) (Result, error) {
	start := time.Now()

	algorithm, ok := hc.algorithms[fn]
	if !ok {
		return Result{}, fmt.Errorf("unknown function %q", fn)
	}

	key := p.key(fn)
	if hc.config.UseCache {
		if v, ok := hc.cache.Get(key); ok {
			return Result{Function: fn, Value: v, Elapsed: time.Since(start), Cached: true}, nil
		}
	}

	v, err := algorithm(p)
	if err != nil {
		return Result{}, err
	}

	if hc.config.UseCache {
		hc.cache.Set(key, v)
	}

	elapsed := time.Since(start)
	if elapsed > time.Second && hc.logger != nil {
		hc.logger.Debugf("%s calculation took %v", fn, elapsed)
	}

	return Result{Function: fn, Value: v, Elapsed: elapsed}, nil
}

// BernoulliCheck compares B_n(q) against the value recovered from the
// periodic beta function at n and 1-q. It returns both and their distance.
func (hc *HurwitzCalculator) BernoulliCheck(n int, q *big.Float) (want, got, diff *big.Float, err error) {
	ctx := hc.ctx
	s := ctx.Real(ctx.Int(int64(n)))
	a, err := hc.eval.PeriodicBeta(ctx, s, q)
	if err != nil {
		return nil, nil, nil, err
	}
	b, err := hc.eval.PeriodicBeta(ctx, s, ctx.Float().Sub(ctx.Int(1), q))
	if err != nil {
		return nil, nil, nil, err
	}

	if n%2 == 0 {
		got = ctx.Float().Quo(ctx.Add(a, b).Re, ctx.Int(2))
		if n%4 == 0 {
			got.Neg(got)
		}
	} else {
		got = ctx.Float().Quo(ctx.Sub(a, b).Im, ctx.Int(2))
		if n%4 == 1 {
			got.Neg(got)
		}
	}
	want = combin.BernoulliPoly(ctx, n, q)
	diff = ctx.Float().Sub(want, got)
	return want, got, diff.Abs(diff), nil
}

// ==================== RESULT CACHE ====================
// ResultCache memoizes complete evaluations for repeated grid points.
type ResultCache struct {
	values map[string]mpc.Complex
	mu     sync.RWMutex
	hits   int64
	misses int64
}

func NewResultCache() *ResultCache {
	return &ResultCache{values: make(map[string]mpc.Complex)}
}

func (c *ResultCache) Get(key string) (mpc.Complex, bool) {
	c.mu.RLock()
	v, ok := c.values[key]
	c.mu.RUnlock()

	if ok {
		atomic.AddInt64(&c.hits, 1)
		return v, true
	}
	atomic.AddInt64(&c.misses, 1)
	return mpc.Complex{}, false
}

func (c *ResultCache) Set(key string, v mpc.Complex) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = v
}

func (c *ResultCache) HitRate() float64 {
	hits := float64(atomic.LoadInt64(&c.hits))
	misses := float64(atomic.LoadInt64(&c.misses))

	total := hits + misses
	if total == 0 {
		return 0
	}

	return hits / total
}

func (c *ResultCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

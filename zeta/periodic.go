package zeta

import (
	"fmt"
	"math"
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/riemann-research/hurwitz-hunter/mpc"
)

var half = big.NewFloat(0.5)

// PeriodicZeta returns F(s, q) = sum_{n>=1} e^(2 pi i n q) / n^s.
//
// q is reduced into [0, 1). Near the integers, where the polylog
// converges slowly, the duplication formula
//
//	F(s, q) = 2^(1-s) F(s, 2q) - F(s, q + 1/2)
//
// moves both branches towards the central region [0.25, 0.75]. Within
// epsilon of an integer the value is the Riemann zeta function.
func (e *Evaluator) PeriodicZeta(ctx mpc.Context, s mpc.Complex, q *big.Float) (mpc.Complex, error) {
	return e.periodicZeta(ctx, s, q, false)
}

// periodicZeta optionally forces one duplication step at the top level
// regardless of the region of q.
func (e *Evaluator) periodicZeta(ctx mpc.Context, s mpc.Complex, q *big.Float, split bool) (mpc.Complex, error) {
	if q.IsInf() {
		return mpc.Complex{}, domainError("periodic zeta needs finite q")
	}

	sigma, _ := s.Re.Float64()
	depth := min(duplicationDepth(ReduceUnit(ctx, q)), e.opts.MaxDepth)
	if split {
		depth++
	}
	guard := uint(math.Ceil(float64(depth)*math.Max(1, math.Abs(1-sigma)))) + 8
	w := ctx.Raise(guard)

	pc := &periodicCall{
		e:      e,
		outer:  ctx,
		w:      w,
		s:      s,
		twoPow: w.PowFromLog(w.Ln2(), w.Sub(w.One(), s)),
	}
	qr := ReduceUnit(w, q)
	e.log.WithFields(logrus.Fields{
		"q":      qr.Text('g', 12),
		"region": Classify(ctx, qr).String(),
		"prec":   w.Prec(),
	}).Debug("periodic zeta")

	var (
		v   mpc.Complex
		err error
	)
	if split {
		v, err = pc.duplicate(qr, 0)
	} else {
		v, err = pc.eval(qr, 0)
	}
	if err != nil {
		return mpc.Complex{}, err
	}
	return ctx.Copy(v), nil
}

// duplicationDepth estimates how many halvings bring q into the central
// region: ceil(log2(0.25/min(q, 1-q))) + 1. It works on the binary
// exponent so q below the float64 range still counts.
func duplicationDepth(q *big.Float) int {
	m := new(big.Float).Sub(big.NewFloat(1), q)
	if q.Cmp(m) < 0 {
		m = q
	}
	if m.Sign() <= 0 || m.Cmp(quarter) >= 0 {
		return 0
	}
	frac := new(big.Float)
	exp := m.MantExp(frac)
	f, _ := frac.Float64()
	return int(math.Ceil(-2-float64(exp)-math.Log2(f))) + 1
}

type periodicCall struct {
	e *Evaluator
	// outer decides the endpoint region; w carries the guard bits.
	outer, w mpc.Context
	s        mpc.Complex
	twoPow   mpc.Complex // 2^(1-s)
}

func (pc *periodicCall) eval(q *big.Float, depth int) (mpc.Complex, error) {
	w := pc.w
	switch Classify(pc.outer, q) {
	case RegionEndpoint:
		return pc.e.RiemannZeta(w, pc.s)
	case RegionCentral:
		// The argument lies on |z| = 1, where only the Borwein sum
		// converges, whatever Options.Polylog selects.
		theta := w.Float().Mul(w.TwoPi(), q)
		return pc.e.polylogBorwein(w, pc.s, w.Expi(theta), 0)
	default:
		return pc.duplicate(q, depth)
	}
}

func (pc *periodicCall) duplicate(q *big.Float, depth int) (mpc.Complex, error) {
	if depth >= pc.e.opts.MaxDepth {
		return mpc.Complex{}, fmt.Errorf("%w: q = %s after %d steps", ErrRecursionLimit, q.Text('g', 10), depth)
	}

	w := pc.w
	q2 := w.Float().Add(q, q)
	qh := w.Float()
	if q.Cmp(threeQuarters) > 0 {
		q2.Sub(q2, w.Int(1))
		qh.Sub(q, half)
	} else {
		qh.Add(q, half)
	}
	q2 = ReduceUnit(w, q2)
	qh = ReduceUnit(w, qh)

	a, err := pc.eval(q2, depth+1)
	if err != nil {
		return mpc.Complex{}, err
	}
	b, err := pc.eval(qh, depth+1)
	if err != nil {
		return mpc.Complex{}, err
	}
	return w.Sub(w.Mul(pc.twoPow, a), b), nil
}

// PeriodicBeta returns beta(s, q) = 2 Gamma(s+1) (2 pi)^(-s) F(s, q).
func (e *Evaluator) PeriodicBeta(ctx mpc.Context, s mpc.Complex, q *big.Float) (mpc.Complex, error) {
	w := ctx.Raise(16)
	f, err := e.PeriodicZeta(w, s, q)
	if err != nil {
		return mpc.Complex{}, err
	}
	g, err := e.Gamma(w, w.AddInt(s, 1))
	if err != nil {
		return mpc.Complex{}, fmt.Errorf("periodic beta gamma factor: %w", err)
	}
	tp := w.PowFromLog(w.LogTwoPi(), w.Neg(s))
	return ctx.Copy(w.ScaleInt(w.Mul(w.Mul(g, tp), f), 2)), nil
}

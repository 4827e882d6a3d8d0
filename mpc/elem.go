package mpc

import (
	"errors"
	"math"
	"math/big"

	"github.com/ericlagergren/decimal"
)

// ErrDomain is returned for real functions evaluated outside their domain,
// such as the logarithm of a non-positive number.
var ErrDomain = errors.New("argument outside function domain")

// work returns a context with room for the rounding errors of argument
// reduction and conversion at c.
func (c Context) work() Context {
	return c.Raise(32)
}

// Sqrt returns the square root of x >= 0.
func (c Context) Sqrt(x *big.Float) (*big.Float, error) {
	if x.Sign() < 0 {
		return nil, ErrDomain
	}
	return c.Float().Sqrt(x), nil
}

// Exp returns e^x.
func (c Context) Exp(x *big.Float) *big.Float {
	if x.Sign() == 0 {
		return c.Int(1)
	}

	// x = k*ln2 + r with |r| <= ln2/2; the exponent k stays binary so
	// large arguments never leave big.Float range.
	xf, _ := x.Float64()
	xf = math.Max(-1<<40, math.Min(1<<40, xf))
	k := int64(math.Round(xf / math.Ln2))
	w := c.work().Raise(bitsFor(k))

	r := w.Round(x)
	if k != 0 {
		r.Sub(r, w.mul(w.Ln2(), w.Int(k)))
	}
	d := w.decimalContext()
	e := w.fromDecimal(d.Exp(new(decimal.Big), w.toDecimal(r)))
	e.SetMantExp(e, int(k))
	return c.Round(e)
}

// Log returns the natural logarithm of x > 0.
func (c Context) Log(x *big.Float) (*big.Float, error) {
	if x.Sign() <= 0 {
		return nil, ErrDomain
	}
	if x.IsInt() {
		if i, acc := x.Int64(); acc == big.Exact && i == 1 {
			return c.Float(), nil
		}
	}

	w := c.work()
	// x = m * 2^e with m in [1/sqrt2, sqrt2).
	m := w.Float()
	e := x.MantExp(m)
	m.SetPrec(w.Prec())
	if m.Cmp(big.NewFloat(math.Sqrt2/2)) < 0 {
		m.SetMantExp(m, 1)
		e--
	}

	d := w.decimalContext()
	lnm := w.fromDecimal(d.Log(new(decimal.Big), w.toDecimal(m)))
	if e != 0 {
		lnm.Add(lnm, w.mul(w.Ln2(), w.Int(int64(e))))
	}
	return c.Round(lnm), nil
}

// SinCos returns sin(x) and cos(x).
func (c Context) SinCos(x *big.Float) (sin, cos *big.Float) {
	if x.Sign() == 0 {
		return c.Float(), c.Int(1)
	}

	// Reduce by pi/2 into [-pi/4, pi/4] and pick the quadrant.
	xf, _ := x.Float64()
	k := int64(math.Round(xf / (math.Pi / 2)))
	w := c.work().Raise(bitsFor(k))

	r := w.Round(x)
	if k != 0 {
		halfPi := w.Pi()
		halfPi.SetMantExp(halfPi, -1)
		r.Sub(r, w.mul(halfPi, w.Int(k)))
	}

	d := w.decimalContext()
	dr := w.toDecimal(r)
	s := w.fromDecimal(d.Sin(new(decimal.Big), dr))
	co := w.fromDecimal(d.Cos(new(decimal.Big), dr))
	switch ((k % 4) + 4) % 4 {
	case 1:
		s, co = co, s.Neg(s)
	case 2:
		s, co = s.Neg(s), co.Neg(co)
	case 3:
		s, co = co.Neg(co), s
	}
	return c.Round(s), c.Round(co)
}

// Atan returns the arctangent of x.
func (c Context) Atan(x *big.Float) *big.Float {
	if x.Sign() == 0 {
		return c.Float()
	}
	w := c.work()
	d := w.decimalContext()
	return c.Round(w.fromDecimal(d.Atan(new(decimal.Big), w.toDecimal(x))))
}

// bitsFor returns the bits lost to cancellation when k multiples of a
// constant are subtracted from an argument.
func bitsFor(k int64) uint {
	if k == 0 {
		return 0
	}
	return uint(math.Ceil(math.Log2(math.Abs(float64(k))))) + 1
}

// Atan2 returns the argument of the point (x, y) in (-pi, pi].
func (c Context) Atan2(y, x *big.Float) *big.Float {
	switch {
	case x.Sign() > 0:
		return c.Atan(c.quo(y, x))
	case x.Sign() < 0:
		w := c.work()
		a := w.Atan(w.quo(y, x))
		if y.Sign() >= 0 {
			return c.Round(a.Add(a, w.Pi()))
		}
		return c.Round(a.Sub(a, w.Pi()))
	case y.Sign() > 0:
		p := c.Pi()
		return p.SetMantExp(p, -1)
	case y.Sign() < 0:
		p := c.Pi()
		p.SetMantExp(p, -1)
		return p.Neg(p)
	default:
		return c.Float()
	}
}

package mpc

import (
	"math"
	"math/big"
)

// GuardBits is added on top of the decimal-to-binary conversion in
// FromDigits. It absorbs the cancellation in the alternating sums and the
// duplication recursion of the zeta evaluators.
const GuardBits = 64

// DefaultPrec is used by a zero Context.
const DefaultPrec = 256

const bitsPerDigit = 3.321928094887362 // log2(10)

// Context carries the working precision of one computation. It replaces
// the process-wide default precision of GMP style code: every value
// produced through a Context is rounded to Prec bits.
//
// A Context is a small immutable value and may be shared freely between
// goroutines.
type Context struct {
	prec uint
}

// NewContext returns a Context working at bits of binary precision.
func NewContext(bits uint) Context {
	if bits < 8 {
		bits = 8
	}
	return Context{prec: bits}
}

// FromDigits converts a decimal precision into a Context:
// bits = ceil(3.322 * digits) + GuardBits.
func FromDigits(digits int) Context {
	if digits < 1 {
		digits = 1
	}
	return NewContext(uint(math.Ceil(bitsPerDigit*float64(digits))) + GuardBits)
}

// Prec is the working precision in bits.
func (c Context) Prec() uint {
	if c.prec == 0 {
		return DefaultPrec
	}
	return c.prec
}

// Digits is the number of decimal digits the context promises, i.e. the
// inverse of FromDigits.
func (c Context) Digits() int {
	p := c.Prec()
	if p <= GuardBits {
		return int(float64(p) / bitsPerDigit)
	}
	return int(float64(p-GuardBits) / bitsPerDigit)
}

// Raise returns a context with extra more bits.
func (c Context) Raise(extra uint) Context {
	return NewContext(c.Prec() + extra)
}

// Float returns a new zero *big.Float at the working precision.
func (c Context) Float() *big.Float {
	return new(big.Float).SetPrec(c.Prec())
}

// Epsilon returns 2^-prec.
func (c Context) Epsilon() *big.Float {
	return c.Float().SetMantExp(big.NewFloat(1), -int(c.Prec()))
}

// Int returns n at the working precision.
func (c Context) Int(n int64) *big.Float {
	return c.Float().SetInt64(n)
}

// Float64 returns x at the working precision.
func (c Context) Float64(x float64) *big.Float {
	return c.Float().SetFloat64(x)
}

// Round returns x rounded to the working precision.
func (c Context) Round(x *big.Float) *big.Float {
	return c.Float().Set(x)
}

func (c Context) add(x, y *big.Float) *big.Float { return c.Float().Add(x, y) }
func (c Context) sub(x, y *big.Float) *big.Float { return c.Float().Sub(x, y) }
func (c Context) mul(x, y *big.Float) *big.Float { return c.Float().Mul(x, y) }
func (c Context) quo(x, y *big.Float) *big.Float { return c.Float().Quo(x, y) }

// Log2Abs returns log2|x| as a float64, without overflow for huge or tiny x.
// It returns -Inf for zero.
func Log2Abs(x *big.Float) float64 {
	if x.Sign() == 0 {
		return math.Inf(-1)
	}
	mant := new(big.Float)
	exp := x.MantExp(mant)
	m, _ := mant.Float64()
	return math.Log2(math.Abs(m)) + float64(exp)
}

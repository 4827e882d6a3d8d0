package mpc

import (
	"math"
	"math/big"

	"github.com/ericlagergren/decimal"

	"github.com/riemann-research/hurwitz-hunter/cache"
)

// Constant identifies a cached mathematical constant.
type Constant int

const (
	ConstPi Constant = iota
	ConstLn2
	ConstE
	ConstLogTwoPi
	ConstSqrtTwoPi
	ConstEulerGamma
)

var constNames = map[Constant]string{
	ConstPi:         "pi",
	ConstLn2:        "ln2",
	ConstE:          "e",
	ConstLogTwoPi:   "log(2pi)",
	ConstSqrtTwoPi:  "sqrt(2pi)",
	ConstEulerGamma: "euler-gamma",
}

func (k Constant) String() string {
	if s, ok := constNames[k]; ok {
		return s
	}
	return "unknown"
}

// constants holds the highest-precision copy of every constant computed so
// far. A copy at p bits serves any request at p bits or less.
var constants = cache.NewLinear[*big.Float]()

// ConstantStats reports the constant cache activity.
func ConstantStats() cache.Stats { return constants.Stats() }

// Const returns the constant k rounded to the working precision. The result
// is a fresh value the caller may modify.
func (c Context) Const(k Constant) *big.Float {
	if v, ok := constants.Lookup(int(k), c.Prec()); ok {
		return c.Round(v)
	}

	w := c.work()
	d := w.decimalContext()
	var v *big.Float
	switch k {
	case ConstPi:
		v = w.fromDecimal(d.Pi(new(decimal.Big)))
	case ConstLn2:
		v = w.fromDecimal(d.Log(new(decimal.Big), decimal.New(2, 0)))
	case ConstE:
		v = w.fromDecimal(d.Exp(new(decimal.Big), decimal.New(1, 0)))
	case ConstLogTwoPi:
		v, _ = w.Log(w.TwoPi())
	case ConstSqrtTwoPi:
		v = w.Float().Sqrt(w.TwoPi())
	case ConstEulerGamma:
		v = w.eulerGamma()
	default:
		panic("mpc: unknown constant " + k.String())
	}

	constants.Store(int(k), v, c.Prec())
	return c.Round(v)
}

func (c Context) Pi() *big.Float        { return c.Const(ConstPi) }
func (c Context) Ln2() *big.Float       { return c.Const(ConstLn2) }
func (c Context) E() *big.Float         { return c.Const(ConstE) }
func (c Context) LogTwoPi() *big.Float  { return c.Const(ConstLogTwoPi) }
func (c Context) SqrtTwoPi() *big.Float { return c.Const(ConstSqrtTwoPi) }
func (c Context) EulerGamma() *big.Float {
	return c.Const(ConstEulerGamma)
}

// TwoPi returns 2*pi.
func (c Context) TwoPi() *big.Float {
	p := c.Pi()
	return p.SetMantExp(p, 1)
}

// eulerGamma uses the Brent-McMillan formula
//
//	gamma = U/V,  U = sum A_k, V = sum B_k,
//	A_0 = -ln N,  B_0 = 1,
//	B_k = B_{k-1} N^2/k^2,  A_k = (A_{k-1} N^2/k + B_k)/k
//
// whose error is O(e^-4N).
func (c Context) eulerGamma() *big.Float {
	n := int64(math.Ceil(float64(c.Prec())*math.Ln2/4)) + 1
	w := c.Raise(uint(math.Log2(float64(n))) + 16)

	logN, _ := w.Log(w.Int(n))
	n2 := w.Int(n * n)

	a := w.Float().Neg(logN)
	b := w.Int(1)
	u := w.Round(a)
	v := w.Int(1)
	eps := w.Epsilon()

	for k := int64(1); k <= 5*n; k++ {
		kf := w.Int(k)
		b = w.quo(w.mul(b, n2), w.mul(kf, kf))
		a = w.quo(w.add(w.quo(w.mul(a, n2), kf), b), kf)
		u.Add(u, a)
		v.Add(v, b)
		if k > n && w.Float().Abs(a).Cmp(eps) < 0 && b.Cmp(eps) < 0 {
			break
		}
	}
	return c.quo(u, v)
}

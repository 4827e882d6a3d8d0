package mpc

import "math/big"

// CExp returns e^z.
func (c Context) CExp(z Complex) Complex {
	w := c.work()
	r := w.Exp(z.Re)
	if z.Im.Sign() == 0 {
		return Complex{Re: c.Round(r), Im: c.Float()}
	}
	sin, cos := w.SinCos(z.Im)
	return Complex{Re: c.mul(r, cos), Im: c.mul(r, sin)}
}

// Expi returns e^(i*theta) for real theta.
func (c Context) Expi(theta *big.Float) Complex {
	sin, cos := c.SinCos(theta)
	return Complex{Re: cos, Im: sin}
}

// CLog returns the principal logarithm of z, with imaginary part in
// (-pi, pi].
func (c Context) CLog(z Complex) (Complex, error) {
	if z.IsZero() {
		return Complex{}, ErrDivisionByZero
	}
	w := c.work()
	if z.Im.Sign() == 0 && z.Re.Sign() > 0 {
		re, err := c.Log(z.Re)
		return Complex{Re: re, Im: c.Float()}, err
	}
	lm, err := w.Log(w.ModSq(z))
	if err != nil {
		return Complex{}, err
	}
	lm.SetMantExp(lm, -1)
	return Complex{Re: c.Round(lm), Im: c.Atan2(z.Im, z.Re)}, nil
}

// PowFromLog returns e^(s*logx), i.e. x^s given logx = ln x. Callers that
// raise the same base to many exponents cache logx.
func (c Context) PowFromLog(logx *big.Float, s Complex) Complex {
	w := c.work()
	return c.Copy(w.CExp(w.Scale(s, logx)))
}

// PowReal returns x^s for real x > 0.
func (c Context) PowReal(x *big.Float, s Complex) (Complex, error) {
	w := c.work()
	lx, err := w.Log(x)
	if err != nil {
		return Complex{}, err
	}
	return c.PowFromLog(lx, s), nil
}

// CPow returns the principal value z^s. 0^s is 0 for Re(s) > 0.
func (c Context) CPow(z, s Complex) (Complex, error) {
	if z.IsZero() {
		if s.Re.Sign() > 0 {
			return c.Zero(), nil
		}
		return Complex{}, ErrDivisionByZero
	}
	w := c.work()
	lz, err := w.CLog(z)
	if err != nil {
		return Complex{}, err
	}
	return c.Copy(w.CExp(w.Mul(s, lz))), nil
}

// CPowInt returns z^n by binary powering. Negative n needs z != 0.
func (c Context) CPowInt(z Complex, n int) (Complex, error) {
	base := c.Copy(z)
	if n < 0 {
		inv, err := c.Recip(z)
		if err != nil {
			return Complex{}, err
		}
		base, n = inv, -n
	}
	acc := c.One()
	for n > 0 {
		if n&1 == 1 {
			acc = c.Mul(acc, base)
		}
		n >>= 1
		if n > 0 {
			base = c.Sqr(base)
		}
	}
	return acc, nil
}

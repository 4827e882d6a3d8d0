package mpc

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrDivisionByZero is returned when dividing by a value whose squared
// modulus is exactly zero at the working precision.
var ErrDivisionByZero = errors.New("division by zero")

// Complex is an arbitrary precision complex number. Values are treated as
// immutable: every Context operation returns a fresh Complex and leaves its
// arguments untouched.
type Complex struct {
	Re *big.Float
	Im *big.Float
}

// part returns x, or zero for a part left unset in a zero-value Complex.
func part(x *big.Float) *big.Float {
	if x == nil {
		return new(big.Float)
	}
	return x
}

// IsZero reports whether both parts are zero. Unset parts count as zero.
func (z Complex) IsZero() bool {
	return part(z.Re).Sign() == 0 && part(z.Im).Sign() == 0
}

// IsReal reports whether the imaginary part is zero.
func (z Complex) IsReal() bool {
	return part(z.Im).Sign() == 0
}

// Complex128 rounds z to the nearest complex128.
func (z Complex) Complex128() complex128 {
	re, _ := part(z.Re).Float64()
	im, _ := part(z.Im).Float64()
	return complex(re, im)
}

// Text formats z with the given number of significant decimal digits.
func (z Complex) Text(digits int) string {
	re, im := part(z.Re), part(z.Im)
	var b strings.Builder
	b.WriteString(re.Text('g', digits))
	if im.Signbit() {
		b.WriteString(" - ")
		b.WriteString(new(big.Float).Abs(im).Text('g', digits))
	} else {
		b.WriteString(" + ")
		b.WriteString(im.Text('g', digits))
	}
	b.WriteString("i")
	return b.String()
}

func (z Complex) String() string {
	return z.Text(20)
}

// NewComplex converts a float64 pair exactly (when Prec >= 53).
func (c Context) NewComplex(re, im float64) Complex {
	return Complex{Re: c.Float64(re), Im: c.Float64(im)}
}

// FromComplex128 converts z exactly.
func (c Context) FromComplex128(z complex128) Complex {
	return c.NewComplex(real(z), imag(z))
}

// FromBig builds a complex from two reals, rounding them to the context.
func (c Context) FromBig(re, im *big.Float) Complex {
	return Complex{Re: c.Round(re), Im: c.Round(im)}
}

// Real lifts x onto the real axis.
func (c Context) Real(x *big.Float) Complex {
	return Complex{Re: c.Round(x), Im: c.Float()}
}

func (c Context) Zero() Complex { return Complex{Re: c.Float(), Im: c.Float()} }

func (c Context) One() Complex { return Complex{Re: c.Int(1), Im: c.Float()} }

// Copy returns an independent copy of z rounded to the context.
func (c Context) Copy(z Complex) Complex {
	return c.FromBig(z.Re, z.Im)
}

func (c Context) Neg(z Complex) Complex {
	return Complex{Re: c.Float().Neg(z.Re), Im: c.Float().Neg(z.Im)}
}

func (c Context) Conj(z Complex) Complex {
	return Complex{Re: c.Round(z.Re), Im: c.Float().Neg(z.Im)}
}

func (c Context) Add(a, b Complex) Complex {
	return Complex{Re: c.add(a.Re, b.Re), Im: c.add(a.Im, b.Im)}
}

func (c Context) Sub(a, b Complex) Complex {
	return Complex{Re: c.sub(a.Re, b.Re), Im: c.sub(a.Im, b.Im)}
}

// AddReal returns z + x.
func (c Context) AddReal(z Complex, x *big.Float) Complex {
	return Complex{Re: c.add(z.Re, x), Im: c.Round(z.Im)}
}

// AddInt returns z + n.
func (c Context) AddInt(z Complex, n int64) Complex {
	return c.AddReal(z, c.Int(n))
}

func (c Context) Mul(a, b Complex) Complex {
	re := c.sub(c.mul(a.Re, b.Re), c.mul(a.Im, b.Im))
	im := c.add(c.mul(a.Re, b.Im), c.mul(a.Im, b.Re))
	return Complex{Re: re, Im: im}
}

// Sqr returns z*z.
func (c Context) Sqr(z Complex) Complex {
	re := c.mul(c.add(z.Re, z.Im), c.sub(z.Re, z.Im))
	im := c.mul(z.Re, z.Im)
	im.SetMantExp(im, 1)
	return Complex{Re: re, Im: im}
}

// ModSq returns |z|^2.
func (c Context) ModSq(z Complex) *big.Float {
	return c.add(c.mul(z.Re, z.Re), c.mul(z.Im, z.Im))
}

// Abs returns |z|.
func (c Context) Abs(z Complex) *big.Float {
	return c.Float().Sqrt(c.ModSq(z))
}

// Recip returns 1/z.
func (c Context) Recip(z Complex) (Complex, error) {
	d := c.ModSq(z)
	if d.Sign() == 0 {
		return Complex{}, ErrDivisionByZero
	}
	return Complex{Re: c.quo(z.Re, d), Im: c.Float().Neg(c.quo(z.Im, d))}, nil
}

// Div returns a/b.
func (c Context) Div(a, b Complex) (Complex, error) {
	d := c.ModSq(b)
	if d.Sign() == 0 {
		return Complex{}, ErrDivisionByZero
	}
	re := c.add(c.mul(a.Re, b.Re), c.mul(a.Im, b.Im))
	im := c.sub(c.mul(a.Im, b.Re), c.mul(a.Re, b.Im))
	return Complex{Re: c.quo(re, d), Im: c.quo(im, d)}, nil
}

// TimesI returns i*z.
func (c Context) TimesI(z Complex) Complex {
	return Complex{Re: c.Float().Neg(z.Im), Im: c.Round(z.Re)}
}

// Scale returns x*z for real x.
func (c Context) Scale(z Complex, x *big.Float) Complex {
	return Complex{Re: c.mul(z.Re, x), Im: c.mul(z.Im, x)}
}

// ScaleInt returns n*z.
func (c Context) ScaleInt(z Complex, n int64) Complex {
	return c.Scale(z, c.Int(n))
}

// Ldexp returns z * 2^k.
func (c Context) Ldexp(z Complex, k int) Complex {
	re, im := c.Round(z.Re), c.Round(z.Im)
	return Complex{Re: re.SetMantExp(re, k), Im: im.SetMantExp(im, k)}
}

// DivScalar returns z/x for real x.
func (c Context) DivScalar(z Complex, x *big.Float) (Complex, error) {
	if x.Sign() == 0 {
		return Complex{}, ErrDivisionByZero
	}
	return Complex{Re: c.quo(z.Re, x), Im: c.quo(z.Im, x)}, nil
}

// DivInt returns z/n.
func (c Context) DivInt(z Complex, n int64) (Complex, error) {
	return c.DivScalar(z, c.Int(n))
}

// Equal reports whether a and b agree to within tol in each component.
func (c Context) Equal(a, b Complex, tol *big.Float) bool {
	dr := c.Float().Abs(c.sub(a.Re, b.Re))
	di := c.Float().Abs(c.sub(a.Im, b.Im))
	return dr.Cmp(tol) <= 0 && di.Cmp(tol) <= 0
}

// Parse reads a complex literal such as "0.5+14.134725i", "-2", "3i",
// "1e-3-2i" or "i". The parts are parsed in decimal at the context
// precision, so they are not limited to float64.
func (c Context) Parse(text string) (Complex, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	if s == "" {
		return Complex{}, fmt.Errorf("parse complex %q: empty", text)
	}
	if !strings.HasSuffix(s, "i") {
		re, err := c.parseReal(s)
		if err != nil {
			return Complex{}, fmt.Errorf("parse complex %q: %w", text, err)
		}
		return Complex{Re: re, Im: c.Float()}, nil
	}

	body := s[:len(s)-1]
	// Find the sign that separates the real and imaginary parts, skipping
	// a leading sign and exponent signs.
	split := -1
	for i := len(body) - 1; i > 0; i-- {
		if body[i] != '+' && body[i] != '-' {
			continue
		}
		if prev := body[i-1]; prev == 'e' || prev == 'E' {
			continue
		}
		split = i
		break
	}

	reText, imText := "", body
	if split > 0 {
		reText, imText = body[:split], body[split:]
	}
	switch imText {
	case "", "+":
		imText = "1"
	case "-":
		imText = "-1"
	}

	re := c.Float()
	if reText != "" {
		var err error
		if re, err = c.parseReal(reText); err != nil {
			return Complex{}, fmt.Errorf("parse complex %q: %w", text, err)
		}
	}
	im, err := c.parseReal(imText)
	if err != nil {
		return Complex{}, fmt.Errorf("parse complex %q: %w", text, err)
	}
	return Complex{Re: re, Im: im}, nil
}

func (c Context) parseReal(s string) (*big.Float, error) {
	x, _, err := big.ParseFloat(s, 10, c.Prec(), big.ToNearestEven)
	if err != nil {
		return nil, err
	}
	return x, nil
}

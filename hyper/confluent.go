// Package hyper evaluates the confluent hypergeometric function M(a; b; z)
// to arbitrary precision.
package hyper

import (
	"errors"
	"fmt"
	"math"

	"github.com/riemann-research/hurwitz-hunter/mpc"
)

// ErrNoConvergence is returned when the Kummer series does not reach the
// context precision within its iteration cap.
var ErrNoConvergence = errors.New("hypergeometric series did not converge")

// Confluent returns M(a; b; z) = sum_k (a)_k / (b)_k z^k / k!.
//
// For Re z < 0 the Kummer transformation M(a; b; z) = e^z M(b-a; b; -z)
// keeps the terms from alternating. A nonpositive integer b returns
// mpc.ErrDivisionByZero.
func Confluent(ctx mpc.Context, a, b, z mpc.Complex) (mpc.Complex, error) {
	if b.Im.Sign() == 0 && b.Re.IsInt() && b.Re.Sign() <= 0 {
		return mpc.Complex{}, fmt.Errorf("M(a; b; z) with b = %s: %w", b.Re.Text('g', 10), mpc.ErrDivisionByZero)
	}
	if z.IsZero() {
		return ctx.One(), nil
	}

	absZ := math.Hypot(real(z.Complex128()), imag(z.Complex128()))
	w := ctx.Raise(16 + uint(math.Ceil(absZ*math.Log2E)))

	if z.Re.Sign() < 0 {
		m, err := kummer(w, w.Sub(b, a), b, w.Neg(z), absZ)
		if err != nil {
			return mpc.Complex{}, err
		}
		return ctx.Copy(w.Mul(w.CExp(z), m)), nil
	}
	m, err := kummer(w, a, b, z, absZ)
	if err != nil {
		return mpc.Complex{}, err
	}
	return ctx.Copy(m), nil
}

func kummer(w mpc.Context, a, b, z mpc.Complex, absZ float64) (mpc.Complex, error) {
	eps := w.Epsilon()
	limit := 4*int(w.Prec()) + int(100*(absZ+1))

	sum := w.One()
	term := w.One()
	for k := 0; k < limit; k++ {
		// term_{k+1} = term_k (a+k) z / ((b+k) (k+1))
		num := w.Mul(w.Mul(term, w.AddInt(a, int64(k))), z)
		den := w.ScaleInt(w.AddInt(b, int64(k)), int64(k+1))
		var err error
		if term, err = w.Div(num, den); err != nil {
			return mpc.Complex{}, err
		}
		sum = w.Add(sum, term)

		if term.IsZero() {
			return sum, nil
		}
		if float64(k+1) < absZ {
			continue
		}
		thr := w.Float().Mul(eps, w.Abs(sum))
		if w.Abs(term).Cmp(thr) < 0 {
			return sum, nil
		}
	}
	return mpc.Complex{}, fmt.Errorf("after %d terms at |z| = %g: %w", limit, absZ, ErrNoConvergence)
}

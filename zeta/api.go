package zeta

import (
	"math"
	"math/big"
	"math/cmplx"

	"github.com/riemann-research/hurwitz-hunter/mpc"
)

func checkInputs(digits int, zs ...complex128) error {
	if digits < 1 {
		return domainError("digits must be positive, got %d", digits)
	}
	for _, z := range zs {
		if cmplx.IsNaN(z) || cmplx.IsInf(z) {
			return domainError("non-finite argument %v", z)
		}
	}
	return nil
}

func checkReal(x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return domainError("non-finite argument %v", x)
	}
	return nil
}

// ComplexHurwitzZeta returns zeta(s, q) to the given number of decimal
// digits using the default evaluator. The float64 inputs are taken as
// exact binary values.
func ComplexHurwitzZeta(s complex128, q float64, digits int) (mpc.Complex, error) {
	if err := checkInputs(digits, s); err != nil {
		return mpc.Complex{}, err
	}
	if err := checkReal(q); err != nil {
		return mpc.Complex{}, err
	}
	ctx := mpc.FromDigits(digits)
	return defaultEvaluator.HurwitzZeta(ctx, ctx.FromComplex128(s), new(big.Float).SetFloat64(q))
}

// ComplexPeriodicZeta returns F(s, q) to the given number of decimal digits.
func ComplexPeriodicZeta(s complex128, q float64, digits int) (mpc.Complex, error) {
	if err := checkInputs(digits, s); err != nil {
		return mpc.Complex{}, err
	}
	if err := checkReal(q); err != nil {
		return mpc.Complex{}, err
	}
	ctx := mpc.FromDigits(digits)
	return defaultEvaluator.PeriodicZeta(ctx, ctx.FromComplex128(s), new(big.Float).SetFloat64(q))
}

// ComplexPeriodicBeta returns beta(s, q) to the given number of decimal digits.
func ComplexPeriodicBeta(s complex128, q float64, digits int) (mpc.Complex, error) {
	if err := checkInputs(digits, s); err != nil {
		return mpc.Complex{}, err
	}
	if err := checkReal(q); err != nil {
		return mpc.Complex{}, err
	}
	ctx := mpc.FromDigits(digits)
	return defaultEvaluator.PeriodicBeta(ctx, ctx.FromComplex128(s), new(big.Float).SetFloat64(q))
}

// ComplexPolylog returns Li_s(z) to the given number of decimal digits.
// terms is the Borwein order; 0 chooses it automatically.
func ComplexPolylog(s, z complex128, terms, digits int) (mpc.Complex, error) {
	if err := checkInputs(digits, s, z); err != nil {
		return mpc.Complex{}, err
	}
	ctx := mpc.FromDigits(digits)
	return defaultEvaluator.Polylog(ctx, ctx.FromComplex128(s), ctx.FromComplex128(z), terms)
}

// ComplexRiemannZeta returns zeta(s) to the given number of decimal digits.
func ComplexRiemannZeta(s complex128, digits int) (mpc.Complex, error) {
	if err := checkInputs(digits, s); err != nil {
		return mpc.Complex{}, err
	}
	ctx := mpc.FromDigits(digits)
	return defaultEvaluator.RiemannZeta(ctx, ctx.FromComplex128(s))
}

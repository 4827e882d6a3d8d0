// Package mpc implements arbitrary precision complex arithmetic on top of
// math/big.
//
// All arithmetic goes through a Context, which fixes the binary working
// precision of one computation:
//
//	ctx := mpc.FromDigits(40)          // 40 decimal digits + guard bits
//	s := ctx.NewComplex(0.5, 14.134725)
//	z := ctx.Mul(s, s)
//	q, err := ctx.Div(z, s)            // ErrDivisionByZero on exact zero
//
// Besides the field operations the package provides the elementary
// functions needed by the zeta evaluators (exp, log, sin/cos, atan2,
// complex powers) and a precision-tagged cache of constants such as pi,
// ln 2 and the Euler-Mascheroni constant.
package mpc

// Package zeta evaluates the polylogarithm, the periodic zeta and beta
// functions and the Hurwitz zeta function to arbitrary precision.
//
// The Hurwitz zeta is computed by default through the reflection formula
// from two periodic zeta values, each of which is a polylogarithm on the
// unit circle summed with Borwein's acceleration. Values of q close to an
// integer are pulled towards the middle of [0, 1) by the duplication
// formula before the polylog is applied.
//
//	ev := zeta.New(zeta.Options{Logger: log})
//	ctx := mpc.FromDigits(40)
//	v, err := ev.HurwitzZeta(ctx, ctx.NewComplex(0.5, 14.134725), big.NewFloat(0.3))
//
// Errors wrap ErrDivisionByZero, ErrPrecisionExhausted or
// ErrDomainUnsupported and are matched with errors.Is.
package zeta

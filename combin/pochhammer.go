package combin

import "github.com/riemann-research/hurwitz-hunter/mpc"

// PochhammerRising returns the rising factorial
//
//	(z)_k = z (z+1) ... (z+k-1),   (z)_0 = 1.
//
// The product is accumulated forward; nothing is cached since z differs
// between call sites.
func PochhammerRising(ctx mpc.Context, z mpc.Complex, k int) mpc.Complex {
	return pochhammer(ctx, z, k, 1)
}

// PochhammerFalling returns z (z-1) ... (z-k+1).
func PochhammerFalling(ctx mpc.Context, z mpc.Complex, k int) mpc.Complex {
	return pochhammer(ctx, z, k, -1)
}

func pochhammer(ctx mpc.Context, z mpc.Complex, k int, step int64) mpc.Complex {
	acc := ctx.One()
	if k <= 0 {
		return acc
	}
	factor := ctx.Copy(z)
	for i := 0; i < k; i++ {
		acc = ctx.Mul(acc, factor)
		if i+1 < k {
			factor = ctx.AddInt(factor, step)
		}
	}
	return acc
}

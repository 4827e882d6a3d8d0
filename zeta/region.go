package zeta

import (
	"math/big"

	"github.com/riemann-research/hurwitz-hunter/mpc"
)

// Region classifies q in [0, 1) by how the periodic zeta is evaluated there.
type Region int

const (
	// RegionCentral is 0.25 <= q <= 0.75: direct polylog at e^(2 pi i q).
	RegionCentral Region = iota
	// RegionLow is q < 0.25: duplication towards 2q and q + 1/2.
	RegionLow
	// RegionHigh is q > 0.75: duplication towards 2q - 1 and q - 1/2.
	RegionHigh
	// RegionEndpoint is q within epsilon of 0 or 1: Riemann zeta.
	RegionEndpoint
)

func (r Region) String() string {
	switch r {
	case RegionCentral:
		return "central"
	case RegionLow:
		return "low"
	case RegionHigh:
		return "high"
	case RegionEndpoint:
		return "endpoint"
	default:
		return "unknown"
	}
}

var (
	quarter       = big.NewFloat(0.25)
	threeQuarters = big.NewFloat(0.75)
)

// Classify returns the region of q, which must already lie in [0, 1).
// Epsilon is 2^-prec of ctx. The bounds 0.25 and 0.75 belong to the
// central region.
func Classify(ctx mpc.Context, q *big.Float) Region {
	eps := ctx.Epsilon()
	if q.Cmp(eps) < 0 {
		return RegionEndpoint
	}
	if rest := ctx.Float().Sub(ctx.Int(1), q); rest.Cmp(eps) < 0 {
		return RegionEndpoint
	}
	switch {
	case q.Cmp(quarter) < 0:
		return RegionLow
	case q.Cmp(threeQuarters) > 0:
		return RegionHigh
	default:
		return RegionCentral
	}
}

// ReduceUnit returns q - floor(q), in [0, 1).
func ReduceUnit(ctx mpc.Context, q *big.Float) *big.Float {
	fl, _ := q.Int(nil)
	f := new(big.Float).SetInt(fl)
	if f.Cmp(q) > 0 {
		f.Sub(f, big.NewFloat(1))
	}
	return ctx.Float().Sub(q, f)
}

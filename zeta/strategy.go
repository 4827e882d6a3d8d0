package zeta

import (
	"fmt"
	"strings"
)

// PolylogStrategy selects the polylogarithm algorithm.
type PolylogStrategy int

const (
	// PolylogBorwein is the Borwein accelerated sum, valid for |z| <= 1
	// away from z = 1.
	PolylogBorwein PolylogStrategy = iota
	// PolylogDirect sums z^k/k^s term by term; only for |z| < 1. It
	// applies to Polylog calls alone: the periodic zeta evaluates on the
	// unit circle and always uses the Borwein sum.
	PolylogDirect
)

func (p PolylogStrategy) String() string {
	switch p {
	case PolylogBorwein:
		return "borwein"
	case PolylogDirect:
		return "direct"
	default:
		return fmt.Sprintf("polylog(%d)", int(p))
	}
}

// ParsePolylogStrategy maps a configuration name to a strategy.
func ParsePolylogStrategy(name string) (PolylogStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto", "borwein":
		return PolylogBorwein, nil
	case "direct":
		return PolylogDirect, nil
	default:
		return 0, fmt.Errorf("unknown polylog strategy %q", name)
	}
}

// HurwitzStrategy selects the Hurwitz zeta algorithm.
type HurwitzStrategy int

const (
	// HurwitzReflection combines two periodic zeta values at q and 1-q.
	HurwitzReflection HurwitzStrategy = iota
	// HurwitzEulerMaclaurin sums the series directly with a Bernoulli tail.
	HurwitzEulerMaclaurin
	// HurwitzTaylor expands about q = 1 in Riemann zeta values.
	HurwitzTaylor
)

func (h HurwitzStrategy) String() string {
	switch h {
	case HurwitzReflection:
		return "reflection"
	case HurwitzEulerMaclaurin:
		return "euler-maclaurin"
	case HurwitzTaylor:
		return "taylor"
	default:
		return fmt.Sprintf("hurwitz(%d)", int(h))
	}
}

// ParseHurwitzStrategy maps a configuration name to a strategy.
func ParseHurwitzStrategy(name string) (HurwitzStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto", "reflection", "borwein":
		return HurwitzReflection, nil
	case "euler-maclaurin", "euler", "em":
		return HurwitzEulerMaclaurin, nil
	case "taylor":
		return HurwitzTaylor, nil
	default:
		return 0, fmt.Errorf("unknown hurwitz strategy %q", name)
	}
}

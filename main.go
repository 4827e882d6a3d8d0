// main.go - HURWITZ HUNTER v1.0
// Arbitrary precision Hurwitz zeta, periodic zeta and polylogarithm evaluator
// with a parallel q-grid scanner and flexible configuration

package main

import (
	"fmt"
	"os"
)

// ==================== VERSION & BUILD INFO ====================
const (
	Version   = "1.0.0"
	BuildDate = "2026-10-16"
	Author    = "Riemann Research Team"
	License   = "MIT"
)

// ==================== MAIN ENTRY POINT ====================
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

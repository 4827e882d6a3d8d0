package main

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/riemann-research/hurwitz-hunter/mpc"
)

// ==================== UTILITY FUNCTIONS ====================
func getHostnameSafe() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}

func formatNumberLarge(n int64) string {
	if n < 1000 {
		return strconv.FormatInt(n, 10)
	}

	suffixes := []string{"", "k", "M", "B", "T"}
	suffixIndex := 0
	value := float64(n)

	for value >= 1000 && suffixIndex < len(suffixes)-1 {
		value /= 1000
		suffixIndex++
	}

	return fmt.Sprintf("%.1f%s", value, suffixes[suffixIndex])
}

func formatDurationDetailed(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %02dh %02dm %02ds", days, hours, minutes, seconds)
	} else if hours > 0 {
		return fmt.Sprintf("%02dh %02dm %02ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%02dm %02ds", minutes, seconds)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// parseReal reads a decimal real at the context precision.
func parseReal(ctx mpc.Context, text string) (*big.Float, error) {
	x, _, err := big.ParseFloat(text, 10, ctx.Prec(), big.ToNearestEven)
	if err != nil {
		return nil, fmt.Errorf("parse real %q: %w", text, err)
	}
	return x, nil
}

// generateGrid returns start, start+step, ... up to end inclusive. Points
// are computed as start + i*step so the error does not accumulate.
func generateGrid(start, end, step float64) []float64 {
	if step <= 0 || end < start {
		return nil
	}

	n := int((end-start)/step+1e-9) + 1
	grid := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		grid = append(grid, start+float64(i)*step)
	}
	return grid
}

package main

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/riemann-research/hurwitz-hunter/mpc"
)

// ==================== SCANNER ====================
// Scanner evaluates one function of (s, q) over a grid of q values and
// writes the rows to storage in grid order once the workers finish.
type Scanner struct {
	config  *Config
	calc    *HurwitzCalculator
	storage *StorageManager
	logger  *logrus.Logger

	stats     *Statistics
	statsMu   sync.RWMutex
	processed int64
	failed    int64
}

func NewScanner(cfg *Config, calc *HurwitzCalculator, storage *StorageManager, logger *logrus.Logger) *Scanner {
	return &Scanner{
		config:  cfg,
		calc:    calc,
		storage: storage,
		logger:  logger,
		stats: &Statistics{
			Hostname: getHostnameSafe(),
			Version:  Version,
		},
	}
}

func (sc *Scanner) Run(ctx context.Context) error {
	scan := sc.config.Scan
	calc := sc.calc.Context()

	s, err := calc.Parse(scan.S)
	if err != nil {
		return err
	}
	fn := Function(scan.Function)
	grid := generateGrid(scan.QStart, scan.QEnd, scan.QStep)
	workers := sc.config.Performance.MaxWorkers

	sc.statsMu.Lock()
	sc.stats.Calculation = CalculationStats{
		StartTime:   time.Now(),
		PointsTotal: int64(len(grid)),
		Strategy:    sc.config.Calculation.Strategy,
		Digits:      sc.config.Calculation.Digits,
		Workers:     workers,
	}
	sc.statsMu.Unlock()

	sc.logger.WithFields(logrus.Fields{
		"function": fn,
		"s":        scan.S,
		"points":   len(grid),
		"workers":  workers,
	}).Info("Starting scan")

	rows := make([]*ScanResult, len(grid))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, q := range grid {
		if gctx.Err() != nil {
			break
		}
		i, q := i, q
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := sc.evaluate(fn, s, q, i, i%workers)
			rows[i] = row
			atomic.AddInt64(&sc.processed, 1)
			if row.Error != "" {
				atomic.AddInt64(&sc.failed, 1)
				if scan.FailFast {
					return fmt.Errorf("q = %g: %s", q, row.Error)
				}
			}
			return nil
		})
	}

	runErr := g.Wait()
	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}
	if runErr != nil {
		sc.logger.WithError(runErr).Warn("Scan stopped early")
	}

	for _, row := range rows {
		if row == nil {
			continue
		}
		if err := sc.storage.SaveResult(row); err != nil {
			return err
		}
	}

	sc.updateStatistics()
	if err := sc.storage.SaveStatistics(sc.GetCurrentStats()); err != nil {
		sc.logger.Errorf("Failed to save statistics: %v", err)
	}

	return runErr
}

func (sc *Scanner) evaluate(fn Function, s mpc.Complex, q float64, index, worker int) *ScanResult {
	ctx := sc.calc.Context()
	row := &ScanResult{
		Index:    index,
		S:        sc.config.Scan.S,
		Q:        q,
		Digits:   sc.config.Calculation.Digits,
		WorkerID: worker,
	}

	qf, err := parseReal(ctx, strconv.FormatFloat(q, 'g', -1, 64))
	if err != nil {
		row.Error = err.Error()
		return row
	}

	res, err := sc.calc.Compute(fn, Point{S: s, Q: qf})
	if err != nil {
		sc.logger.WithFields(logrus.Fields{"q": q, "s": row.S}).Debugf("Evaluation failed: %v", err)
		row.Error = err.Error()
		return row
	}

	row.Elapsed = res.Elapsed
	row.Re = res.Value.Re.Text('g', row.Digits)
	row.Im = res.Value.Im.Text('g', row.Digits)
	row.Magnitude, _ = ctx.Abs(res.Value).Float64()
	return row
}

func (sc *Scanner) updateStatistics() {
	sc.statsMu.Lock()
	defer sc.statsMu.Unlock()

	calc := &sc.stats.Calculation
	calc.PointsProcessed = atomic.LoadInt64(&sc.processed)
	calc.PointsFailed = atomic.LoadInt64(&sc.failed)
	calc.ElapsedTime = time.Since(calc.StartTime)
	if secs := calc.ElapsedTime.Seconds(); secs > 0 {
		calc.PointsPerSecond = float64(calc.PointsProcessed) / secs
	}
	calc.CacheHitRate = sc.calc.cache.HitRate()
	sc.stats.Caches = sc.calc.Evaluator().Stats()
	sc.stats.GoVersion = runtime.Version()
}

func (sc *Scanner) GetCurrentStats() *Statistics {
	sc.statsMu.RLock()
	defer sc.statsMu.RUnlock()

	statsCopy := *sc.stats
	return &statsCopy
}

func (sc *Scanner) printStartupBanner() {
	cfg := sc.config
	fmt.Println()
	fmt.Println("=================================================================")
	fmt.Println("                        HURWITZ HUNTER                           ")
	fmt.Println("=================================================================")
	fmt.Printf("Version: %s | Build: %s | Author: %s | License: %s\n", Version, BuildDate, Author, License)
	fmt.Printf("Go: %s | CPUs: %d | Workers: %d\n", runtime.Version(), runtime.NumCPU(), cfg.Performance.MaxWorkers)
	fmt.Println()

	sc.logger.Infof("Starting scan with configuration:")
	sc.logger.Infof("  Function: %s | s = %s", cfg.Scan.Function, cfg.Scan.S)
	sc.logger.Infof("  Range: q = %g to %g | Step: %g", cfg.Scan.QStart, cfg.Scan.QEnd, cfg.Scan.QStep)
	sc.logger.Infof("  Strategy: %s | Polylog: %s | Digits: %d", cfg.Calculation.Strategy, cfg.Calculation.Polylog, cfg.Calculation.Digits)
	sc.logger.Infof("  Output Directory: %s", cfg.Output.OutputDirectory)
}

func (sc *Scanner) printFinalStatistics() {
	stats := sc.GetCurrentStats()
	calc := stats.Calculation

	fmt.Println()
	fmt.Println("=================================================================")
	fmt.Println("                      SCAN COMPLETE - SUMMARY                    ")
	fmt.Println("=================================================================")
	fmt.Println()

	fmt.Printf("Total Calculation Time:   %s\n", formatDurationDetailed(calc.ElapsedTime))
	fmt.Printf("Points Processed:         %s / %s\n", formatNumberLarge(calc.PointsProcessed), formatNumberLarge(calc.PointsTotal))
	fmt.Printf("Points Failed:            %s\n", formatNumberLarge(calc.PointsFailed))
	fmt.Printf("Average Throughput:       %.1f points/sec\n", calc.PointsPerSecond)
	fmt.Printf("Result Cache:             %.1f%% hit rate\n", calc.CacheHitRate*100)
	fmt.Printf("Log Cache:                %d entries, %.1f%% hit rate\n", stats.Caches.Logs.Len, stats.Caches.Logs.HitRate*100)
	fmt.Printf("Binomial Cache:           %d entries, %.1f%% hit rate\n", stats.Caches.Binomial.Len, stats.Caches.Binomial.HitRate*100)
	fmt.Println()

	fmt.Println("Output Files Created:")
	if path := sc.storage.ResultsPath(); path != "" {
		fmt.Printf("  - Results:          %s\n", path)
	}
	fmt.Printf("  - Statistics JSON:  %s\n", sc.storage.StatsPath())
	fmt.Println()
}

package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"strconv"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScanner(t *testing.T, mutate func(*Config)) (*Scanner, *StorageManager) {
	t.Helper()
	cfg, err := loadConfig(viper.New(), "")
	require.NoError(t, err)

	cfg.Calculation.Digits = 20
	cfg.Scan.S = "0.5+3i"
	cfg.Scan.QStart, cfg.Scan.QEnd, cfg.Scan.QStep = 0.25, 0.75, 0.25
	cfg.Output.OutputDirectory = t.TempDir()
	cfg.Output.Format = FormatCSV
	cfg.Performance.MaxWorkers = 2
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, validateConfig(cfg))

	logger := quietLogger()
	calc, err := NewHurwitzCalculator(&cfg.Calculation, logger)
	require.NoError(t, err)
	storage, err := NewStorageManager(&cfg.Output, logger)
	require.NoError(t, err)
	return NewScanner(cfg, calc, storage, logger), storage
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestGenerateGrid(t *testing.T) {
	grid := generateGrid(0.1, 0.5, 0.1)
	require.Len(t, grid, 5)
	assert.InDelta(t, 0.5, grid[4], 1e-15)

	assert.Len(t, generateGrid(0.3, 0.3, 0.1), 1)
	assert.Empty(t, generateGrid(0.5, 0.1, 0.1))
	assert.Empty(t, generateGrid(0, 1, 0))
}

func TestScanWritesCSV(t *testing.T) {
	sc, storage := newTestScanner(t, nil)
	require.NoError(t, sc.Run(context.Background()))
	require.NoError(t, storage.Close())

	records := readCSV(t, storage.ResultsPath())
	require.Len(t, records, 4)
	assert.Equal(t, scanHeader, records[0])

	ctx := sc.calc.Context()
	s, err := ctx.Parse("0.5+3i")
	require.NoError(t, err)
	for i, rec := range records[1:] {
		assert.Equal(t, strconv.Itoa(i), rec[0], "rows are written in grid order")
		assert.Empty(t, rec[9])

		q, err := strconv.ParseFloat(rec[2], 64)
		require.NoError(t, err)
		want, err := sc.calc.Evaluator().HurwitzZeta(ctx, s, big.NewFloat(q))
		require.NoError(t, err)
		re, err := strconv.ParseFloat(rec[3], 64)
		require.NoError(t, err)
		wantRe, _ := want.Re.Float64()
		assert.InDelta(t, wantRe, re, 1e-14)
	}

	stats := sc.GetCurrentStats()
	assert.Equal(t, int64(3), stats.Calculation.PointsTotal)
	assert.Equal(t, int64(3), stats.Calculation.PointsProcessed)
	assert.Zero(t, stats.Calculation.PointsFailed)
	assert.Equal(t, Version, stats.Version)
	assert.FileExists(t, storage.StatsPath())
}

func TestScanAppendsToExistingCSV(t *testing.T) {
	dir := t.TempDir()
	var path string
	for i := 0; i < 2; i++ {
		sc, storage := newTestScanner(t, func(c *Config) { c.Output.OutputDirectory = dir })
		require.NoError(t, sc.Run(context.Background()))
		require.NoError(t, storage.Close())
		path = storage.ResultsPath()
	}

	// One header, two runs of three rows.
	assert.Len(t, readCSV(t, path), 7)
}

func TestScanRecordsPointErrors(t *testing.T) {
	sc, storage := newTestScanner(t, func(c *Config) {
		c.Scan.QStart, c.Scan.QEnd, c.Scan.QStep = 0, 0.5, 0.25
	})
	require.NoError(t, sc.Run(context.Background()))
	require.NoError(t, storage.Close())

	records := readCSV(t, storage.ResultsPath())
	require.Len(t, records, 4)
	assert.Contains(t, records[1][9], "domain unsupported")
	assert.Empty(t, records[2][9])
	assert.Empty(t, records[3][9])

	stats := sc.GetCurrentStats()
	assert.Equal(t, int64(1), stats.Calculation.PointsFailed)
	assert.Equal(t, int64(3), stats.Calculation.PointsProcessed)
}

func TestScanFailFast(t *testing.T) {
	sc, storage := newTestScanner(t, func(c *Config) {
		c.Scan.QStart, c.Scan.QEnd, c.Scan.QStep = 0, 0.5, 0.25
		c.Scan.FailFast = true
		c.Performance.MaxWorkers = 1
	})
	err := sc.Run(context.Background())
	require.NoError(t, storage.Close())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "q = 0")

	// With one worker nothing after the failing point is evaluated.
	records := readCSV(t, storage.ResultsPath())
	assert.Len(t, records, 2)
}

func TestScanCancelled(t *testing.T) {
	sc, storage := newTestScanner(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sc.Run(ctx)
	require.NoError(t, storage.Close())
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, sc.GetCurrentStats().Calculation.PointsProcessed)
}

func TestScanJSONOutput(t *testing.T) {
	sc, storage := newTestScanner(t, func(c *Config) {
		c.Output.Format = FormatJSON
		c.Scan.Function = string(FuncPeriodic)
	})
	require.NoError(t, sc.Run(context.Background()))
	require.NoError(t, storage.Close())

	data, err := os.ReadFile(storage.ResultsPath())
	require.NoError(t, err)
	var rows []ScanResult
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 3)
	for i, r := range rows {
		assert.Equal(t, i, r.Index)
		assert.Empty(t, r.Error)
		assert.NotEmpty(t, r.Re)
		assert.Greater(t, r.Magnitude, 0.0)
	}

	var stats Statistics
	data, err = os.ReadFile(storage.StatsPath())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &stats))
	assert.Equal(t, int64(3), stats.Calculation.PointsProcessed)
	assert.Equal(t, 20, stats.Calculation.Digits)
}

package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/riemann-research/hurwitz-hunter/zeta"
)

// ==================== DATA STRUCTURES ====================
type ScanResult struct {
	Index     int           `json:"index"`
	S         string        `json:"s"`
	Q         float64       `json:"q"`
	Re        string        `json:"re,omitempty"`
	Im        string        `json:"im,omitempty"`
	Magnitude float64       `json:"magnitude"`
	Digits    int           `json:"digits"`
	Elapsed   time.Duration `json:"elapsed"`
	WorkerID  int           `json:"worker_id"`
	Error     string        `json:"error,omitempty"`
}

type CalculationStats struct {
	StartTime       time.Time     `json:"start_time"`
	PointsTotal     int64         `json:"points_total"`
	PointsProcessed int64         `json:"points_processed"`
	PointsFailed    int64         `json:"points_failed"`
	PointsPerSecond float64       `json:"points_per_second"`
	ElapsedTime     time.Duration `json:"elapsed_time"`
	CacheHitRate    float64       `json:"cache_hit_rate"`
	Strategy        string        `json:"strategy"`
	Digits          int           `json:"digits"`
	Workers         int           `json:"workers"`
}

type Statistics struct {
	Calculation CalculationStats `json:"calculation"`
	Caches      zeta.Stats       `json:"caches"`
	Hostname    string           `json:"hostname"`
	Version     string           `json:"version"`
	GoVersion   string           `json:"go_version"`
}

var scanHeader = []string{"index", "s", "q", "re", "im", "magnitude", "digits", "elapsed_ms", "worker_id", "error"}

// ==================== FLEXIBLE STORAGE SYSTEM ====================
type StorageManager struct {
	config  *OutputConfig
	baseDir string
	logger  *logrus.Logger
	mu      sync.Mutex

	// File handles
	resultsFile   *os.File
	resultsWriter *csv.Writer
	textWriter    io.Writer
	statsPath     string
	results       []ScanResult

	resultsSaved int64
}

func NewStorageManager(cfg *OutputConfig, logger *logrus.Logger) (*StorageManager, error) {
	baseDir := cfg.OutputDirectory
	if baseDir == "" {
		baseDir = "."
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	sm := &StorageManager{
		config:     cfg,
		baseDir:    baseDir,
		logger:     logger,
		textWriter: os.Stdout,
	}

	if err := sm.initializeFiles(); err != nil {
		return nil, err
	}

	return sm, nil
}

func (sm *StorageManager) prefix() string {
	if sm.config.FilenamePrefix == "" {
		return "hurwitz"
	}
	return sm.config.FilenamePrefix
}

// ResultsPath returns the results file for the configured format, or ""
// for text output.
func (sm *StorageManager) ResultsPath() string {
	switch sm.config.Format {
	case FormatCSV:
		return filepath.Join(sm.baseDir, sm.prefix()+"_scan.csv")
	case FormatJSON:
		return filepath.Join(sm.baseDir, sm.prefix()+"_scan.json")
	default:
		return ""
	}
}

func (sm *StorageManager) StatsPath() string { return sm.statsPath }

func (sm *StorageManager) initializeFiles() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.statsPath = filepath.Join(sm.baseDir, sm.prefix()+"_stats.json")

	if sm.config.Format != FormatCSV {
		return nil
	}

	path := sm.ResultsPath()
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open results file: %w", err)
	}

	sm.resultsFile = file
	sm.resultsWriter = csv.NewWriter(file)

	// Write header if file is new
	if stat, _ := file.Stat(); stat.Size() == 0 {
		if err := sm.resultsWriter.Write(scanHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		sm.resultsWriter.Flush()
	}

	return nil
}

func (sm *StorageManager) SaveResult(r *ScanResult) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	switch sm.config.Format {
	case FormatCSV:
		record := []string{
			strconv.Itoa(r.Index),
			r.S,
			strconv.FormatFloat(r.Q, 'g', -1, 64),
			r.Re,
			r.Im,
			strconv.FormatFloat(r.Magnitude, 'e', 10, 64),
			strconv.Itoa(r.Digits),
			strconv.FormatInt(r.Elapsed.Milliseconds(), 10),
			strconv.Itoa(r.WorkerID),
			r.Error,
		}
		if err := sm.resultsWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write result record: %w", err)
		}
	case FormatJSON:
		sm.results = append(sm.results, *r)
	default:
		value := r.Re + " + " + r.Im + "i"
		if r.Error != "" {
			value = "error: " + r.Error
		}
		fmt.Fprintf(sm.textWriter, "%4d  q = %-10g  %s\n", r.Index, r.Q, value)
	}

	// Flush periodically
	if atomic.AddInt64(&sm.resultsSaved, 1)%100 == 0 && sm.resultsWriter != nil {
		sm.resultsWriter.Flush()
		if err := sm.resultsWriter.Error(); err != nil {
			return fmt.Errorf("failed to flush results file: %w", err)
		}
	}

	return nil
}

func (sm *StorageManager) SaveStatistics(stats *Statistics) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode statistics: %w", err)
	}
	if err := os.WriteFile(sm.statsPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write statistics: %w", err)
	}
	return nil
}

func (sm *StorageManager) ResultsSaved() int64 {
	return atomic.LoadInt64(&sm.resultsSaved)
}

func (sm *StorageManager) Close() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	var errors []string

	if sm.config.Format == FormatJSON {
		data, err := json.MarshalIndent(sm.results, "", "  ")
		if err == nil {
			err = os.WriteFile(sm.ResultsPath(), data, 0644)
		}
		if err != nil {
			errors = append(errors, fmt.Sprintf("json results: %v", err))
		}
	}

	if sm.resultsWriter != nil {
		sm.resultsWriter.Flush()
		if err := sm.resultsWriter.Error(); err != nil {
			errors = append(errors, fmt.Sprintf("results writer: %v", err))
		}
	}

	if sm.resultsFile != nil {
		if err := sm.resultsFile.Close(); err != nil {
			errors = append(errors, fmt.Sprintf("results file: %v", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("storage close errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/riemann-research/hurwitz-hunter/zeta"
)

// ==================== CONFIGURATION STRUCTURES ====================
type CalculationConfig struct {
	Digits   int    `json:"digits" yaml:"digits" mapstructure:"digits"`
	Strategy string `json:"strategy" yaml:"strategy" mapstructure:"strategy"`
	Polylog  string `json:"polylog" yaml:"polylog" mapstructure:"polylog"`
	MaxDepth int    `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth"`
	UseCache bool   `json:"use_cache" yaml:"use_cache" mapstructure:"use_cache"`
	Terms    int    `json:"terms" yaml:"terms" mapstructure:"terms"`
	Parallel bool   `json:"parallel" yaml:"parallel" mapstructure:"parallel"`
}

type ScanConfig struct {
	Function string  `json:"function" yaml:"function" mapstructure:"function"`
	S        string  `json:"s" yaml:"s" mapstructure:"s"`
	QStart   float64 `json:"q_start" yaml:"q_start" mapstructure:"q_start"`
	QEnd     float64 `json:"q_end" yaml:"q_end" mapstructure:"q_end"`
	QStep    float64 `json:"q_step" yaml:"q_step" mapstructure:"q_step"`
	FailFast bool    `json:"fail_fast" yaml:"fail_fast" mapstructure:"fail_fast"`
}

type OutputConfig struct {
	OutputDirectory string `json:"output_directory" yaml:"output_directory" mapstructure:"output_directory"`
	FilenamePrefix  string `json:"filename_prefix" yaml:"filename_prefix" mapstructure:"filename_prefix"`
	Format          string `json:"format" yaml:"format" mapstructure:"format"`
	LogLevel        string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	Verbose         bool   `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
}

type PerformanceConfig struct {
	MaxWorkers int `json:"max_workers" yaml:"max_workers" mapstructure:"max_workers"`
}

type Config struct {
	Calculation CalculationConfig `json:"calculation" yaml:"calculation" mapstructure:"calculation"`
	Scan        ScanConfig        `json:"scan" yaml:"scan" mapstructure:"scan"`
	Output      OutputConfig      `json:"output" yaml:"output" mapstructure:"output"`
	Performance PerformanceConfig `json:"performance" yaml:"performance" mapstructure:"performance"`

	// Internal fields
	loadedFrom string
}

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatText = "text"

	MaxDigits  = 10000
	MaxWorkers = 64
	EnvPrefix  = "HURWITZ"
)

// ==================== LOGGING ====================
func setupLogger(cfg OutputConfig) *logrus.Logger {
	logger := logrus.New()

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		if cfg.Verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}
	}

	return logger
}

// ==================== CONFIGURATION MANAGEMENT ====================
func setDefaults(v *viper.Viper) {
	// Calculation defaults
	v.SetDefault("calculation.digits", 40)
	v.SetDefault("calculation.strategy", "reflection")
	v.SetDefault("calculation.polylog", "borwein")
	v.SetDefault("calculation.max_depth", zeta.DefaultMaxDepth)
	v.SetDefault("calculation.use_cache", true)
	v.SetDefault("calculation.terms", 0) // 0 = auto
	v.SetDefault("calculation.parallel", false)

	// Scan defaults
	v.SetDefault("scan.function", string(FuncHurwitz))
	v.SetDefault("scan.s", "0.5+14.134725i")
	v.SetDefault("scan.q_start", 0.05)
	v.SetDefault("scan.q_end", 0.95)
	v.SetDefault("scan.q_step", 0.05)
	v.SetDefault("scan.fail_fast", false)

	// Output defaults
	v.SetDefault("output.output_directory", ".")
	v.SetDefault("output.filename_prefix", "hurwitz")
	v.SetDefault("output.format", FormatText)
	v.SetDefault("output.log_level", "info")
	v.SetDefault("output.verbose", false)

	// Performance defaults
	v.SetDefault("performance.max_workers", 0) // 0 = auto
}

func bindEnvironment(v *viper.Viper) {
	// HURWITZ_CALCULATION_DIGITS, HURWITZ_OUTPUT_FORMAT, ...
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func loadConfigFromFile(v *viper.Viper, path string) (*Config, error) {
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := decodeConfig(v)
	if err != nil {
		return nil, err
	}
	cfg.loadedFrom = v.ConfigFileUsed()
	return cfg, nil
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	calculateDynamicValues(&cfg)
	return &cfg, nil
}

// loadConfig resolves defaults, the optional config file, HURWITZ_*
// environment variables and bound flags, in increasing priority. A missing
// file at an explicit path is created with the defaults.
func loadConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	bindEnvironment(v)

	if path == "" {
		return decodeConfig(v)
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
		cfg, err := decodeConfig(v)
		if err != nil {
			return nil, err
		}
		if err := saveDefaultConfig(path, createDefaultConfig()); err != nil {
			fmt.Printf("Warning: Could not save default config: %v\n", err)
		}
		return cfg, nil
	}

	return loadConfigFromFile(v, path)
}

func validateConfig(cfg *Config) error {
	calc := cfg.Calculation
	if calc.Digits < 1 || calc.Digits > MaxDigits {
		return fmt.Errorf("digits must be between 1 and %d, got %d", MaxDigits, calc.Digits)
	}
	if _, err := zeta.ParseHurwitzStrategy(calc.Strategy); err != nil {
		return err
	}
	if _, err := zeta.ParsePolylogStrategy(calc.Polylog); err != nil {
		return err
	}
	if calc.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be positive")
	}
	if calc.Terms < 0 {
		return fmt.Errorf("terms cannot be negative")
	}

	scan := cfg.Scan
	switch Function(strings.ToLower(scan.Function)) {
	case FuncHurwitz, FuncPeriodic, FuncBeta:
	default:
		return fmt.Errorf("scan function must be hurwitz, periodic or beta, got %q", scan.Function)
	}
	if scan.QStep <= 0 {
		return fmt.Errorf("q_step must be positive")
	}
	if scan.QEnd < scan.QStart {
		return fmt.Errorf("q_start must not exceed q_end (start=%g, end=%g)", scan.QStart, scan.QEnd)
	}

	switch strings.ToLower(cfg.Output.Format) {
	case FormatCSV, FormatJSON, FormatText:
	default:
		return fmt.Errorf("unknown output format %q", cfg.Output.Format)
	}
	switch strings.ToLower(cfg.Output.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.Output.LogLevel)
	}

	if cfg.Performance.MaxWorkers < 0 {
		return fmt.Errorf("max_workers cannot be negative")
	}

	return nil
}

func calculateDynamicValues(cfg *Config) {
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	cfg.Scan.Function = strings.ToLower(cfg.Scan.Function)
	if cfg.Output.Verbose {
		cfg.Output.LogLevel = "debug"
	}

	if cfg.Performance.MaxWorkers <= 0 {
		cfg.Performance.MaxWorkers = runtime.NumCPU()
	}
	cfg.Performance.MaxWorkers = max(1, min(cfg.Performance.MaxWorkers, MaxWorkers))

	if cfg.Output.FilenamePrefix == "" {
		cfg.Output.FilenamePrefix = "hurwitz"
	}
	if cfg.Output.OutputDirectory == "" {
		cfg.Output.OutputDirectory = "."
	}
}

func createDefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	// Worker count stays 0 (auto) in the written file.
	return cfg
}

func saveDefaultConfig(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	header := `# Hurwitz Hunter Configuration v` + Version + `
# Generated automatically on ` + time.Now().Format("2006-01-02 15:04:05") + `
# Every key can be overridden with HURWITZ_<SECTION>_<KEY>, e.g. HURWITZ_CALCULATION_DIGITS=60

`

	return os.WriteFile(path, []byte(header+string(data)), 0644)
}

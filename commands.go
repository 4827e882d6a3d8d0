package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/riemann-research/hurwitz-hunter/mpc"
)

// ==================== COMMAND LINE INTERFACE ====================
type app struct {
	v          *viper.Viper
	configPath string
	noCache    bool

	config *Config
	logger *logrus.Logger
	calc   *HurwitzCalculator
}

// pointFlags holds the textual arguments of a single evaluation.
type pointFlags struct {
	s, q, z, a, b string
}

type pointOutput struct {
	Function  Function `json:"function"`
	S         string   `json:"s,omitempty"`
	Q         string   `json:"q,omitempty"`
	Z         string   `json:"z,omitempty"`
	A         string   `json:"a,omitempty"`
	B         string   `json:"b,omitempty"`
	Re        string   `json:"re"`
	Im        string   `json:"im"`
	Digits    int      `json:"digits"`
	ElapsedMs float64  `json:"elapsed_ms"`
	Cached    bool     `json:"cached"`
}

var pointHeader = []string{"function", "s", "q", "z", "a", "b", "re", "im", "digits", "elapsed_ms", "cached"}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "hurwitz-hunter",
		Short: "Arbitrary precision Hurwitz zeta, periodic zeta and polylogarithm evaluator",
		Long: `Hurwitz Hunter evaluates the Hurwitz zeta function zeta(s, q) for complex s
and real q in (0, 1] to any number of decimal digits, together with the
periodic zeta F(s, q), the periodic beta function, the polylogarithm Li_s(z),
the Riemann zeta function, the gamma function and Kummer's function M(a; b; z).

The scan command sweeps q over a grid in parallel and writes CSV, JSON or text.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	fs := rootCmd.PersistentFlags()
	fs.StringVar(&a.configPath, "config", "", "Configuration file path (created with defaults if missing)")
	fs.BoolVar(&a.noCache, "no-cache", false, "Disable all memoization")
	addCalculationFlags(fs)
	addOutputFlags(fs)
	a.bindFlags(fs, map[string]string{
		"calculation.digits":      "digits",
		"calculation.strategy":    "strategy",
		"calculation.polylog":     "polylog",
		"calculation.max_depth":   "max-depth",
		"calculation.parallel":    "parallel",
		"output.log_level":        "log-level",
		"output.verbose":          "verbose",
		"output.output_directory": "output-dir",
		"output.format":           "format",
		"performance.max_workers": "workers",
		"output.filename_prefix":  "prefix",
	})

	rootCmd.AddCommand(
		a.newPointCmd(FuncHurwitz, "Hurwitz zeta function zeta(s, q)", "s", "q"),
		a.newPointCmd(FuncPeriodic, "Periodic zeta function F(s, q)", "s", "q"),
		a.newPointCmd(FuncBeta, "Periodic beta function 2 Gamma(s+1) (2 pi)^-s F(s, q)", "s", "q"),
		a.newPolylogCmd(),
		a.newPointCmd(FuncRiemann, "Riemann zeta function zeta(s)", "s"),
		a.newPointCmd(FuncGamma, "Gamma function Gamma(s)", "s"),
		a.newPointCmd(FuncConfluent, "Kummer confluent hypergeometric function M(a; b; z)", "a", "b", "z"),
		a.newBernoulliCmd(),
		a.newScanCmd(),
		a.newConfigCmd(),
	)

	return rootCmd
}

func addCalculationFlags(fs *pflag.FlagSet) {
	fs.Int("digits", 40, "Decimal digits of precision")
	fs.String("strategy", "reflection", "Hurwitz strategy: reflection, euler-maclaurin, taylor")
	fs.String("polylog", "borwein", "Polylog strategy: borwein, direct")
	fs.Int("max-depth", 64, "Maximum duplication recursion depth of the periodic zeta")
	fs.Bool("parallel", false, "Evaluate the two reflection branches concurrently")
}

func addOutputFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
	fs.BoolP("verbose", "v", false, "Verbose output (debug logging)")
	fs.String("output-dir", ".", "Output directory for scan results")
	fs.String("prefix", "hurwitz", "Filename prefix for scan results")
	fs.String("format", FormatText, "Output format: text, csv, json")
	fs.Int("workers", 0, "Scan workers (0 = number of CPUs)")
}

func addPointFlags(fs *pflag.FlagSet, pf *pointFlags, names ...string) {
	usage := map[string]string{
		"s": "Complex argument s, e.g. 0.5+14.134725i",
		"q": "Real parameter q in (0, 1]",
		"z": "Complex argument z",
		"a": "Complex numerator parameter a",
		"b": "Complex denominator parameter b",
	}
	dst := map[string]*string{"s": &pf.s, "q": &pf.q, "z": &pf.z, "a": &pf.a, "b": &pf.b}
	for _, name := range names {
		fs.StringVar(dst[name], name, "", usage[name])
	}
}

func (a *app) bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, flag := range keys {
		if err := a.v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}
}

// setup loads the configuration and builds the logger and calculator
// before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("no-cache") {
		a.v.Set("calculation.use_cache", !a.noCache)
	}

	cfg, err := loadConfig(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.config = cfg
	a.logger = setupLogger(cfg.Output)
	a.logger.SetOutput(cmd.ErrOrStderr())
	if cfg.loadedFrom != "" {
		a.logger.Debugf("Loaded configuration from %s", cfg.loadedFrom)
	}

	a.calc, err = NewHurwitzCalculator(&a.config.Calculation, a.logger)
	return err
}

func (a *app) newPointCmd(fn Function, short string, args ...string) *cobra.Command {
	pf := &pointFlags{}
	cmd := &cobra.Command{
		Use:   string(fn),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPoint(cmd.OutOrStdout(), fn, pf)
		},
	}
	addPointFlags(cmd.Flags(), pf, args...)
	for _, name := range args {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) newPolylogCmd() *cobra.Command {
	cmd := a.newPointCmd(FuncPolylog, "Polylogarithm Li_s(z) for |z| <= 1", "s", "z")
	cmd.Flags().Int("terms", 0, "Borwein order n (0 = automatic)")
	a.bindFlags(cmd.Flags(), map[string]string{"calculation.terms": "terms"})
	return cmd
}

func (a *app) parsePoint(pf *pointFlags) (Point, error) {
	ctx := a.calc.Context()
	var p Point

	for _, f := range []struct {
		text string
		dst  *mpc.Complex
	}{
		{pf.s, &p.S},
		{pf.z, &p.Z},
		{pf.a, &p.A},
		{pf.b, &p.B},
	} {
		if f.text == "" {
			continue
		}
		z, err := ctx.Parse(f.text)
		if err != nil {
			return Point{}, err
		}
		*f.dst = z
	}

	if pf.q != "" {
		q, err := parseReal(ctx, pf.q)
		if err != nil {
			return Point{}, err
		}
		p.Q = q
	}
	return p, nil
}

func (a *app) runPoint(w io.Writer, fn Function, pf *pointFlags) error {
	fields := logrus.Fields{"function": fn, "digits": a.config.Calculation.Digits}
	for name, v := range map[string]string{"s": pf.s, "q": pf.q, "z": pf.z, "a": pf.a, "b": pf.b} {
		if v != "" {
			fields[name] = v
		}
	}

	p, err := a.parsePoint(pf)
	if err != nil {
		a.logger.WithFields(fields).Errorf("Invalid argument: %v", err)
		return err
	}

	res, err := a.calc.Compute(fn, p)
	if err != nil {
		a.logger.WithFields(fields).Errorf("Evaluation failed: %v", err)
		return err
	}
	a.logger.WithFields(fields).Debugf("Evaluated in %v", res.Elapsed)

	digits := a.config.Calculation.Digits
	out := pointOutput{
		Function:  fn,
		S:         pf.s,
		Q:         pf.q,
		Z:         pf.z,
		A:         pf.a,
		B:         pf.b,
		Re:        res.Value.Re.Text('g', digits),
		Im:        res.Value.Im.Text('g', digits),
		Digits:    digits,
		ElapsedMs: float64(res.Elapsed.Microseconds()) / 1000,
		Cached:    res.Cached,
	}
	return writePoint(w, a.config.Output.Format, out)
}

func writePoint(w io.Writer, format string, out pointOutput) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case FormatCSV:
		cw := csv.NewWriter(w)
		record := []string{
			string(out.Function), out.S, out.Q, out.Z, out.A, out.B, out.Re, out.Im,
			strconv.Itoa(out.Digits),
			strconv.FormatFloat(out.ElapsedMs, 'f', 3, 64),
			strconv.FormatBool(out.Cached),
		}
		if err := cw.WriteAll([][]string{pointHeader, record}); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
		return nil
	default:
		sign := "+"
		im := out.Im
		if len(im) > 0 && im[0] == '-' {
			sign, im = "-", im[1:]
		}
		_, err := fmt.Fprintf(w, "%s = %s %s %si\n", describe(out), out.Re, sign, im)
		return err
	}
}

func describe(out pointOutput) string {
	switch out.Function {
	case FuncHurwitz:
		return fmt.Sprintf("zeta(%s, %s)", out.S, out.Q)
	case FuncPeriodic:
		return fmt.Sprintf("F(%s, %s)", out.S, out.Q)
	case FuncBeta:
		return fmt.Sprintf("beta(%s, %s)", out.S, out.Q)
	case FuncPolylog:
		return fmt.Sprintf("Li_{%s}(%s)", out.S, out.Z)
	case FuncRiemann:
		return fmt.Sprintf("zeta(%s)", out.S)
	case FuncGamma:
		return fmt.Sprintf("Gamma(%s)", out.S)
	case FuncConfluent:
		return fmt.Sprintf("M(%s; %s; %s)", out.A, out.B, out.Z)
	}
	return string(out.Function)
}

var errBernoulliMismatch = errors.New("bernoulli polynomial mismatch")

func (a *app) newBernoulliCmd() *cobra.Command {
	var (
		n int
		q string
	)
	cmd := &cobra.Command{
		Use:   "bernoulli",
		Short: "Check B_n(q) against the value recovered from the periodic beta function",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n < 0 {
				return fmt.Errorf("n must be nonnegative, got %d", n)
			}
			qf, err := parseReal(a.calc.Context(), q)
			if err != nil {
				return err
			}
			want, got, diff, err := a.calc.BernoulliCheck(n, qf)
			if err != nil {
				a.logger.WithFields(logrus.Fields{"n": n, "q": q}).Errorf("Check failed: %v", err)
				return err
			}

			digits := a.config.Calculation.Digits
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "B_%d(%s) exact:     %s\n", n, q, want.Text('g', digits))
			fmt.Fprintf(w, "B_%d(%s) from beta: %s\n", n, q, got.Text('g', digits))
			fmt.Fprintf(w, "difference:          %s\n", diff.Text('e', 3))

			tol := a.calc.Context().Float64(1)
			tol.SetMantExp(tol, -int(float64(digits-3)*3.3219280948873626))
			if diff.Cmp(tol) > 0 {
				return fmt.Errorf("%w: |diff| = %s", errBernoulliMismatch, diff.Text('e', 3))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 2, "Polynomial degree")
	cmd.Flags().StringVar(&q, "q", "0.3", "Point q in (0, 1)")
	return cmd
}

func (a *app) newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Evaluate a function of (s, q) over a grid of q values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			storage, err := NewStorageManager(&a.config.Output, a.logger)
			if err != nil {
				return err
			}

			scanner := NewScanner(a.config, a.calc, storage, a.logger)
			if a.config.Output.Format != FormatText {
				scanner.printStartupBanner()
			}

			runErr := scanner.Run(ctx)
			if err := storage.Close(); err != nil {
				a.logger.Errorf("Failed to close storage: %v", err)
			}
			if a.config.Output.Format != FormatText {
				scanner.printFinalStatistics()
			}
			return runErr
		},
	}

	fs := cmd.Flags()
	fs.String("function", string(FuncHurwitz), "Function to scan: hurwitz, periodic, beta")
	fs.String("s", "0.5+14.134725i", "Complex argument s")
	fs.Float64("q-start", 0.05, "First q value")
	fs.Float64("q-end", 0.95, "Last q value")
	fs.Float64("q-step", 0.05, "Step between q values")
	fs.Bool("fail-fast", false, "Stop at the first failing point")
	a.bindFlags(fs, map[string]string{
		"scan.function":  "function",
		"scan.s":         "s",
		"scan.q_start":   "q-start",
		"scan.q_end":     "q-end",
		"scan.q_step":    "q-step",
		"scan.fail_fast": "fail-fast",
	})
	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with the default values",
		Args:  cobra.MaximumNArgs(1),
		// No configuration is loaded for init.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "hurwitz.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := saveDefaultConfig(path, createDefaultConfig()); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(a.config)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

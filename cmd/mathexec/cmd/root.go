package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/mathexec"
	"github.com/zephyrtronium/mathexec/bigmath"
	"github.com/zephyrtronium/mathexec/decimalmath"
	"github.com/zephyrtronium/mathexec/internal/config"
)

// options holds the persistent flags.
type options struct {
	cfgFile  string
	logLevel string
	backend  string
	prec     uint
	divZero  bool
	noCache  bool
	given    []string
}

// Execute runs the mathexec command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates the mathexec command with all subcommands.
func NewRootCmd() *cobra.Command {
	var o options
	root := &cobra.Command{
		Use:   "mathexec",
		Short: "Evaluate math expressions",
		Long: `mathexec evaluates math expressions like "1 + 2 * 3" or
"if(x > 0, sqrt(x), 0)".

Numbers are float64 by default. Use --backend decimal for exact decimal
arithmetic or --backend bigfloat for binary floating point with --prec bits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&o.cfgFile, "config", "", "config file (TOML, or YAML by .yaml/.yml extension)")
	pf.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&o.backend, "backend", "", "number type: "+strings.Join(config.Backends, ", "))
	pf.UintVarP(&o.prec, "prec", "p", 0, "bits of precision for bigfloat, decimal places for decimal")
	pf.BoolVar(&o.divZero, "div-zero", false, "division by zero gives zero instead of an error")
	pf.BoolVar(&o.noCache, "no-cache", false, "disable the compiled expression cache")
	pf.StringArrayVar(&o.given, "given", nil, "name=value variable definition (any number of times)")

	root.AddCommand(
		newEvalCmd(&o),
		newTokensCmd(&o),
		newRPNCmd(&o),
		newExplainCmd(&o),
		newFuncsCmd(&o),
		newReplCmd(&o),
	)
	return root
}

// load merges the config file with flags that were set explicitly.
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.cfgFile != "" {
		var err error
		if cfg, err = config.Load(o.cfgFile); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("backend") {
		cfg.Backend = o.backend
	}
	if flags.Changed("prec") {
		cfg.Precision = o.prec
	}
	if flags.Changed("div-zero") {
		cfg.DivisionByZeroIsZero = o.divZero
	}
	if o.noCache {
		cfg.CacheSize = -1
	}
	return cfg, cfg.Validate()
}

// registry builds the registry for a backend.
func registry(cfg config.Config) *mathexec.Registry {
	var opts []mathexec.RegistryOption
	if cfg.DivisionByZeroIsZero {
		opts = append(opts, mathexec.DivisionByZeroIsZero())
	}
	switch cfg.Backend {
	case "decimal":
		return decimalmath.Registry(int32(cfg.Precision), opts...)
	case "bigfloat":
		return bigmath.Registry(cfg.Precision, opts...)
	default:
		return mathexec.NewRegistry(opts...)
	}
}

// setup creates the executor every subcommand works with.
func (o *options) setup(cmd *cobra.Command) (*mathexec.Executor, error) {
	cfg, err := o.load(cmd)
	if err != nil {
		return nil, err
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	opts := []mathexec.Option{
		mathexec.WithRegistry(registry(cfg)),
		mathexec.WithLogger(logger),
	}
	if cfg.CacheSize < 0 {
		opts = append(opts, mathexec.WithoutCache())
	} else {
		opts = append(opts, mathexec.WithCache(cfg.CacheSize))
	}
	ex, err := mathexec.New(opts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("executor ready", slog.String("backend", cfg.Backend), slog.Uint64("precision", uint64(cfg.Precision)))

	// Config variables are set in name order so that later ones may refer
	// to earlier ones.
	names := make([]string, 0, len(cfg.Variables))
	for k := range cfg.Variables {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		v := cfg.Variables[name]
		if s, ok := v.(string); ok {
			if v, err = ex.Execute(s); err != nil {
				return nil, fmt.Errorf("setting %s: %w", name, err)
			}
		}
		if err := ex.SetVar(name, v); err != nil {
			return nil, err
		}
	}
	for _, d := range o.given {
		name, expr, ok := strings.Cut(d, "=")
		if !ok {
			return nil, fmt.Errorf(`variable definitions must be "name=value", not %q`, d)
		}
		name = strings.TrimSpace(name)
		v, err := ex.Execute(expr)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", name, err)
		}
		if err := ex.SetVar(name, v); err != nil {
			return nil, err
		}
	}
	return ex, nil
}

// printErr writes an error in the error style.
func printErr(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("error: "+err.Error()))
}

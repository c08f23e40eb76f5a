// Package config loads run configuration from a YAML file, PROXACCEL_*
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cwbudde/proxaccel/internal/accel"
	"github.com/cwbudde/proxaccel/internal/problem"
	"github.com/cwbudde/proxaccel/internal/solver"
)

// EnvPrefix prefixes environment overrides, e.g. PROXACCEL_SOLVER_STEP.
const EnvPrefix = "PROXACCEL"

// Solver names.
const (
	SolverForwardBackward = "fb"
	SolverGradient        = "gd"
)

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// SolverConfig selects the iteration rule.
type SolverConfig struct {
	Name string `mapstructure:"name"`

	// Step is the initial step size; 0 means 1/L of the problem
	Step float64 `mapstructure:"step"`
}

// TuneConfig controls the mayfly step search.
type TuneConfig struct {
	MaxIters int   `mapstructure:"max_iters"`
	PopSize  int   `mapstructure:"pop_size"`
	Seed     int64 `mapstructure:"seed"`

	// LowerExp and UpperExp bound log10(step)
	LowerExp float64 `mapstructure:"lower_exp"`
	UpperExp float64 `mapstructure:"upper_exp"`
}

// Config is the complete configuration of a CLI run.
type Config struct {
	Problem problem.Config `mapstructure:"problem"`
	Scheme  accel.Config   `mapstructure:"scheme"`
	Solver  SolverConfig   `mapstructure:"solver"`
	Stop    solver.Options `mapstructure:"stop"`
	Tune    TuneConfig     `mapstructure:"tune"`

	// TraceDir enables JSONL traces under <TraceDir>/runs/<run>/ when set
	TraceDir string `mapstructure:"trace_dir"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Problem: problem.DefaultConfig(),
		Scheme:  accel.DefaultConfig(),
		Solver:  SolverConfig{Name: SolverForwardBackward},
		Stop:    solver.DefaultOptions(),
		Tune: TuneConfig{
			MaxIters: 30,
			PopSize:  20,
			Seed:     1,
			LowerExp: -3,
			UpperExp: 1,
		},
	}
}

// New returns a viper instance with defaults and environment overrides
// registered. Flags may be bound to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("problem.name", d.Problem.Name)
	v.SetDefault("problem.size", d.Problem.Size)
	v.SetDefault("problem.rows", d.Problem.Rows)
	v.SetDefault("problem.sparsity", d.Problem.Sparsity)
	v.SetDefault("problem.lambda", d.Problem.Lambda)
	v.SetDefault("problem.noise", d.Problem.Noise)
	v.SetDefault("problem.seed", d.Problem.Seed)

	v.SetDefault("scheme.name", d.Scheme.Name)
	v.SetDefault("scheme.eta", d.Scheme.Eta)
	v.SetDefault("scheme.rna.k", d.Scheme.RNA.K)
	v.SetDefault("scheme.rna.lambda", d.Scheme.RNA.Lambda)
	v.SetDefault("scheme.rna.adaptive", d.Scheme.RNA.Adaptive)
	v.SetDefault("scheme.rna.line_search", d.Scheme.RNA.LineSearch)
	v.SetDefault("scheme.rna.force_decrease", d.Scheme.RNA.ForceDecrease)

	v.SetDefault("solver.name", d.Solver.Name)
	v.SetDefault("solver.step", d.Solver.Step)

	v.SetDefault("stop.atol", d.Stop.ATol)
	v.SetDefault("stop.dtol", d.Stop.DTol)
	v.SetDefault("stop.rtol", d.Stop.RTol)
	v.SetDefault("stop.xtol", d.Stop.XTol)
	v.SetDefault("stop.maxit", d.Stop.MaxIt)
	v.SetDefault("stop.trace_sol", d.Stop.TraceSol)

	v.SetDefault("tune.max_iters", d.Tune.MaxIters)
	v.SetDefault("tune.pop_size", d.Tune.PopSize)
	v.SetDefault("tune.seed", d.Tune.Seed)
	v.SetDefault("tune.lower_exp", d.Tune.LowerExp)
	v.SetDefault("tune.upper_exp", d.Tune.UpperExp)

	v.SetDefault("trace_dir", d.TraceDir)
}

// BindFlags binds config keys to the named flags of fs. Flags only
// override file and environment values when set on the command line.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, bindings map[string]string) error {
	for key, name := range bindings {
		flag := fs.Lookup(name)
		if flag == nil {
			return fmt.Errorf("no flag %q for key %s", name, key)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the optional config file at path into v, decodes the result
// and validates it.
func Load(v *viper.Viper, path string) (Config, error) {
	var cfg Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var result *multierror.Error
	if err := c.Problem.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Scheme.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	switch c.Solver.Name {
	case SolverForwardBackward, SolverGradient:
	default:
		result = multierror.Append(result, fmt.Errorf("unknown solver %q", c.Solver.Name))
	}
	if c.Solver.Step < 0 {
		result = multierror.Append(result, fmt.Errorf("step must be non-negative, got %g", c.Solver.Step))
	}
	if c.Stop.MaxIt < 1 {
		result = multierror.Append(result, fmt.Errorf("maxit must be at least 1, got %d", c.Stop.MaxIt))
	}
	if !(c.Tune.LowerExp < c.Tune.UpperExp) {
		result = multierror.Append(result, fmt.Errorf("tune exponent range [%g, %g] is empty", c.Tune.LowerExp, c.Tune.UpperExp))
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// NewSolver builds the configured solver driven by scheme. A zero step
// falls back to fallback.
func (c Config) NewSolver(scheme accel.Scheme, fallback float64) (solver.Solver, error) {
	step := c.Solver.Step
	if step == 0 {
		step = fallback
	}
	switch c.Solver.Name {
	case SolverGradient:
		gd, err := solver.NewGradientDescent(step, scheme)
		if err != nil {
			return nil, err
		}
		return gd, nil
	case SolverForwardBackward:
		fb, err := solver.NewForwardBackward(step, scheme)
		if err != nil {
			return nil, err
		}
		return fb, nil
	}
	return nil, fmt.Errorf("%w: unknown solver %q", ErrInvalid, c.Solver.Name)
}

package accel

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Scheme names accepted by New.
const (
	NameDummy             = "dummy"
	NameBacktracking      = "backtracking"
	NameFISTA             = "fista"
	NameFISTABacktracking = "fista_backtracking"
	NameRNA               = "rna"
)

// Names lists every scheme New can build.
func Names() []string {
	return []string{NameDummy, NameBacktracking, NameFISTA, NameFISTABacktracking, NameRNA}
}

// Config selects and parameterizes a scheme. Fields irrelevant to the chosen
// scheme are ignored.
type Config struct {
	Name string  `mapstructure:"name"`
	Eta  float64 `mapstructure:"eta"`

	RNA RNAConfig `mapstructure:"rna"`
}

// DefaultConfig returns the defaults of every scheme, selecting FISTA.
func DefaultConfig() Config {
	return Config{
		Name: NameFISTA,
		Eta:  DefaultEta,
		RNA:  DefaultRNAConfig(),
	}
}

// Validate checks the fields used by the selected scheme.
func (c Config) Validate() error {
	var result *multierror.Error

	switch c.Name {
	case NameDummy, NameFISTA:
	case NameBacktracking, NameFISTABacktracking:
		if !(c.Eta > 0 && c.Eta <= 1) {
			result = multierror.Append(result, fmt.Errorf("%w: eta must be in (0, 1], got %g", ErrInvalidConfig, c.Eta))
		}
	case NameRNA:
		if err := c.RNA.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	default:
		result = multierror.Append(result, fmt.Errorf("%w: unknown scheme %q (want one of %s)",
			ErrInvalidConfig, c.Name, strings.Join(Names(), ", ")))
	}

	return result.ErrorOrNil()
}

// New builds the scheme named in cfg.
func New(cfg Config) (*Accelerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Name {
	case NameDummy:
		return NewDummy(), nil
	case NameBacktracking:
		return NewBacktracking(cfg.Eta)
	case NameFISTA:
		return NewFISTA(), nil
	case NameFISTABacktracking:
		return NewFISTABacktracking(cfg.Eta)
	default:
		return NewRNA(cfg.RNA)
	}
}

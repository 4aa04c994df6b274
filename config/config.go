// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: config.go — Run configuration
//
// Purpose:
//   - Collects the seed, game size and output settings for one CLI run.
//   - Layers sources: built-in defaults, then an optional YAML file, then
//     CRABRING_* environment variables. Command-line flags are applied last
//     by the caller.
//
// Notes:
//   - Population and Moves left at zero mean "use the command's default".
//   - Validate reports every bad field at once.
// ─────────────────────────────────────────────────────────────────────────────

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"

	"crabring/constants"
	"crabring/crabcups"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "CRABRING"

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Seed          string `envconfig:"SEED"           yaml:"seed"`
	Population    int    `envconfig:"POPULATION"     yaml:"population"`
	Moves         int    `envconfig:"MOVES"          yaml:"moves"`
	ProgressEvery int    `envconfig:"PROGRESS_EVERY" yaml:"progressEvery"`
	DBPath        string `envconfig:"DB"             yaml:"db"`
	Verbose       bool   `envconfig:"VERBOSE"        yaml:"verbose"`
	JSON          bool   `envconfig:"JSON"           yaml:"json"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() Config {
	return Config{
		ProgressEvery: constants.ProgressInterval,
		DBPath:        constants.DefaultDBPath,
	}
}

// Load reads path (if non-empty) over the defaults, then applies environment
// overrides. A missing file is an error only when path was given explicitly.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, &c); err != nil {
			return nil, fmt.Errorf("unmarshaling config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	return &c, nil
}

// Validate checks every field and joins all failures.
func (c *Config) Validate() error {
	var err error
	if c.Seed == "" {
		err = multierr.Append(err, fmt.Errorf("%w: seed is required", ErrInvalid))
	} else if _, perr := crabcups.ParseSeed(c.Seed); perr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: seed: %w", ErrInvalid, perr))
	}
	if c.Population < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: population %d is negative", ErrInvalid, c.Population))
	}
	if c.Moves < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: moves %d is negative", ErrInvalid, c.Moves))
	}
	if c.ProgressEvery < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: progressEvery %d is negative", ErrInvalid, c.ProgressEvery))
	}
	if c.DBPath == "" {
		err = multierr.Append(err, fmt.Errorf("%w: db path is required", ErrInvalid))
	}
	return err
}

// MovesOr returns Moves, or def when Moves is unset.
func (c *Config) MovesOr(def int) int {
	if c.Moves == 0 {
		return def
	}
	return c.Moves
}

// PopulationOr returns Population, or def when Population is unset.
func (c *Config) PopulationOr(def int) int {
	if c.Population == 0 {
		return def
	}
	return c.Population
}

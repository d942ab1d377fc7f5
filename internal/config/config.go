// Package config loads solver tuning parameters from a YAML file, falling
// back to sat.DefaultOptions for any field the file leaves unset.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/satlab-go/cadence/internal/sat"
)

// File is the on-disk shape of a solver configuration file. Every field is a
// pointer so the loader can tell "unset" apart from "explicitly zero".
type File struct {
	VarDecay    *float64 `yaml:"var_decay"`
	VarDecayMax *float64 `yaml:"var_decay_max"`
	ClauseDecay *float64 `yaml:"clause_decay"`
	PhaseSaving *bool    `yaml:"phase_saving"`

	PersistentLBDThreshold *int  `yaml:"persistent_lbd_threshold"`
	KeepMedianLBD          *bool `yaml:"keep_median_lbd"`

	LBSizeMinimizingClause *int `yaml:"lb_size_minimizing_clause"`

	RestartK        *float64 `yaml:"restart_k"`
	RestartBlockR   *float64 `yaml:"restart_block_r"`
	RestartMinConfl *int     `yaml:"restart_min_conflicts"`

	ReduceBase      *int `yaml:"reduce_base"`
	ReduceIncrement *int `yaml:"reduce_increment"`

	ProgressEvery *int64 `yaml:"progress_every"`

	MaxConflicts    *int64   `yaml:"max_conflicts"`
	MaxPropagations *int64   `yaml:"max_propagations"`
	TimeoutSeconds  *float64 `yaml:"timeout_seconds"`

	DratPath *string `yaml:"drat_path"`
}

// Load reads and parses a YAML configuration file at path, applying every
// field it sets on top of sat.DefaultOptions.
func Load(path string) (sat.Options, error) {
	opts := sat.DefaultOptions()

	b, err := os.ReadFile(path)
	if err != nil {
		return opts, errors.Wrapf(err, "config: reading %q", path)
	}

	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return opts, errors.Wrapf(err, "config: parsing %q", path)
	}

	return Apply(opts, f), nil
}

// Apply overlays every field f sets onto opts and returns the result.
func Apply(opts sat.Options, f File) sat.Options {
	if f.VarDecay != nil {
		opts.VarDecay = *f.VarDecay
	}
	if f.VarDecayMax != nil {
		opts.VarDecayMax = *f.VarDecayMax
	}
	if f.ClauseDecay != nil {
		opts.ClauseDecay = *f.ClauseDecay
	}
	if f.PhaseSaving != nil {
		opts.PhaseSaving = *f.PhaseSaving
	}
	if f.PersistentLBDThreshold != nil {
		opts.PersistentLBDThreshold = *f.PersistentLBDThreshold
	}
	if f.KeepMedianLBD != nil {
		opts.KeepMedianLBD = *f.KeepMedianLBD
	}
	if f.LBSizeMinimizingClause != nil {
		opts.LBSizeMinimizingClause = *f.LBSizeMinimizingClause
	}
	if f.RestartK != nil {
		opts.RestartK = *f.RestartK
	}
	if f.RestartBlockR != nil {
		opts.RestartBlockR = *f.RestartBlockR
	}
	if f.RestartMinConfl != nil {
		opts.RestartMinConfl = *f.RestartMinConfl
	}
	if f.ReduceBase != nil {
		opts.ReduceBase = *f.ReduceBase
	}
	if f.ReduceIncrement != nil {
		opts.ReduceIncrement = *f.ReduceIncrement
	}
	if f.ProgressEvery != nil {
		opts.ProgressEvery = *f.ProgressEvery
	}
	if f.MaxConflicts != nil {
		opts.MaxConflicts = *f.MaxConflicts
	}
	if f.MaxPropagations != nil {
		opts.MaxPropagations = *f.MaxPropagations
	}
	if f.TimeoutSeconds != nil {
		opts.Timeout = secondsToDuration(*f.TimeoutSeconds)
	}
	if f.DratPath != nil {
		opts.DratPath = *f.DratPath
	}
	return opts
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

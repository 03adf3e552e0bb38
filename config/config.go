// Package config reads transfer run settings from TOML or YAML files and
// turns them into transfer options, jobs and a logger.
//
// A minimal TOML file:
//
//	strategy = "spread"
//	depth = 8
//	policy = "skip"
//
//	[[jobs]]
//	source = "Hand.L"
//	source_joint = "hand.L"
//
// Empty job fields default from their neighbors: target to source,
// source_joint to source, target_joint to source_joint.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	cerrors "cogentcore.org/core/base/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/meshweight/anchor"
	"github.com/katalvlaran/meshweight/mesh"
	"github.com/katalvlaran/meshweight/transfer"
)

// Sentinel errors for configuration.
var (
	ErrUnsupportedFormat = errors.New("config: unsupported format")
	ErrInvalidConfig     = errors.New("config: invalid configuration")
)

// Strategy names.
const (
	StrategySpread      = "spread"
	StrategyBarycentric = "barycentric"
)

// Policy names.
const (
	PolicySkip  = "skip"
	PolicyAbort = "abort"
)

// Job is one configured transfer.
type Job struct {
	Source      string `toml:"source" yaml:"source"`
	Target      string `toml:"target,omitempty" yaml:"target,omitempty"`
	SourceJoint string `toml:"source_joint,omitempty" yaml:"source_joint,omitempty"`
	TargetJoint string `toml:"target_joint,omitempty" yaml:"target_joint,omitempty"`
}

// Config is the on-disk form of a transfer run.
type Config struct {
	Strategy       string  `toml:"strategy" yaml:"strategy"`
	Depth          int     `toml:"depth" yaml:"depth"`
	PlaneTolerance float64 `toml:"plane_tolerance" yaml:"plane_tolerance"`
	FacingOnly     bool    `toml:"facing_only" yaml:"facing_only"`
	// Workers ≤ 0 means one per CPU.
	Workers      int    `toml:"workers" yaml:"workers"`
	Policy       string `toml:"policy" yaml:"policy"`
	SplitIslands bool   `toml:"split_islands" yaml:"split_islands"`
	LogLevel     string `toml:"log_level" yaml:"log_level"`
	Jobs         []Job  `toml:"jobs" yaml:"jobs"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Strategy: StrategySpread,
		Depth:    transfer.DefaultDepth,
		Policy:   PolicySkip,
		LogLevel: "info",
	}
}

// Load reads path, choosing the decoder from its extension
// (.toml, .yaml or .yml).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// LoadOrDefault is Load that logs a failure and falls back to Default.
func LoadOrDefault(path string) *Config {
	c, err := Load(path)
	if cerrors.Log(err) != nil {
		return Default()
	}
	return c
}

// Parse decodes data in the given format ("toml", "yaml" or "yml") over
// Default and validates the result.
func Parse(data []byte, format string) (*Config, error) {
	c := Default()
	var err error
	switch strings.ToLower(format) {
	case "toml":
		err = toml.Unmarshal(data, c)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, c)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	switch c.Strategy {
	case StrategySpread, StrategyBarycentric:
	default:
		return fmt.Errorf("%w: strategy %q", ErrInvalidConfig, c.Strategy)
	}
	if c.Depth < 0 {
		return fmt.Errorf("%w: depth %d", ErrInvalidConfig, c.Depth)
	}
	if c.PlaneTolerance < 0 {
		return fmt.Errorf("%w: plane_tolerance %v", ErrInvalidConfig, c.PlaneTolerance)
	}
	if _, err := c.policy(); err != nil {
		return err
	}
	if _, err := c.level(); err != nil {
		return err
	}
	for i, j := range c.Jobs {
		if j.Source == "" {
			return fmt.Errorf("%w: job %d has no source", ErrInvalidConfig, i)
		}
	}
	return nil
}

func (c *Config) policy() (transfer.FailurePolicy, error) {
	switch c.Policy {
	case PolicySkip, "":
		return transfer.SkipIsland, nil
	case PolicyAbort:
		return transfer.AbortRun, nil
	default:
		return 0, fmt.Errorf("%w: policy %q", ErrInvalidConfig, c.Policy)
	}
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return l, nil
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	l, err := c.level()
	if err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

// Options converts the settings into engine options.
func (c *Config) Options(logger *slog.Logger) ([]transfer.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	p, _ := c.policy()
	opts := []transfer.Option{
		transfer.WithPolicy(p),
		transfer.WithSplitIslands(c.SplitIslands),
		transfer.WithLogger(logger),
	}
	if c.Workers > 0 {
		opts = append(opts, transfer.WithWorkers(c.Workers))
	}
	if c.Strategy == StrategyBarycentric {
		opts = append(opts, transfer.WithBarycentric(transfer.Barycentric{
			PlaneTolerance: c.PlaneTolerance,
			FacingOnly:     c.FacingOnly,
		}))
	} else {
		opts = append(opts, transfer.WithLocalSpread(c.Depth))
	}
	return opts, nil
}

// TransferJobs returns the configured jobs with defaults filled in. With no
// jobs configured it returns one job per group of src, if src is not nil.
func (c *Config) TransferJobs(src mesh.AttributeLister) []transfer.Job {
	if len(c.Jobs) == 0 {
		if src == nil {
			return nil
		}
		return transfer.JobsForGroups(src)
	}
	jobs := make([]transfer.Job, len(c.Jobs))
	for i, j := range c.Jobs {
		target := or(j.Target, j.Source)
		srcJoint := or(j.SourceJoint, j.Source)
		jobs[i] = transfer.Job{
			SourceAttribute: j.Source,
			TargetAttribute: target,
			Anchor:          anchor.Pair{Source: srcJoint, Target: or(j.TargetJoint, srcJoint)},
		}
	}
	return jobs
}

// Encode writes c in the given format.
func (c *Config) Encode(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "toml":
		return toml.NewEncoder(w).Encode(c)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

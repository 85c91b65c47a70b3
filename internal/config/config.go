// Package config loads repet's tuning constants and CLI-level settings
// the way the teacher's configs package loads theirs: viper defaults,
// then an optional YAML file, then REPET_-prefixed environment
// variables. The result seeds repet.Options via repet.FromConfig, so
// any explicit repet.Option a caller passes alongside it still wins.
package config

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/soundsep/repet-go/pkg/repet"
)

// App carries the settings that matter outside the separation
// pipelines themselves: verbosity, output shape, and where to send
// metrics.
type App struct {
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	StatsdAddr   string `mapstructure:"statsd_addr" yaml:"statsd_addr"`
}

// Pipeline mirrors repet.Options field for field so it can be decoded
// straight out of viper, which needs plain structs with mapstructure
// tags rather than the functional-option type repet.Options builds on.
type Pipeline struct {
	CutoffFrequency       float64    `mapstructure:"cutoff_frequency" yaml:"cutoff_frequency"`
	PeriodRangeSec        [2]float64 `mapstructure:"period_range_sec" yaml:"period_range_sec"`
	SegmentLengthSec      float64    `mapstructure:"segment_length_sec" yaml:"segment_length_sec"`
	SegmentStepSec        float64    `mapstructure:"segment_step_sec" yaml:"segment_step_sec"`
	FilterOrder           int        `mapstructure:"filter_order" yaml:"filter_order"`
	SimilarityThreshold   float64    `mapstructure:"similarity_threshold" yaml:"similarity_threshold"`
	SimilarityDistanceSec float64    `mapstructure:"similarity_distance_sec" yaml:"similarity_distance_sec"`
	SimilarityNumber      int        `mapstructure:"similarity_number" yaml:"similarity_number"`
	BufferLengthSec       float64    `mapstructure:"buffer_length_sec" yaml:"buffer_length_sec"`
	MaxWorkers            int        `mapstructure:"max_workers" yaml:"max_workers"`
	Deterministic         bool       `mapstructure:"deterministic" yaml:"deterministic"`
}

// Config is the fully decoded configuration tree.
type Config struct {
	App      App      `mapstructure:"app" yaml:"app"`
	Pipeline Pipeline `mapstructure:"pipeline" yaml:"pipeline"`
}

// Dump marshals cfg back to YAML, the same library the teacher's
// internal/app/config.go uses to parse its own config files directly
// (rather than through viper), so a caller can inspect the fully
// resolved configuration (defaults + file + env) that a run used.
func (c *Config) Dump() ([]byte, error) {
	return yaml.Marshal(c)
}

// ToOptions converts the decoded Pipeline section to a repet.Options,
// for use with repet.FromConfig.
func (p Pipeline) ToOptions() repet.Options {
	return repet.Options{
		CutoffFrequency:       p.CutoffFrequency,
		PeriodRangeSec:        p.PeriodRangeSec,
		SegmentLengthSec:      p.SegmentLengthSec,
		SegmentStepSec:        p.SegmentStepSec,
		FilterOrder:           p.FilterOrder,
		SimilarityThreshold:   p.SimilarityThreshold,
		SimilarityDistanceSec: p.SimilarityDistanceSec,
		SimilarityNumber:      p.SimilarityNumber,
		BufferLengthSec:       p.BufferLengthSec,
		MaxWorkers:            p.MaxWorkers,
		Deterministic:         p.Deterministic,
	}
}

func defaultPipeline() Pipeline {
	d := repet.DefaultOptions()
	return Pipeline{
		CutoffFrequency:       d.CutoffFrequency,
		PeriodRangeSec:        d.PeriodRangeSec,
		SegmentLengthSec:      d.SegmentLengthSec,
		SegmentStepSec:        d.SegmentStepSec,
		FilterOrder:           d.FilterOrder,
		SimilarityThreshold:   d.SimilarityThreshold,
		SimilarityDistanceSec: d.SimilarityDistanceSec,
		SimilarityNumber:      d.SimilarityNumber,
		BufferLengthSec:       d.BufferLengthSec,
		MaxWorkers:            d.MaxWorkers,
		Deterministic:         d.Deterministic,
	}
}

// Load builds a Config from defaults, then (if present) configPath's
// YAML contents, then REPET_-prefixed environment variables.
// configPath == "" skips the file step entirely.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REPET")
	v.AutomaticEnv()

	setDefaults(v, defaultPipeline())

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, p Pipeline) {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.output_format", "wav")
	v.SetDefault("app.statsd_addr", "127.0.0.1:8125")

	v.SetDefault("pipeline.cutoff_frequency", p.CutoffFrequency)
	v.SetDefault("pipeline.period_range_sec", []float64{p.PeriodRangeSec[0], p.PeriodRangeSec[1]})
	v.SetDefault("pipeline.segment_length_sec", p.SegmentLengthSec)
	v.SetDefault("pipeline.segment_step_sec", p.SegmentStepSec)
	v.SetDefault("pipeline.filter_order", p.FilterOrder)
	v.SetDefault("pipeline.similarity_threshold", p.SimilarityThreshold)
	v.SetDefault("pipeline.similarity_distance_sec", p.SimilarityDistanceSec)
	v.SetDefault("pipeline.similarity_number", p.SimilarityNumber)
	v.SetDefault("pipeline.buffer_length_sec", p.BufferLengthSec)
	v.SetDefault("pipeline.max_workers", p.MaxWorkers)
	v.SetDefault("pipeline.deterministic", p.Deterministic)
}

func validate(cfg *Config) error {
	var errs error
	if cfg.Pipeline.PeriodRangeSec[0] <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("pipeline.period_range_sec[0] must be positive"))
	}
	if cfg.Pipeline.PeriodRangeSec[1] < cfg.Pipeline.PeriodRangeSec[0] {
		errs = multierr.Append(errs, fmt.Errorf("pipeline.period_range_sec[1] must be >= period_range_sec[0]"))
	}
	if cfg.Pipeline.FilterOrder <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("pipeline.filter_order must be positive"))
	}
	if cfg.Pipeline.SegmentLengthSec <= 0 || cfg.Pipeline.SegmentStepSec <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("pipeline.segment_length_sec and segment_step_sec must be positive"))
	}
	return errs
}

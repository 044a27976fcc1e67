package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/plotexpr"
)

// defaultSamples is the number of intervals sampled when a config does not
// say.
const defaultSamples = 300

// Config describes a set of functions to plot over one interval.
type Config struct {
	Interval  Interval   `yaml:"interval"`
	Samples   int        `yaml:"samples"`
	Functions []Function `yaml:"functions"`
}

// Interval is the range of x to sample.
type Interval struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

// Function is one entry in a plot.
type Function struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
	// Visible defaults to true when omitted.
	Visible *bool `yaml:"visible"`
}

// Shown reports whether the function should be plotted.
func (f *Function) Shown() bool {
	return f.Visible == nil || *f.Visible
}

// plot is a compiled visible function.
type plot struct {
	name string
	text string
	expr *plotexpr.Expr
}

// readConfig decodes a config and fills in defaults.
func readConfig(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty config")
		}
		return nil, err
	}
	if cfg.Interval == (Interval{}) {
		cfg.Interval = Interval{Lo: -10, Hi: 10}
	}
	if cfg.Samples == 0 {
		cfg.Samples = defaultSamples
	}
	if cfg.Samples < 0 {
		return nil, fmt.Errorf("samples (%d) must be positive", cfg.Samples)
	}
	if !(cfg.Interval.Lo < cfg.Interval.Hi) {
		return nil, fmt.Errorf("interval lo (%g) must be less than hi (%g)", cfg.Interval.Lo, cfg.Interval.Hi)
	}
	return &cfg, nil
}

// loadConfig reads a config from a file.
func loadConfig(name string) (*Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := readConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// compile compiles the visible functions of the config. Functions with no
// name are named by their expressions.
func (cfg *Config) compile() ([]plot, error) {
	var r []plot
	for i := range cfg.Functions {
		f := &cfg.Functions[i]
		if !f.Shown() {
			continue
		}
		name := f.Name
		if name == "" {
			name = plotexpr.Normalize(f.Expression)
		}
		e, err := plotexpr.Compile(f.Expression)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", name, err)
		}
		r = append(r, plot{name: name, text: f.Expression, expr: e})
	}
	return r, nil
}

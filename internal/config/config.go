// Package config loads dq checklist configuration files and turns them
// into the core checklist plus per-table source specs.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/valfrank/SimulatorML/pkg/metrics"
	"github.com/valfrank/SimulatorML/pkg/report"
)

// Source kinds.
const (
	SourceCSV    = "csv"
	SourceSQL    = "sql"
	SourceDir    = "dir"
	SourceObject = "object"
)

// Source describes where one table's data comes from. Kind selects the
// loader and the remaining fields are kind-specific. String fields may
// carry ${VAR} references, expanded from the environment at parse time
// so credentials and DSNs stay out of the file.
type Source struct {
	Kind string `yaml:"kind"`

	// csv and dir
	Path string `yaml:"path,omitempty"`

	// sql
	Driver string `yaml:"driver,omitempty"`
	DSN    string `yaml:"dsn,omitempty"`
	Query  string `yaml:"query,omitempty"`

	// object
	Endpoint  string `yaml:"endpoint,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	UseSSL    bool   `yaml:"use_ssl,omitempty"`
}

// CheckSpec is one checklist entry as written in YAML.
type CheckSpec struct {
	Table  string               `yaml:"table"`
	Metric string               `yaml:"metric"`
	Params map[string]any       `yaml:"params,omitempty"`
	Limits map[string][]float64 `yaml:"limits,omitempty"`
}

// Options holds run-level knobs.
type Options struct {
	Workers int `yaml:"workers,omitempty"`
}

// Config is the top-level model of a dq configuration file.
type Config struct {
	Options Options           `yaml:"options,omitempty"`
	Tables  map[string]Source `yaml:"tables"`
	Checks  []CheckSpec       `yaml:"checks"`
}

// Load reads and parses a configuration file. Schema validation is a
// separate step (ValidateBytes); Load only requires well-formed YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	return cfg, nil
}

// Parse unmarshals raw YAML and expands environment references in the
// source specs.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	for name, src := range cfg.Tables {
		cfg.Tables[name] = src.expand()
	}
	return &cfg, nil
}

func (s Source) expand() Source {
	s.Path = os.ExpandEnv(s.Path)
	s.DSN = os.ExpandEnv(s.DSN)
	s.Endpoint = os.ExpandEnv(s.Endpoint)
	s.Bucket = os.ExpandEnv(s.Bucket)
	s.Prefix = os.ExpandEnv(s.Prefix)
	s.AccessKey = os.ExpandEnv(s.AccessKey)
	s.SecretKey = os.ExpandEnv(s.SecretKey)
	return s
}

// Validate applies the semantic rules the JSON schema cannot express:
// cross-references between checks and tables, metric kind vocabulary,
// and limit bound ordering. The returned slice is empty for a valid
// configuration.
func (c *Config) Validate() []string {
	var errs []string
	if len(c.Tables) == 0 {
		errs = append(errs, "tables: at least one table is required")
	}
	if len(c.Checks) == 0 {
		errs = append(errs, "checks: at least one check is required")
	}

	validKind := make(map[metrics.Kind]bool)
	for _, kind := range metrics.Kinds() {
		validKind[kind] = true
	}

	for i, check := range c.Checks {
		at := fmt.Sprintf("checks[%d]", i)
		if _, ok := c.Tables[check.Table]; !ok {
			errs = append(errs, fmt.Sprintf("%s: table %q is not declared under tables", at, check.Table))
		}
		if !validKind[metrics.Kind(check.Metric)] {
			errs = append(errs, fmt.Sprintf("%s: %q is not a valid metric kind", at, check.Metric))
		}

		keys := make([]string, 0, len(check.Limits))
		for key := range check.Limits {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			bounds := check.Limits[key]
			if len(bounds) != 2 {
				errs = append(errs, fmt.Sprintf("%s: limit %q needs [lower, upper], got %d values", at, key, len(bounds)))
				continue
			}
			if bounds[0] > bounds[1] {
				errs = append(errs, fmt.Sprintf("%s: limit %q has lower bound %g above upper bound %g", at, key, bounds[0], bounds[1]))
			}
		}
	}
	return errs
}

// Checklist builds the core checklist from the parsed specs. Unknown
// kinds and missing metric parameters surface here as build errors.
func (c *Config) Checklist() ([]report.Check, error) {
	checks := make([]report.Check, 0, len(c.Checks))
	for i, spec := range c.Checks {
		metric, err := metrics.Create(metrics.Kind(spec.Metric), spec.Params)
		if err != nil {
			return nil, fmt.Errorf("checks[%d]: %w", i, err)
		}

		limits := make(report.Limits, len(spec.Limits))
		for key, bounds := range spec.Limits {
			if len(bounds) != 2 {
				return nil, fmt.Errorf("checks[%d]: limit %q needs [lower, upper], got %d values", i, key, len(bounds))
			}
			limits[key] = [2]float64{bounds[0], bounds[1]}
		}

		checks = append(checks, report.Check{Table: spec.Table, Metric: metric, Limits: limits})
	}
	return checks, nil
}

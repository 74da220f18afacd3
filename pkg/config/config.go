// Package config loads the optional retain.yaml input configuration: key
// bindings for focus navigation, recursion and layout limits, layout
// rounding and logging. Missing files and missing fields fall back to
// Default.
package config

import (
	stderrors "errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/retain/pkg/core"
	"github.com/go-drift/retain/pkg/errors"
	"github.com/go-drift/retain/pkg/events"
	"github.com/go-drift/retain/pkg/input"
	"github.com/go-drift/retain/pkg/property"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "retain.yaml"

// SchemaVersion is the newest configuration schema this package reads.
// Files declaring another major version are rejected.
const SchemaVersion = "v1.0.0"

// DefaultMaxNavigationSteps bounds a single focus traversal.
const DefaultMaxNavigationSteps = 1024

// Config is the decoded retain.yaml.
type Config struct {
	Version string  `yaml:"version,omitempty"`
	Keys    Keys    `yaml:"keys"`
	Limits  Limits  `yaml:"limits"`
	Layout  Layout  `yaml:"layout"`
	Logging Logging `yaml:"logging"`
}

// Keys maps navigation requests to key gestures such as "Shift+Tab". A
// missing entry takes the default; an empty list disables the request.
type Keys struct {
	Next     []string `yaml:"next"`
	Previous []string `yaml:"previous"`
	First    []string `yaml:"first"`
	Last     []string `yaml:"last"`
	Left     []string `yaml:"left"`
	Right    []string `yaml:"right"`
	Up       []string `yaml:"up"`
	Down     []string `yaml:"down"`
}

// Limits holds the recursion and iteration bounds.
type Limits struct {
	MaxDispatchDepth   int `yaml:"max_dispatch_depth,omitempty"`
	MaxPropertyDepth   int `yaml:"max_property_depth,omitempty"`
	MaxLayoutPasses    int `yaml:"max_layout_passes,omitempty"`
	MaxNavigationSteps int `yaml:"max_navigation_steps,omitempty"`
}

// Layout holds layout settings.
type Layout struct {
	// DPIScale is device pixels per DIP.
	DPIScale float64 `yaml:"dpi_scale,omitempty"`
	// Rounding snaps layout results to device pixels.
	Rounding *bool `yaml:"rounding,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	rounding := false
	return &Config{
		Version: SchemaVersion,
		Keys: Keys{
			Next:     []string{"Tab"},
			Previous: []string{"Shift+Tab"},
			First:    []string{},
			Last:     []string{},
			Left:     []string{"Left"},
			Right:    []string{"Right"},
			Up:       []string{"Up"},
			Down:     []string{"Down"},
		},
		Limits: Limits{
			MaxDispatchDepth:   events.DefaultMaxDispatchDepth,
			MaxPropertyDepth:   property.DefaultMaxDepth,
			MaxLayoutPasses:    core.DefaultMaxLayoutPasses,
			MaxNavigationSteps: DefaultMaxNavigationSteps,
		},
		Layout: Layout{
			DPIScale: 1,
			Rounding: &rounding,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadOptional reads retain.yaml from dir if present. A missing file yields
// Default. The result is validated.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, configError("config.LoadOptional", fmt.Errorf("failed to read %s: %w", FileName, err))
	}
	return Parse(data)
}

// Parse decodes YAML, fills unset fields from Default and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, configError("config.Parse", fmt.Errorf("failed to parse %s: %w", FileName, err))
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if strings.TrimSpace(c.Version) == "" {
		c.Version = def.Version
	}

	keys := []struct{ dst, src *[]string }{
		{&c.Keys.Next, &def.Keys.Next},
		{&c.Keys.Previous, &def.Keys.Previous},
		{&c.Keys.First, &def.Keys.First},
		{&c.Keys.Last, &def.Keys.Last},
		{&c.Keys.Left, &def.Keys.Left},
		{&c.Keys.Right, &def.Keys.Right},
		{&c.Keys.Up, &def.Keys.Up},
		{&c.Keys.Down, &def.Keys.Down},
	}
	for _, k := range keys {
		if *k.dst == nil {
			*k.dst = *k.src
		}
	}

	limits := []struct {
		dst *int
		src int
	}{
		{&c.Limits.MaxDispatchDepth, def.Limits.MaxDispatchDepth},
		{&c.Limits.MaxPropertyDepth, def.Limits.MaxPropertyDepth},
		{&c.Limits.MaxLayoutPasses, def.Limits.MaxLayoutPasses},
		{&c.Limits.MaxNavigationSteps, def.Limits.MaxNavigationSteps},
	}
	for _, l := range limits {
		if *l.dst == 0 {
			*l.dst = l.src
		}
	}

	if c.Layout.DPIScale == 0 {
		c.Layout.DPIScale = def.Layout.DPIScale
	}
	if c.Layout.Rounding == nil {
		c.Layout.Rounding = def.Layout.Rounding
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
}

// Validate checks the schema version, limits, layout values, gestures and
// logging settings.
func (c *Config) Validate() error {
	const op = "config.Validate"
	v := c.Version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return configError(op, fmt.Errorf("version %q is not a semantic version", c.Version))
	}
	if semver.Major(v) != semver.Major(SchemaVersion) {
		return configError(op, fmt.Errorf("version %s is not supported (want %s.x)", c.Version, semver.Major(SchemaVersion)))
	}

	limits := map[string]int{
		"max_dispatch_depth":   c.Limits.MaxDispatchDepth,
		"max_property_depth":   c.Limits.MaxPropertyDepth,
		"max_layout_passes":    c.Limits.MaxLayoutPasses,
		"max_navigation_steps": c.Limits.MaxNavigationSteps,
	}
	for name, n := range limits {
		if n < 1 {
			return configError(op, fmt.Errorf("limits.%s must be positive (got %d)", name, n))
		}
	}

	if s := c.Layout.DPIScale; s <= 0 || math.IsInf(s, 0) || math.IsNaN(s) {
		return configError(op, fmt.Errorf("layout.dpi_scale must be a positive number (got %v)", s))
	}

	if _, err := c.Keys.Gestures(); err != nil {
		return configError(op, err)
	}
	if _, err := c.Logging.level(); err != nil {
		return configError(op, err)
	}
	if _, err := c.Logging.format(); err != nil {
		return configError(op, err)
	}
	return nil
}

// Gestures parses every binding, keyed by request name ("next", "left", ...).
func (k Keys) Gestures() (map[string][]input.KeyGesture, error) {
	named := map[string][]string{
		"next":     k.Next,
		"previous": k.Previous,
		"first":    k.First,
		"last":     k.Last,
		"left":     k.Left,
		"right":    k.Right,
		"up":       k.Up,
		"down":     k.Down,
	}
	out := make(map[string][]input.KeyGesture, len(named))
	for name, specs := range named {
		for _, notation := range specs {
			g, err := input.ParseKeyGesture(notation)
			if err != nil {
				return nil, fmt.Errorf("keys.%s: %w", name, err)
			}
			out[name] = append(out[name], g)
		}
	}
	return out, nil
}

// HostOptions returns the core.Host options for the layout settings and
// limits.
func (c *Config) HostOptions() []core.HostOption {
	return []core.HostOption{
		core.WithScale(c.Layout.DPIScale),
		core.WithLayoutRounding(c.Layout.Rounding != nil && *c.Layout.Rounding),
		core.WithPropertyDepth(c.Limits.MaxPropertyDepth),
		core.WithMaxLayoutPasses(c.Limits.MaxLayoutPasses),
	}
}

// RouterOptions returns the events.Router options for the limits.
func (c *Config) RouterOptions() []events.Option {
	return []events.Option{events.WithMaxDispatchDepth(c.Limits.MaxDispatchDepth)}
}

func configError(op string, err error) error {
	return &errors.EngineError{Op: op, Kind: errors.KindConfig, Err: err}
}

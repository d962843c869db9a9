package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/benoitkugler/okchart/chart"
	"github.com/benoitkugler/okchart/svgdraw"
	"github.com/benoitkugler/okchart/svgicon"

	"gopkg.in/yaml.v3"
)

// AddrEnv overrides the server address of the configuration file.
const AddrEnv = "OKCHART_ADDR"

// Config is the on-disk configuration shape (YAML).
// Absent keys keep their default value.
type Config struct {
	Layout chart.Layout `yaml:"layout"`
	// Style is applied below the style sent with each payload.
	Style *chart.StyleInput `yaml:"style"`
	// ParsePolicy is one of keep (default), drop or abort.
	ParsePolicy string          `yaml:"parse_policy"`
	Logos       svgicon.Options `yaml:"logos"`
	Server      ServerConfig    `yaml:"server"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// MaxPayloadBytes limits the size of posted payloads.
	MaxPayloadBytes int64 `yaml:"max_payload_bytes"`
	// Release switches gin to release mode.
	Release bool `yaml:"release"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Layout:      chart.DefaultLayout(),
		ParsePolicy: chart.KeepInvalid.String(),
		Logos:       svgicon.DefaultOptions,
		Server: ServerConfig{
			Addr:            ":8080",
			AllowedOrigins:  []string{"*"},
			MaxPayloadBytes: 10 << 20,
		},
	}
}

// Load reads, completes and validates the configuration at `path`.
// An empty path means the default configuration.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		var err error
		c, err = LoadUnchecked(path)
		if err != nil {
			return nil, err
		}
	}
	if addr := os.Getenv(AddrEnv); addr != "" {
		c.Server.Addr = addr
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

// LoadUnchecked loads the config over the defaults, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return c, nil
}

func validColor(field string, opt *chart.Value[string]) error {
	if opt == nil {
		return nil
	}
	if _, err := svgdraw.ParseColor(opt.Value); err != nil {
		return fmt.Errorf("style.%s: %w", field, err)
	}
	return nil
}

func validWidth(field string, opt *chart.Value[float64]) error {
	if opt != nil && opt.Value < 0 {
		return fmt.Errorf("style.%s: negative width %g", field, opt.Value)
	}
	return nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if _, err := chart.ParsePolicyFromString(c.ParsePolicy); err != nil {
		return err
	}
	if s := c.Style; s != nil {
		if err := errors.Join(
			validColor("mainColor", s.MainColor),
			validColor("otherColor", s.OtherColor),
			validWidth("mainStrokeWidth", s.MainStrokeWidth),
			validWidth("otherStrokeWidth", s.OtherStrokeWidth),
		); err != nil {
			return err
		}
	}
	if c.Logos.Timeout < 0 || c.Logos.MaxBytes < 0 {
		return errors.New("logos: timeout and max_bytes must be positive")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	return nil
}

// RenderOptions returns the chart options described by the config.
func (c *Config) RenderOptions() (chart.Options, error) {
	policy, err := chart.ParsePolicyFromString(c.ParsePolicy)
	if err != nil {
		return chart.Options{}, err
	}
	return chart.Options{Layout: c.Layout, Policy: policy, Style: c.Style}, nil
}

// Package config loads the map configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"slmap/internal/geom"
)

// Environment variables overriding the file.
const (
	EnvResource = "SLMAP_RESOURCE"
	EnvImage    = "SLMAP_IMAGE"
	EnvCacheDir = "SLMAP_CACHE_DIR"
	EnvRetryMax = "SLMAP_HTTP_RETRY_MAX"
)

type Image struct {
	Path      string `yaml:"path"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Threshold uint8  `yaml:"threshold"`
}

type Grid struct {
	MinX     int `yaml:"min_x"`
	MaxX     int `yaml:"max_x"`
	MinY     int `yaml:"min_y"`
	MaxY     int `yaml:"max_y"`
	CellSize int `yaml:"cell_size"`
}

// Zoom levels are powers of two relative to the fitted view.
type Zoom struct {
	Initial int `yaml:"initial"`
	Min     int `yaml:"min"`
	Max     int `yaml:"max"`
}

type HTTP struct {
	RetryMax int           `yaml:"retry_max"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Config is the complete viewer configuration.
type Config struct {
	Image    Image  `yaml:"image"`
	Grid     Grid   `yaml:"grid"`
	Zoom     Zoom   `yaml:"zoom"`
	Resource string `yaml:"resource"`
	CacheDir string `yaml:"cache_dir"`
	HTTP     HTTP   `yaml:"http"`
}

// Default returns the configuration of the Nautilus map.
func Default() Config {
	return Config{
		Image:    Image{Path: "map.png", Width: 8192, Height: 8192, Threshold: 110},
		Grid:     Grid{MinX: 950, MaxX: 1050, MinY: 950, MaxY: 1050, CellSize: 256},
		Zoom:     Zoom{Initial: 0, Min: -3, Max: 4},
		Resource: "slurls.json",
		HTTP:     HTTP{RetryMax: 3, Timeout: 10 * time.Second},
	}
}

// Load reads the YAML file at path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookupEnv(EnvResource); ok {
		c.Resource = v
	}
	if v, ok := lookupEnv(EnvImage); ok {
		c.Image.Path = v
	}
	if v, ok := lookupEnv(EnvCacheDir); ok {
		c.CacheDir = v
	}
	if v, ok := lookupEnv(EnvRetryMax); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse %s=%q as int: %w", EnvRetryMax, v, err)
		}
		c.HTTP.RetryMax = n
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	v, found := os.LookupEnv(name)
	if !found || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Frame returns the projection frame described by c.
func (c Config) Frame() geom.Frame {
	return geom.Frame{
		Width:  c.Image.Width,
		Height: c.Image.Height,
		Grid: geom.GridBox{
			MinX: c.Grid.MinX,
			MinY: c.Grid.MinY,
			MaxX: c.Grid.MaxX,
			MaxY: c.Grid.MaxY,
		},
		CellSize: c.Grid.CellSize,
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	if _, err := geom.NewProjection(c.Frame()); err != nil {
		errs = append(errs, err)
	}
	if c.Zoom.Min > c.Zoom.Max {
		errs = append(errs, fmt.Errorf("zoom: min %d above max %d", c.Zoom.Min, c.Zoom.Max))
	} else if c.Zoom.Initial < c.Zoom.Min || c.Zoom.Initial > c.Zoom.Max {
		errs = append(errs, fmt.Errorf("zoom: initial %d outside %d..%d", c.Zoom.Initial, c.Zoom.Min, c.Zoom.Max))
	}
	if strings.TrimSpace(c.Resource) == "" {
		errs = append(errs, errors.New("resource must not be empty"))
	}
	if c.HTTP.RetryMax < 0 {
		errs = append(errs, fmt.Errorf("http: retry_max %d is negative", c.HTTP.RetryMax))
	}
	return errors.Join(errs...)
}

// Package config loads runtime settings for the crop server and CLI.
//
// Settings come from, in increasing priority: built-in defaults, an optional
// YAML file, and IMAGE_CROP_* environment variables. Validate clamps every
// value into a usable range rather than failing.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-crop-mcp/internal/imaging"
	"github.com/ironsheep/image-crop-mcp/internal/region"
	"github.com/ironsheep/image-crop-mcp/internal/session"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "IMAGE_CROP_"

// Config holds runtime configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Compression search bounds.
	QualityMin    int `yaml:"quality_min"`
	QualityMax    int `yaml:"quality_max"`
	ScaleStepPct  int `yaml:"scale_step_pct"`
	ScaleFloorPct int `yaml:"scale_floor_pct"`

	// Background is the "#RRGGBB" colour under transparent pixels when
	// writing JPEG.
	Background string `yaml:"background"`

	// HandleTolerance is the corner grab distance in display pixels.
	HandleTolerance int `yaml:"handle_tolerance"`

	// Default viewport for mapping pointer events.
	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`

	// SaveQuality is the JPEG quality used by save.
	SaveQuality int `yaml:"save_quality"`

	// HistoryLimit bounds the undo stack.
	HistoryLimit int `yaml:"history_limit"`

	// PreferencesPath is the language preference file.
	PreferencesPath string `yaml:"preferences_path"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		QualityMin:      imaging.DefaultQualityMin,
		QualityMax:      imaging.DefaultQualityMax,
		ScaleStepPct:    imaging.DefaultScaleStepPct,
		ScaleFloorPct:   imaging.DefaultScaleFloorPct,
		Background:      "#ffffff",
		HandleTolerance: region.DefaultTolerance,
		ViewportWidth:   session.DefaultViewportWidth,
		ViewportHeight:  session.DefaultViewportHeight,
		SaveQuality:     session.DefaultSaveQuality,
		HistoryLimit:    session.DefaultHistoryLimit,
		PreferencesPath: DefaultPreferencesPath(),
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		c.LogLevel = d.LogLevel
	}
	if c.QualityMin < 1 || c.QualityMin > 100 {
		c.QualityMin = d.QualityMin
	}
	if c.QualityMax < 1 || c.QualityMax > 100 {
		c.QualityMax = d.QualityMax
	}
	if c.QualityMin > c.QualityMax {
		c.QualityMin, c.QualityMax = c.QualityMax, c.QualityMin
	}
	if c.ScaleStepPct <= 0 || c.ScaleStepPct >= 100 {
		c.ScaleStepPct = d.ScaleStepPct
	}
	if c.ScaleFloorPct <= 0 || c.ScaleFloorPct >= 100 {
		c.ScaleFloorPct = d.ScaleFloorPct
	}
	if _, err := imaging.ParseHexColor(c.Background); err != nil {
		c.Background = d.Background
	}
	if c.HandleTolerance <= 0 {
		c.HandleTolerance = d.HandleTolerance
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = d.ViewportWidth
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = d.ViewportHeight
	}
	if c.SaveQuality < 1 || c.SaveQuality > 100 {
		c.SaveQuality = d.SaveQuality
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.PreferencesPath == "" {
		c.PreferencesPath = d.PreferencesPath
	}
	return nil
}

// Load reads the YAML file at path, applies environment overrides, and
// validates the result. An empty path or a missing file yields defaults plus
// overrides. On a parse error the defaults are returned with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnv overrides fields from IMAGE_CROP_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
			return
		}
		*dst = n
	}

	str("LOG_LEVEL", &c.LogLevel)
	num("QUALITY_MIN", &c.QualityMin)
	num("QUALITY_MAX", &c.QualityMax)
	num("SCALE_STEP_PCT", &c.ScaleStepPct)
	num("SCALE_FLOOR_PCT", &c.ScaleFloorPct)
	str("BACKGROUND", &c.Background)
	num("HANDLE_TOLERANCE", &c.HandleTolerance)
	num("VIEWPORT_WIDTH", &c.ViewportWidth)
	num("VIEWPORT_HEIGHT", &c.ViewportHeight)
	num("SAVE_QUALITY", &c.SaveQuality)
	num("HISTORY_LIMIT", &c.HistoryLimit)
	str("PREFERENCES_PATH", &c.PreferencesPath)

	return errors.Join(errs...)
}

// ParseLogLevel converts a level name to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// SlogLevel returns the configured level.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := ParseLogLevel(c.LogLevel)
	return lvl
}

// BackgroundColor returns the parsed flatten background, white on error.
func (c *Config) BackgroundColor() color.Color {
	bg, err := imaging.ParseHexColor(c.Background)
	if err != nil {
		return color.White
	}
	return bg
}

// CompressOptions converts the compression fields.
func (c *Config) CompressOptions() imaging.CompressOptions {
	return imaging.CompressOptions{
		QualityMin:    c.QualityMin,
		QualityMax:    c.QualityMax,
		ScaleStepPct:  c.ScaleStepPct,
		ScaleFloorPct: c.ScaleFloorPct,
		Background:    c.BackgroundColor(),
	}
}

// SessionOptions converts the session fields. Codec, cache, and logger are
// left for the caller.
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		Compress:       c.CompressOptions(),
		Tolerance:      c.HandleTolerance,
		ViewportWidth:  c.ViewportWidth,
		ViewportHeight: c.ViewportHeight,
		SaveQuality:    c.SaveQuality,
		HistoryLimit:   c.HistoryLimit,
	}
}

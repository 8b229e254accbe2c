// Package config loads editor settings from defaults, an optional YAML file
// and SMARTEDITOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of an editor session.
type Config struct {
	Display DisplayConfig `yaml:"display"`
	Crop    CropConfig    `yaml:"crop"`
	History HistoryConfig `yaml:"history"`
	Export  ExportConfig  `yaml:"export"`
	Load    LoadConfig    `yaml:"load"`
}

type DisplayConfig struct {
	// MaxWidth and MaxHeight bound the preview bitmap.
	MaxWidth  int           `yaml:"max_width"`
	MaxHeight int           `yaml:"max_height"`
	Debounce  time.Duration `yaml:"debounce"`
}

type CropConfig struct {
	MinSize float64 `yaml:"min_size"`
}

type HistoryConfig struct {
	// Limit of zero keeps every snapshot.
	Limit int `yaml:"limit"`
}

type ExportConfig struct {
	Quality     int           `yaml:"quality"`
	Format      string        `yaml:"format"`
	Dir         string        `yaml:"dir"`
	UploadURL   string        `yaml:"upload_url"`
	UploadToken string        `yaml:"upload_token"`
	Timeout     time.Duration `yaml:"timeout"`
}

type LoadConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	AuthToken string        `yaml:"auth_token"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			MaxWidth:  1280,
			MaxHeight: 960,
			Debounce:  16 * time.Millisecond,
		},
		Crop:    CropConfig{MinSize: 10},
		History: HistoryConfig{Limit: 50},
		Export: ExportConfig{
			Quality: 95,
			Format:  "jpeg",
			Dir:     ".",
			Timeout: 60 * time.Second,
		},
		Load: LoadConfig{Timeout: 30 * time.Second},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"SMARTEDITOR_DISPLAY_MAX_WIDTH", &c.Display.MaxWidth},
		{"SMARTEDITOR_DISPLAY_MAX_HEIGHT", &c.Display.MaxHeight},
		{"SMARTEDITOR_HISTORY_LIMIT", &c.History.Limit},
		{"SMARTEDITOR_EXPORT_QUALITY", &c.Export.Quality},
	}
	for _, e := range ints {
		if v, ok := lookup(e.key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", e.key, err)
			}
			*e.dst = n
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SMARTEDITOR_DISPLAY_DEBOUNCE", &c.Display.Debounce},
		{"SMARTEDITOR_EXPORT_TIMEOUT", &c.Export.Timeout},
		{"SMARTEDITOR_LOAD_TIMEOUT", &c.Load.Timeout},
	}
	for _, e := range durations {
		if v, ok := lookup(e.key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", e.key, err)
			}
			*e.dst = d
		}
	}

	if v, ok := lookup("SMARTEDITOR_CROP_MIN_SIZE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid SMARTEDITOR_CROP_MIN_SIZE: %w", err)
		}
		c.Crop.MinSize = f
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"SMARTEDITOR_EXPORT_FORMAT", &c.Export.Format},
		{"SMARTEDITOR_EXPORT_DIR", &c.Export.Dir},
		{"SMARTEDITOR_UPLOAD_URL", &c.Export.UploadURL},
		{"SMARTEDITOR_UPLOAD_TOKEN", &c.Export.UploadToken},
		{"SMARTEDITOR_AUTH_TOKEN", &c.Load.AuthToken},
	}
	for _, e := range strs {
		if v, ok := lookup(e.key); ok {
			*e.dst = v
		}
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Display.MaxWidth <= 0 || c.Display.MaxHeight <= 0 {
		errs = append(errs, fmt.Errorf("display size must be positive, got %dx%d", c.Display.MaxWidth, c.Display.MaxHeight))
	}
	if c.Display.Debounce < 0 {
		errs = append(errs, errors.New("debounce interval must not be negative"))
	}
	if c.Crop.MinSize < 1 {
		errs = append(errs, fmt.Errorf("crop min size must be at least 1, got %v", c.Crop.MinSize))
	}
	if c.History.Limit < 0 {
		errs = append(errs, errors.New("history limit must not be negative"))
	}
	if c.Export.Quality < 1 || c.Export.Quality > 100 {
		errs = append(errs, fmt.Errorf("export quality must be in [1,100], got %d", c.Export.Quality))
	}
	switch strings.ToLower(c.Export.Format) {
	case "jpeg", "jpg", "png":
	default:
		errs = append(errs, fmt.Errorf("unknown export format %q (valid: jpeg, png)", c.Export.Format))
	}
	if c.Export.Timeout <= 0 {
		errs = append(errs, errors.New("export timeout must be positive"))
	}
	if c.Load.Timeout <= 0 {
		errs = append(errs, errors.New("load timeout must be positive"))
	}
	return errors.Join(errs...)
}

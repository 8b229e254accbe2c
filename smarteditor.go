// Package smarteditor is the image adjustment pipeline of the smart photo
// editor: slider and preset adjustments, rotation and flips, crop, text,
// undo history and export.
package smarteditor

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/codynego/smarteditor/internal/adjust"
	"github.com/codynego/smarteditor/internal/config"
	"github.com/codynego/smarteditor/internal/crop"
	"github.com/codynego/smarteditor/internal/export"
	"github.com/codynego/smarteditor/internal/logging"
	"github.com/codynego/smarteditor/internal/overlay"
	"github.com/codynego/smarteditor/internal/pipeline"
	"github.com/codynego/smarteditor/internal/render"
)

type (
	State         = adjust.State
	PresetName    = adjust.PresetName
	Preset        = adjust.Preset
	Slider        = adjust.Slider
	Direction     = adjust.Direction
	Text          = overlay.Text
	Config        = config.Config
	Session       = pipeline.Processor
	Status        = pipeline.Status
	ExportRequest = export.Request
	ExportResult  = export.Result
)

const (
	PresetNone      PresetName = adjust.PresetNone
	PresetVivid     PresetName = adjust.PresetVivid
	PresetDramatic  PresetName = adjust.PresetDramatic
	PresetVintage   PresetName = adjust.PresetVintage
	PresetBW        PresetName = adjust.PresetBW
	PresetPortrait  PresetName = adjust.PresetPortrait
	PresetCinematic PresetName = adjust.PresetCinematic
	PresetWarm      PresetName = adjust.PresetWarm
	PresetCool      PresetName = adjust.PresetCool
	PresetRetro     PresetName = adjust.PresetRetro
	PresetFade      PresetName = adjust.PresetFade
)

const (
	RotateRight Direction = adjust.RotateRight
	RotateLeft  Direction = adjust.RotateLeft
)

type Options struct {
	State State
	// Crop is in pixels of the input, applied before rotation and flips.
	Crop    image.Rectangle
	Text    *Text
	Quality int
}

func DefaultOptions() Options {
	return Options{
		State:   adjust.Default(),
		Quality: export.DefaultQuality,
	}
}

// DefaultState returns the neutral adjustment state.
func DefaultState() State { return adjust.Default() }

func DefaultConfig() *Config { return config.Default() }

// LoadConfig reads a YAML config file and SMARTEDITOR_* overrides.
func LoadConfig(path string) (*Config, error) { return config.Load(path) }

// NewSession starts an interactive editing session on location, a file path
// or http(s) URL. Call Load on the result before editing.
func NewSession(location string, cfg *Config) *Session {
	return pipeline.New(location, cfg)
}

func Process(inputPath, outputPath string, opts Options) error {
	return pipeline.Process(inputPath, outputPath, pipeline.Options{
		State:   opts.State,
		Crop:    opts.Crop,
		Text:    opts.Text,
		Quality: opts.Quality,
	})
}

// ProcessImage applies opts to img in memory.
func ProcessImage(img image.Image, opts Options) (image.Image, error) {
	src := imaging.Clone(img)
	if !opts.Crop.Empty() {
		var err error
		if src, err = crop.Apply(src, opts.Crop); err != nil {
			return nil, fmt.Errorf("crop: %w", err)
		}
	}
	out, err := render.NewEngine().Render(src, opts.State.Clamp(), render.Options{Text: opts.Text})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ParsePreset resolves a preset name or alias.
func ParsePreset(s string) (PresetName, error) { return adjust.ParsePreset(s) }

func Presets() []Preset { return adjust.Presets() }
func Sliders() []Slider { return adjust.Sliders() }

// LoadRecipe reads adjustments saved with SaveRecipe.
func LoadRecipe(path string) (State, error) { return adjust.LoadRecipe(path) }
func SaveRecipe(path string, s State) error { return adjust.SaveRecipe(path, s) }

// SetLogger routes the editor's log output to l. Logging is silent until a
// logger is set.
func SetLogger(l *slog.Logger) { logging.Set(l) }

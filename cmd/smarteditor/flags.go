package main

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/codynego/smarteditor/internal/adjust"
	"github.com/codynego/smarteditor/internal/overlay"
	"github.com/codynego/smarteditor/internal/pipeline"
)

// registerEditFlags adds one flag per slider plus the preset, transform,
// crop, text and recipe flags.
func registerEditFlags(fs *pflag.FlagSet) {
	for _, sl := range adjust.Sliders() {
		usage := fmt.Sprintf("%s [%g, %g], neutral %g", sl.Name, sl.Min, sl.Max, sl.Neutral)
		if sl.Unit != "" {
			usage += " (" + sl.Unit + ")"
		}
		fs.Float64(sl.Name, sl.Neutral, usage)
	}
	fs.StringP("preset", "p", "", "Creative preset: "+presetNames())
	fs.IntP("rotate", "r", 0, "Clockwise rotation in degrees, a multiple of 90")
	fs.Bool("flip-h", false, "Flip horizontally")
	fs.Bool("flip-v", false, "Flip vertically")
	fs.String("crop", "", "Crop rectangle x,y,w,h in input pixels")
	fs.String("text", "", "Text to draw")
	fs.Float64("text-x", 0, "Text centre x in output pixels")
	fs.Float64("text-y", 0, "Text baseline y in output pixels")
	fs.String("text-color", "#ffffff", "Text colour as #rrggbb")
	fs.Float64("text-size", overlay.DefaultFontSize, "Text size in output pixels")
	fs.Int("quality", 0, "JPEG quality (1-100), defaults to the config value")
	fs.String("recipe", "", "YAML recipe to start from")
	fs.String("save-recipe", "", "Write the resulting adjustments to this YAML file")
}

func presetNames() string {
	var names []string
	for _, p := range adjust.Presets() {
		names = append(names, string(p.Name))
	}
	return strings.Join(names, ", ")
}

// buildOptions turns the edit flags into pipeline options. A recipe is the
// base, the preset is merged over it and explicitly set sliders win.
func buildOptions(fs *pflag.FlagSet) (pipeline.Options, error) {
	opts := pipeline.Options{State: adjust.Default(), Config: cfg}

	if path, _ := fs.GetString("recipe"); path != "" {
		st, err := adjust.LoadRecipe(path)
		if err != nil {
			return opts, err
		}
		opts.State = st
	}

	if name, _ := fs.GetString("preset"); name != "" {
		preset, err := adjust.ParsePreset(name)
		if err != nil {
			return opts, err
		}
		if opts.State, err = opts.State.ApplyPreset(preset); err != nil {
			return opts, err
		}
	}

	for _, sl := range adjust.Sliders() {
		if !fs.Changed(sl.Name) {
			continue
		}
		v, _ := fs.GetFloat64(sl.Name)
		st, err := opts.State.With(sl.Name, v)
		if err != nil {
			return opts, err
		}
		opts.State = st
	}

	if fs.Changed("rotate") {
		deg, _ := fs.GetInt("rotate")
		if deg%90 != 0 {
			return opts, fmt.Errorf("rotation must be a multiple of 90, got %d", deg)
		}
		opts.State.Rotation = deg
	}
	if v, _ := fs.GetBool("flip-h"); v {
		opts.State.FlipH = true
	}
	if v, _ := fs.GetBool("flip-v"); v {
		opts.State.FlipV = true
	}
	opts.State = opts.State.Clamp()

	if s, _ := fs.GetString("crop"); s != "" {
		r, err := parseCrop(s)
		if err != nil {
			return opts, err
		}
		opts.Crop = r
	}

	if content, _ := fs.GetString("text"); content != "" {
		hex, _ := fs.GetString("text-color")
		c, err := overlay.ParseHexColor(hex)
		if err != nil {
			return opts, err
		}
		x, _ := fs.GetFloat64("text-x")
		y, _ := fs.GetFloat64("text-y")
		size, _ := fs.GetFloat64("text-size")
		opts.Text = &overlay.Text{Content: content, X: x, Y: y, Color: c, FontSize: size}
	}

	opts.Quality, _ = fs.GetInt("quality")
	return opts, nil
}

// parseCrop reads x,y,w,h.
func parseCrop(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("invalid crop %q (want x,y,w,h)", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid crop %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("invalid crop %q: width and height must be positive", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

func saveRecipe(fs *pflag.FlagSet, opts pipeline.Options) error {
	path, _ := fs.GetString("save-recipe")
	if path == "" {
		return nil
	}
	if err := adjust.SaveRecipe(path, opts.State); err != nil {
		return err
	}
	fmt.Printf("Recipe: %s\n", path)
	return nil
}

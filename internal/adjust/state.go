// Package adjust owns the editor's adjustment state: slider values, the
// transform and the active creative preset.
package adjust

import "math"

// State is the complete, serializable set of adjustments applied to the
// working bitmap. It is a plain value: copying it copies everything.
type State struct {
	Brightness  float64 `yaml:"brightness"`
	Contrast    float64 `yaml:"contrast"`
	Saturation  float64 `yaml:"saturation"`
	Vibrance    float64 `yaml:"vibrance"`
	Highlights  float64 `yaml:"highlights"`
	Shadows     float64 `yaml:"shadows"`
	Temperature float64 `yaml:"temperature"`
	Tint        float64 `yaml:"tint"`
	Exposure    float64 `yaml:"exposure"`
	Gamma       float64 `yaml:"gamma"`
	Clarity     float64 `yaml:"clarity"`
	Vignette    float64 `yaml:"vignette"`
	Hue         float64 `yaml:"hue"`
	Blur        float64 `yaml:"blur"`
	Sepia       float64 `yaml:"sepia"`
	Grayscale   float64 `yaml:"grayscale"`
	Grain       float64 `yaml:"grain"`

	// Rotation is clockwise degrees, always one of 0, 90, 180, 270.
	Rotation int        `yaml:"rotation"`
	FlipH    bool       `yaml:"flip_h"`
	FlipV    bool       `yaml:"flip_v"`
	Preset   PresetName `yaml:"preset"`
}

// Default returns the state in which every adjustment is a no-op.
func Default() State {
	var s State
	for _, sl := range sliders {
		*sl.field(&s) = sl.Neutral
	}
	s.Preset = PresetNone
	return s
}

// Clamp returns a copy of s with every slider inside its range and the
// rotation normalized.
func (s State) Clamp() State {
	for _, sl := range sliders {
		p := sl.field(&s)
		*p = sl.clamp(*p)
	}
	s.Rotation = normalizeRotation(int(math.Round(float64(s.Rotation)/90)) * 90)
	if s.Preset == "" {
		s.Preset = PresetNone
	}
	return s
}

// IsNeutral reports whether rendering s leaves the source untouched.
func (s State) IsNeutral() bool {
	n := Default()
	n.Preset = s.Preset
	return s == n && (s.Preset == PresetNone || len(presetByName[s.Preset].Look) == 0)
}

// NeedsCorrection reports whether the per-pixel correction stage has work.
func (s State) NeedsCorrection() bool {
	return s.Highlights != 0 || s.Shadows != 0 || s.Vibrance != 0
}

// Transformed reports whether s rotates or flips the image.
func (s State) Transformed() bool {
	return s.Rotation != 0 || s.FlipH || s.FlipV
}

func normalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

package adjust

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPreset = errors.New("unknown preset")

type PresetName string

const (
	PresetNone      PresetName = "none"
	PresetVivid     PresetName = "vivid"
	PresetDramatic  PresetName = "dramatic"
	PresetVintage   PresetName = "vintage"
	PresetBW        PresetName = "bw"
	PresetPortrait  PresetName = "portrait"
	PresetCinematic PresetName = "cinematic"
	PresetWarm      PresetName = "warm"
	PresetCool      PresetName = "cool"
	PresetRetro     PresetName = "retro"
	PresetFade      PresetName = "fade"
)

// LookStep is one filter function of a preset's preview look, in CSS filter
// units: percent for brightness, contrast, saturate, sepia and grayscale,
// degrees for hue-rotate.
type LookStep struct {
	Op     string
	Amount float64
}

// Preset is a named bundle of slider values. Values only lists the sliders
// the preset touches; the others keep their current value.
type Preset struct {
	Name   PresetName
	Label  string
	Values map[string]float64
	Look   []LookStep
}

var presets = []Preset{
	{Name: PresetNone, Label: "Original"},
	{
		Name:   PresetVivid,
		Label:  "Vivid",
		Values: map[string]float64{"brightness": 110, "contrast": 115, "saturation": 130, "temperature": 5},
	},
	{
		Name:   PresetDramatic,
		Label:  "Dramatic",
		Values: map[string]float64{"brightness": 95, "contrast": 140, "saturation": 120, "shadows": -20, "highlights": -10},
	},
	{
		Name:   PresetVintage,
		Label:  "Vintage",
		Values: map[string]float64{"brightness": 105, "sepia": 40, "saturation": 80, "temperature": 15, "vignette": 30},
		Look:   []LookStep{{"contrast", 95}},
	},
	{
		Name:   PresetBW,
		Label:  "B&W",
		Values: map[string]float64{"grayscale": 100, "contrast": 120, "brightness": 95},
	},
	{
		Name:   PresetPortrait,
		Label:  "Portrait",
		Values: map[string]float64{"brightness": 105, "highlights": -15, "shadows": 10, "temperature": 8, "saturation": 110},
	},
	{
		Name:   PresetCinematic,
		Label:  "Cinematic",
		Values: map[string]float64{"contrast": 125, "saturation": 90, "temperature": -8, "vignette": 25, "shadows": -15},
		Look:   []LookStep{{"hue-rotate", -5}},
	},
	{
		Name:   PresetWarm,
		Label:  "Warm",
		Values: map[string]float64{"temperature": 30, "saturation": 105, "brightness": 103},
		Look:   []LookStep{{"sepia", 10}},
	},
	{
		Name:   PresetCool,
		Label:  "Cool",
		Values: map[string]float64{"temperature": -30, "tint": -5, "saturation": 95},
		Look:   []LookStep{{"hue-rotate", 10}},
	},
	{
		Name:   PresetRetro,
		Label:  "Retro",
		Values: map[string]float64{"contrast": 90, "saturation": 85, "sepia": 25, "vignette": 35, "grain": 20},
		Look:   []LookStep{{"hue-rotate", -10}, {"brightness", 105}},
	},
	{
		Name:   PresetFade,
		Label:  "Fade",
		Values: map[string]float64{"contrast": 80, "brightness": 110, "saturation": 85, "shadows": 20},
		Look:   []LookStep{{"grayscale", 10}},
	},
}

var presetByName = func() map[PresetName]Preset {
	m := make(map[PresetName]Preset, len(presets))
	for _, p := range presets {
		m[p.Name] = p
	}
	return m
}()

// Presets returns the built-in presets in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// ParsePreset resolves a preset by name, case-insensitively. "b&w" and
// "original" are accepted as aliases.
func ParsePreset(s string) (PresetName, error) {
	name := PresetName(strings.ToLower(strings.TrimSpace(s)))
	switch name {
	case "", "original":
		return PresetNone, nil
	case "b&w", "blackwhite":
		return PresetBW, nil
	}
	if _, ok := presetByName[name]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPreset, s)
	}
	return name, nil
}

// GetPreset returns the preset with the given name.
func GetPreset(name PresetName) (Preset, error) {
	p, ok := presetByName[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return p, nil
}

// ApplyPreset merges the preset's values into s and marks it active.
func (s State) ApplyPreset(name PresetName) (State, error) {
	p, err := GetPreset(name)
	if err != nil {
		return s, err
	}
	out := s
	for slider, v := range p.Values {
		if out, err = out.With(slider, v); err != nil {
			return s, err
		}
	}
	out.Preset = name
	return out, nil
}

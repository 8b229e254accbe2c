package adjust

import (
	"errors"
	"fmt"
	"math"
)

var ErrUnknownSlider = errors.New("unknown slider")

// Slider describes one bounded adjustment.
type Slider struct {
	Name    string
	Min     float64
	Max     float64
	Neutral float64
	Unit    string

	field func(*State) *float64
}

func (sl Slider) clamp(v float64) float64 {
	if math.IsNaN(v) {
		return sl.Neutral
	}
	return math.Max(sl.Min, math.Min(sl.Max, v))
}

var sliders = []Slider{
	{"brightness", 0, 200, 100, "%", func(s *State) *float64 { return &s.Brightness }},
	{"contrast", 0, 200, 100, "%", func(s *State) *float64 { return &s.Contrast }},
	{"saturation", 0, 200, 100, "%", func(s *State) *float64 { return &s.Saturation }},
	{"vibrance", -100, 100, 0, "", func(s *State) *float64 { return &s.Vibrance }},
	{"highlights", -100, 100, 0, "", func(s *State) *float64 { return &s.Highlights }},
	{"shadows", -100, 100, 0, "", func(s *State) *float64 { return &s.Shadows }},
	{"temperature", -100, 100, 0, "", func(s *State) *float64 { return &s.Temperature }},
	{"tint", -100, 100, 0, "", func(s *State) *float64 { return &s.Tint }},
	{"exposure", -100, 100, 0, "", func(s *State) *float64 { return &s.Exposure }},
	{"gamma", 0.1, 3, 1, "", func(s *State) *float64 { return &s.Gamma }},
	{"clarity", 0, 100, 0, "", func(s *State) *float64 { return &s.Clarity }},
	{"vignette", 0, 100, 0, "%", func(s *State) *float64 { return &s.Vignette }},
	{"hue", -180, 180, 0, "deg", func(s *State) *float64 { return &s.Hue }},
	{"blur", 0, 20, 0, "px", func(s *State) *float64 { return &s.Blur }},
	{"sepia", 0, 100, 0, "%", func(s *State) *float64 { return &s.Sepia }},
	{"grayscale", 0, 100, 0, "%", func(s *State) *float64 { return &s.Grayscale }},
	{"grain", 0, 100, 0, "%", func(s *State) *float64 { return &s.Grain }},
}

// warmth is the name the gallery editor used for temperature.
var sliderAliases = map[string]string{
	"warmth":   "temperature",
	"saturate": "saturation",
}

// Sliders returns the slider table in display order.
func Sliders() []Slider {
	out := make([]Slider, len(sliders))
	copy(out, sliders)
	return out
}

// Lookup returns the slider with the given name or alias.
func Lookup(name string) (Slider, error) {
	if alias, ok := sliderAliases[name]; ok {
		name = alias
	}
	for _, sl := range sliders {
		if sl.Name == name {
			return sl, nil
		}
	}
	return Slider{}, fmt.Errorf("%w: %s", ErrUnknownSlider, name)
}

// Get returns the value of the named slider in s.
func (s State) Get(name string) (float64, error) {
	sl, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	return *sl.field(&s), nil
}

// With returns a copy of s with the named slider set to v, clamped.
func (s State) With(name string, v float64) (State, error) {
	sl, err := Lookup(name)
	if err != nil {
		return s, err
	}
	*sl.field(&s) = sl.clamp(v)
	return s, nil
}

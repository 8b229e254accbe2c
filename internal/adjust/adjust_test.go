package adjust

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestDefaultIsNeutral(t *testing.T) {
	s := Default()
	if !s.IsNeutral() {
		t.Error("Default() should be neutral")
	}
	if s.Brightness != 100 || s.Contrast != 100 || s.Saturation != 100 {
		t.Errorf("Default() percent sliders = %v/%v/%v, want 100", s.Brightness, s.Contrast, s.Saturation)
	}
	if s.Gamma != 1 {
		t.Errorf("Default().Gamma = %v, want 1", s.Gamma)
	}
	if s.Preset != PresetNone {
		t.Errorf("Default().Preset = %q, want %q", s.Preset, PresetNone)
	}
}

func TestSetSliderClamps(t *testing.T) {
	tests := []struct {
		name   string
		slider string
		value  float64
		want   float64
	}{
		{"brightness above max", "brightness", 500, 200},
		{"brightness below min", "brightness", -20, 0},
		{"brightness in range", "brightness", 150, 150},
		{"gamma below min", "gamma", 0, 0.1},
		{"hue above max", "hue", 720, 180},
		{"NaN falls back to neutral", "contrast", math.NaN(), 100},
		{"warmth alias", "warmth", 250, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			if err := c.SetSlider(tt.slider, tt.value); err != nil {
				t.Fatalf("SetSlider() error = %v", err)
			}
			got, err := c.State().Get(tt.slider)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("%s = %v, want %v", tt.slider, got, tt.want)
			}
		})
	}
}

func TestSetSliderUnknown(t *testing.T) {
	c := NewController()
	err := c.SetSlider("sharpness", 10)
	if !errors.Is(err, ErrUnknownSlider) {
		t.Errorf("SetSlider() error = %v, want ErrUnknownSlider", err)
	}
}

func TestApplyPresetIdempotent(t *testing.T) {
	for _, p := range Presets() {
		t.Run(string(p.Name), func(t *testing.T) {
			c := NewController()
			_ = c.SetSlider("blur", 3)
			if err := c.ApplyPreset(p.Name); err != nil {
				t.Fatalf("ApplyPreset() error = %v", err)
			}
			once := c.State()
			if err := c.ApplyPreset(p.Name); err != nil {
				t.Fatalf("ApplyPreset() error = %v", err)
			}
			if c.State() != once {
				t.Errorf("second ApplyPreset changed state: %+v != %+v", c.State(), once)
			}
		})
	}
}

func TestApplyPresetIsAdditive(t *testing.T) {
	c := NewController()
	_ = c.SetSlider("blur", 4)
	_ = c.SetSlider("brightness", 130)
	if err := c.ApplyPreset(PresetBW); err != nil {
		t.Fatalf("ApplyPreset() error = %v", err)
	}
	s := c.State()
	if s.Blur != 4 {
		t.Errorf("Blur = %v, want untouched 4", s.Blur)
	}
	if s.Brightness != 95 || s.Grayscale != 100 || s.Contrast != 120 {
		t.Errorf("preset fields not applied: %+v", s)
	}
	if s.Preset != PresetBW {
		t.Errorf("Preset = %q, want %q", s.Preset, PresetBW)
	}
}

func TestApplyPresetUnknown(t *testing.T) {
	c := NewController()
	before := c.State()
	if err := c.ApplyPreset("lomo"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("ApplyPreset() error = %v, want ErrUnknownPreset", err)
	}
	if c.State() != before {
		t.Error("failed ApplyPreset changed state")
	}
}

func TestParsePreset(t *testing.T) {
	tests := []struct {
		in      string
		want    PresetName
		wantErr bool
	}{
		{"Vivid", PresetVivid, false},
		{"b&w", PresetBW, false},
		{"", PresetNone, false},
		{"original", PresetNone, false},
		{" fade ", PresetFade, false},
		{"lomo", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePreset(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePreset(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePreset(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPresetsCoverEnumeration(t *testing.T) {
	want := []PresetName{
		PresetNone, PresetVivid, PresetDramatic, PresetVintage, PresetBW, PresetPortrait,
		PresetCinematic, PresetWarm, PresetCool, PresetRetro, PresetFade,
	}
	got := Presets()
	if len(got) != len(want) {
		t.Fatalf("Presets() returned %d presets, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("Presets()[%d] = %q, want %q", i, got[i].Name, name)
		}
		for slider := range got[i].Values {
			if _, err := Lookup(slider); err != nil {
				t.Errorf("preset %q references %v", name, err)
			}
		}
	}
}

func TestRotateClosure(t *testing.T) {
	for _, d := range []Direction{RotateRight, RotateLeft} {
		c := NewController()
		seen := map[int]bool{}
		for i := 0; i < 4; i++ {
			c.Rotate(d)
			r := c.State().Rotation
			if r < 0 || r >= 360 || r%90 != 0 {
				t.Fatalf("rotation %d out of [0,360)", r)
			}
			seen[r] = true
		}
		if c.State().Rotation != 0 {
			t.Errorf("four rotations = %d, want 0", c.State().Rotation)
		}
		if len(seen) != 4 {
			t.Errorf("rotations visited %v, want 4 distinct values", seen)
		}
	}

	c := NewController()
	c.Rotate(RotateLeft)
	if c.State().Rotation != 270 {
		t.Errorf("left rotation = %d, want 270", c.State().Rotation)
	}
}

func TestFlipInvolution(t *testing.T) {
	c := NewController()
	c.FlipHorizontal()
	c.FlipVertical()
	if !c.State().FlipH || !c.State().FlipV {
		t.Fatal("flips not set")
	}
	c.FlipHorizontal()
	c.FlipVertical()
	if c.State() != Default() {
		t.Errorf("double flip = %+v, want default", c.State())
	}
}

func TestResetAll(t *testing.T) {
	c := NewController()
	_ = c.ApplyPreset(PresetRetro)
	c.Rotate(RotateRight)
	c.FlipHorizontal()
	c.ResetAll()
	if c.State() != Default() {
		t.Errorf("ResetAll() = %+v, want default", c.State())
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	c := NewController()
	var got []State
	c.Subscribe(func(s State) { got = append(got, s) })

	_ = c.SetSlider("contrast", 120)
	c.Rotate(RotateRight)
	_ = c.SetSlider("nope", 1)

	if len(got) != 2 {
		t.Fatalf("listener called %d times, want 2", len(got))
	}
	if got[1].Contrast != 120 || got[1].Rotation != 90 {
		t.Errorf("last published state = %+v", got[1])
	}
}

func TestClampNormalizesRotation(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 0}, {90, 90}, {360, 0}, {-90, 270}, {450, 90}, {100, 90}, {-720, 0},
	}
	for _, tt := range tests {
		s := Default()
		s.Rotation = tt.in
		if got := s.Clamp().Rotation; got != tt.want {
			t.Errorf("Clamp() rotation %d = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRecipeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe.yaml")
	s, _ := Default().ApplyPreset(PresetCinematic)
	s.Rotation = 180
	s.FlipV = true

	if err := SaveRecipe(path, s); err != nil {
		t.Fatalf("SaveRecipe() error = %v", err)
	}
	got, err := LoadRecipe(path)
	if err != nil {
		t.Fatalf("LoadRecipe() error = %v", err)
	}
	if got != s {
		t.Errorf("LoadRecipe() = %+v, want %+v", got, s)
	}
}

func TestParseRecipePartialAndClamped(t *testing.T) {
	s, err := ParseRecipe([]byte("brightness: 400\nrotation: -90\npreset: warm\n"))
	if err != nil {
		t.Fatalf("ParseRecipe() error = %v", err)
	}
	if s.Brightness != 200 {
		t.Errorf("Brightness = %v, want 200", s.Brightness)
	}
	if s.Rotation != 270 {
		t.Errorf("Rotation = %v, want 270", s.Rotation)
	}
	if s.Contrast != 100 || s.Gamma != 1 {
		t.Errorf("missing fields should stay neutral: %+v", s)
	}
	if s.Preset != PresetWarm {
		t.Errorf("Preset = %q, want %q", s.Preset, PresetWarm)
	}

	if _, err := ParseRecipe([]byte("preset: lomo\n")); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("ParseRecipe() error = %v, want ErrUnknownPreset", err)
	}
}

func TestNeedsCorrection(t *testing.T) {
	s := Default()
	if s.NeedsCorrection() {
		t.Error("default state should not need correction")
	}
	s.Vibrance = 10
	if !s.NeedsCorrection() {
		t.Error("vibrance should need correction")
	}
}

package main

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/codynego/smarteditor/internal/adjust"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerEditFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return fs
}

func TestBuildOptionsDefaults(t *testing.T) {
	opts, err := buildOptions(newFlags(t))
	if err != nil {
		t.Fatalf("buildOptions() error = %v", err)
	}
	if opts.State != adjust.Default() {
		t.Errorf("State = %+v, want default", opts.State)
	}
	if !opts.Crop.Empty() || opts.Text != nil {
		t.Error("no crop or text expected")
	}
}

func TestBuildOptionsSliderOverridesPreset(t *testing.T) {
	opts, err := buildOptions(newFlags(t, "--preset", "vivid", "--contrast", "150", "--rotate=-90", "--flip-h"))
	if err != nil {
		t.Fatalf("buildOptions() error = %v", err)
	}
	st := opts.State
	if st.Preset != adjust.PresetVivid {
		t.Errorf("Preset = %v, want vivid", st.Preset)
	}
	if st.Contrast != 150 {
		t.Errorf("Contrast = %v, want explicit 150 over the preset", st.Contrast)
	}
	if st.Saturation != 130 {
		t.Errorf("Saturation = %v, want preset 130", st.Saturation)
	}
	if st.Rotation != 270 || !st.FlipH {
		t.Errorf("transform = %d %v, want 270 flipped", st.Rotation, st.FlipH)
	}
}

func TestBuildOptionsRecipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "look.yaml")
	base := adjust.Default()
	base.Sepia = 40
	if err := adjust.SaveRecipe(path, base); err != nil {
		t.Fatal(err)
	}
	opts, err := buildOptions(newFlags(t, "--recipe", path, "--brightness", "120"))
	if err != nil {
		t.Fatalf("buildOptions() error = %v", err)
	}
	if opts.State.Sepia != 40 || opts.State.Brightness != 120 {
		t.Errorf("State = %+v", opts.State)
	}
}

func TestBuildOptionsTextAndCrop(t *testing.T) {
	opts, err := buildOptions(newFlags(t, "--text", "hi", "--text-color", "#ff0000", "--crop", "10,20,30,40"))
	if err != nil {
		t.Fatalf("buildOptions() error = %v", err)
	}
	if opts.Text == nil || opts.Text.Content != "hi" || opts.Text.Color != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("Text = %+v", opts.Text)
	}
	if opts.Crop != image.Rect(10, 20, 40, 60) {
		t.Errorf("Crop = %v", opts.Crop)
	}
}

func TestBuildOptionsErrors(t *testing.T) {
	tests := [][]string{
		{"--preset", "sparkly"},
		{"--rotate", "45"},
		{"--crop", "1,2,3"},
		{"--text", "x", "--text-color", "red"},
	}
	for _, args := range tests {
		if _, err := buildOptions(newFlags(t, args...)); err == nil {
			t.Errorf("buildOptions(%v) should fail", args)
		}
	}
}

func TestParseCrop(t *testing.T) {
	tests := []struct {
		in      string
		want    image.Rectangle
		wantErr bool
	}{
		{"0,0,10,10", image.Rect(0, 0, 10, 10), false},
		{" 5, 6, 7, 8 ", image.Rect(5, 6, 12, 14), false},
		{"1,2,0,4", image.Rectangle{}, true},
		{"a,b,c,d", image.Rectangle{}, true},
	}
	for _, tt := range tests {
		got, err := parseCrop(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseCrop(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestBatchOutputName(t *testing.T) {
	tests := map[string]string{
		"a.jpg":  "a_vivid.jpg",
		"b.PNG":  "b_vivid.png",
		"c.webp": "c_vivid.jpg",
	}
	for in, want := range tests {
		if got := batchOutputName(in, "vivid"); got != want {
			t.Errorf("batchOutputName(%q) = %q, want %q", in, got, want)
		}
	}
}

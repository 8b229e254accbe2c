// Package crop implements the interactive crop selection and the mapping
// from display coordinates onto the working bitmap.
package crop

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultMinSize is the smallest selection, in display pixels, that counts as
// a crop rather than a stray click.
const DefaultMinSize = 10.0

var ErrEmptyCrop = errors.New("crop rectangle is empty")

// Area is a selection in display coordinates.
type Area struct {
	X, Y, Width, Height float64
}

// Empty reports whether a has no area.
func (a Area) Empty() bool {
	return a.Width <= 0 || a.Height <= 0
}

// Rect rounds a to integer display pixels.
func (a Area) Rect() image.Rectangle {
	return image.Rect(
		int(math.Round(a.X)), int(math.Round(a.Y)),
		int(math.Round(a.X+a.Width)), int(math.Round(a.Y+a.Height)),
	)
}

// ToSource maps a from a display surface of size display onto a source of
// size source, scaling each axis independently.
func (a Area) ToSource(display, source image.Point) image.Rectangle {
	if display.X <= 0 || display.Y <= 0 {
		return image.Rectangle{}
	}
	sx := float64(source.X) / float64(display.X)
	sy := float64(source.Y) / float64(display.Y)
	r := image.Rect(
		int(math.Round(a.X*sx)), int(math.Round(a.Y*sy)),
		int(math.Round((a.X+a.Width)*sx)), int(math.Round((a.Y+a.Height)*sy)),
	)
	return r.Intersect(image.Rectangle{Max: source})
}

type State int

const (
	Idle State = iota
	Selecting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Tool tracks a drag selection. The point where the drag began stays the
// anchor; dragging past it swaps which corner the anchor is, so the area
// never has negative size.
type Tool struct {
	MinSize float64

	state  State
	bounds image.Point
	anchor [2]float64
	area   Area
}

// NewTool creates a Tool for a display surface of the given size.
func NewTool(width, height int) *Tool {
	t := &Tool{MinSize: DefaultMinSize}
	t.Reset(width, height)
	return t
}

// Reset selects the whole surface and returns to Idle.
func (t *Tool) Reset(width, height int) {
	t.bounds = image.Pt(max(width, 0), max(height, 0))
	t.state = Idle
	t.area = t.full()
}

func (t *Tool) full() Area {
	return Area{Width: float64(t.bounds.X), Height: float64(t.bounds.Y)}
}

func (t *Tool) State() State { return t.state }
func (t *Tool) Area() Area   { return t.area }

// Begin starts a selection at (x, y).
func (t *Tool) Begin(x, y float64) {
	x, y = t.clamp(x, y)
	t.state = Selecting
	t.anchor = [2]float64{x, y}
	t.area = Area{X: x, Y: y}
}

// Move grows the selection towards (x, y). It is ignored when Idle.
func (t *Tool) Move(x, y float64) {
	if t.state != Selecting {
		return
	}
	x, y = t.clamp(x, y)
	ax, ay := t.anchor[0], t.anchor[1]
	t.area = Area{
		X:      math.Min(ax, x),
		Y:      math.Min(ay, y),
		Width:  math.Abs(x - ax),
		Height: math.Abs(y - ay),
	}
}

// End finishes the selection at (x, y). It reports false, and selects the
// whole surface again, when the selection is below MinSize on either axis.
func (t *Tool) End(x, y float64) (Area, bool) {
	if t.state != Selecting {
		return t.area, false
	}
	t.Move(x, y)
	t.state = Idle
	if t.area.Width < t.MinSize || t.area.Height < t.MinSize {
		t.area = t.full()
		return t.area, false
	}
	return t.area, true
}

// Valid reports whether the tool holds a finished selection of at least
// MinSize on both axes.
func (t *Tool) Valid() bool {
	if t.state != Idle || t.area.Empty() {
		return false
	}
	return t.area.Width >= t.MinSize && t.area.Height >= t.MinSize
}

// Cancel abandons an in-progress selection.
func (t *Tool) Cancel() {
	t.state = Idle
	t.area = t.full()
}

func (t *Tool) clamp(x, y float64) (float64, float64) {
	x = math.Max(0, math.Min(float64(t.bounds.X), x))
	y = math.Max(0, math.Min(float64(t.bounds.Y), y))
	return x, y
}

// Apply extracts r from img into a new bitmap.
func Apply(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	b := img.Bounds()
	r = r.Add(b.Min).Intersect(b)
	if r.Empty() {
		return nil, ErrEmptyCrop
	}
	return imaging.Crop(img, r), nil
}

// Package render turns a working bitmap and an adjustment state into the
// displayed or exported raster.
package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"

	"github.com/codynego/smarteditor/internal/adjust"
	"github.com/codynego/smarteditor/internal/filters"
	"github.com/codynego/smarteditor/internal/overlay"
)

var ErrEmptySurface = errors.New("render surface is empty")

// RenderError reports a failure inside one pipeline stage.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Options carries the per-render inputs that are not part of the adjustment
// state.
type Options struct {
	// Text is drawn in the coordinates of the full resolution output.
	Text *overlay.Text
	// Guide is the crop selection in the coordinates of this render. It is
	// only set in crop mode and never for exports.
	Guide *image.Rectangle
	// Scale is this render's size relative to the full resolution output.
	// Zero means 1.
	Scale float64
}

// Engine runs the render stages. It holds no per-render state and is safe
// for concurrent use.
type Engine struct {
	GrainSeed int64
}

func NewEngine() *Engine {
	return &Engine{GrainSeed: filters.GrainSeed}
}

// Render produces a new bitmap from src and st. src is never modified.
func (e *Engine) Render(src *image.NRGBA, st adjust.State, opts Options) (out *image.NRGBA, err error) {
	if src == nil || src.Bounds().Empty() {
		return nil, ErrEmptySurface
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	stage := "transform"
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &RenderError{Stage: stage, Err: fmt.Errorf("%v", r)}
		}
	}()

	work := Transform(src, st)

	stage = "filter"
	work = filters.Apply(work, st, filters.Options{Scale: scale})

	if st.NeedsCorrection() {
		stage = "correct"
		work = filters.Correct(work, st)
	}
	if st.Grain > 0 {
		stage = "grain"
		work = filters.Grain(work, st.Grain, e.GrainSeed)
	}
	if st.Vignette > 0 {
		stage = "vignette"
		work = overlay.Vignette(work, st.Vignette)
	}
	if opts.Text != nil {
		stage = "text"
		if work, err = overlay.DrawText(work, *opts.Text, scale); err != nil {
			return nil, &RenderError{Stage: stage, Err: err}
		}
	}
	if opts.Guide != nil {
		stage = "guide"
		work = overlay.CropGuide(work, *opts.Guide)
	}
	return work, nil
}

// Transform applies the flips and then the clockwise rotation of st. Quarter
// turns swap the output dimensions.
func Transform(src *image.NRGBA, st adjust.State) *image.NRGBA {
	if !st.Transformed() {
		return imaging.Clone(src)
	}
	g := gift.New()
	if st.FlipH {
		g.Add(gift.FlipHorizontal())
	}
	if st.FlipV {
		g.Add(gift.FlipVertical())
	}
	switch st.Rotation {
	case 90:
		g.Add(gift.Rotate270())
	case 180:
		g.Add(gift.Rotate180())
	case 270:
		g.Add(gift.Rotate90())
	}
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

// OutputSize returns the size of a render of a size bitmap under st.
func OutputSize(size image.Point, st adjust.State) image.Point {
	if st.Rotation == 90 || st.Rotation == 270 {
		return image.Pt(size.Y, size.X)
	}
	return size
}

// SourceRect maps r, given in the coordinates of a render, back onto the
// working bitmap of the given size by undoing the rotation and flips of st.
func SourceRect(r image.Rectangle, size image.Point, st adjust.State) image.Rectangle {
	type pt struct{ x, y int }
	p, q := pt{r.Min.X, r.Min.Y}, pt{r.Max.X, r.Max.Y}
	w, h := OutputSize(size, st).X, OutputSize(size, st).Y

	for turns := st.Rotation / 90; turns > 0; turns-- {
		// undo one clockwise quarter turn of a w x h surface
		p = pt{p.y, w - p.x}
		q = pt{q.y, w - q.x}
		w, h = h, w
	}
	if st.FlipH {
		p.x, q.x = w-p.x, w-q.x
	}
	if st.FlipV {
		p.y, q.y = h-p.y, h-q.y
	}
	return image.Rect(p.x, p.y, q.x, q.y).Canon()
}

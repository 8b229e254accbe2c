// Package overlay paints the layers that sit on top of the adjusted image:
// the vignette, text annotations and the crop guide.
package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
)

const DefaultFontSize = 32.0

var ErrInvalidColor = errors.New("invalid color")

var (
	guideShade  = color.NRGBA{0, 0, 0, 153}
	guideStroke = color.NRGBA{0x3B, 0x82, 0xF6, 255}
)

const (
	guideLineWidth  = 2.0
	guideDash       = 5.0
	guideHandleSize = 8.0
	textStrokeWidth = 3.0
)

// Text is a single line annotation. X is the horizontal centre and Y the
// baseline, both in pixels of the full resolution render.
type Text struct {
	Content  string
	X, Y     float64
	Color    color.NRGBA
	FontSize float64
}

// Vignette darkens towards the corners with a radial gradient that is
// transparent at the centre and reaches rgba(0,0,0,strength/100) at the
// corners.
func Vignette(img *image.NRGBA, strength float64) *image.NRGBA {
	if strength <= 0 || img.Bounds().Empty() {
		return imaging.Clone(img)
	}
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	cx, cy := w/2, h/2
	radius := math.Hypot(cx, cy)
	alpha := uint8(math.Round(math.Min(strength, 100) / 100 * 255))

	grad := gg.NewRadialGradient(cx, cy, 0, cx, cy, radius)
	grad.AddColorStop(0, color.NRGBA{0, 0, 0, 0})
	grad.AddColorStop(1, color.NRGBA{0, 0, 0, alpha})

	dc := layer(img)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
	return composite(img, dc)
}

// StrokeColor picks the outline colour that keeps fill legible: white around
// dark text, black around light text.
func StrokeColor(fill color.NRGBA) color.NRGBA {
	lum := 0.299*float64(fill.R) + 0.587*float64(fill.G) + 0.114*float64(fill.B)
	if lum < 128 {
		return color.NRGBA{255, 255, 255, 255}
	}
	return color.NRGBA{0, 0, 0, 255}
}

// DrawText strokes then fills t. scale maps full resolution render
// coordinates onto img.
func DrawText(img *image.NRGBA, t Text, scale float64) (*image.NRGBA, error) {
	if strings.TrimSpace(t.Content) == "" {
		return imaging.Clone(img), nil
	}
	if scale <= 0 {
		scale = 1
	}
	size := t.FontSize
	if size <= 0 {
		size = DefaultFontSize
	}
	f, err := boldFont()
	if err != nil {
		return nil, err
	}

	dc := layer(img)
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: size * scale}))
	x, y := t.X*scale, t.Y*scale

	dc.SetColor(StrokeColor(t.Color))
	n := int(math.Max(1, math.Round(textStrokeWidth/2*scale)))
	for dy := -n; dy <= n; dy++ {
		for dx := -n; dx <= n; dx++ {
			if dx*dx+dy*dy > n*n {
				continue
			}
			dc.DrawStringAnchored(t.Content, x+float64(dx), y+float64(dy), 0.5, 0)
		}
	}
	dc.SetColor(t.Color)
	dc.DrawStringAnchored(t.Content, x, y, 0.5, 0)
	return composite(img, dc), nil
}

// CropGuide shades everything outside r and outlines r with a dashed border
// and corner handles.
func CropGuide(img *image.NRGBA, r image.Rectangle) *image.NRGBA {
	b := img.Bounds()
	r = r.Intersect(b)
	if r.Empty() {
		return imaging.Clone(img)
	}
	r = r.Sub(b.Min)
	w, h := float64(b.Dx()), float64(b.Dy())
	x, y := float64(r.Min.X), float64(r.Min.Y)
	rw, rh := float64(r.Dx()), float64(r.Dy())

	dc := layer(img)
	dc.SetColor(guideShade)
	dc.DrawRectangle(0, 0, w, y)
	dc.DrawRectangle(0, y+rh, w, h-y-rh)
	dc.DrawRectangle(0, y, x, rh)
	dc.DrawRectangle(x+rw, y, w-x-rw, rh)
	dc.Fill()

	dc.SetColor(guideStroke)
	dc.SetLineWidth(guideLineWidth)
	dc.SetDash(guideDash, guideDash)
	dc.DrawRectangle(x, y, rw, rh)
	dc.Stroke()
	dc.SetDash()

	for _, p := range [][2]float64{{x, y}, {x + rw, y}, {x, y + rh}, {x + rw, y + rh}} {
		dc.DrawRectangle(p[0]-guideHandleSize/2, p[1]-guideHandleSize/2, guideHandleSize, guideHandleSize)
	}
	dc.Fill()
	return composite(img, dc)
}

// layer returns a transparent drawing surface the size of img. Drawing on
// img itself would round-trip every pixel through premultiplied alpha.
func layer(img *image.NRGBA) *gg.Context {
	return gg.NewContext(img.Bounds().Dx(), img.Bounds().Dy())
}

// composite blends the layer drawn on dc over img. Pixels the layer leaves
// transparent keep their exact values.
func composite(img *image.NRGBA, dc *gg.Context) *image.NRGBA {
	return imaging.Overlay(img, dc.Image(), img.Bounds().Min, 1)
}

// ParseHexColor parses #rgb, #rrggbb or #rrggbbaa.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.NRGBA{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

var (
	fontOnce sync.Once
	fontBold *truetype.Font
	fontErr  error
)

func boldFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		fontBold, fontErr = truetype.Parse(gobold.TTF)
		if fontErr != nil {
			fontErr = fmt.Errorf("parse font: %w", fontErr)
		}
	})
	return fontBold, fontErr
}

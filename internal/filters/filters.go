package filters

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"

	"github.com/codynego/smarteditor/internal/adjust"
)

// GrainSeed seeds the grain generator. It is fixed so that rendering the same
// state twice gives identical output.
const GrainSeed int64 = 0x5eed

type Options struct {
	// Scale is the ratio between the surface being rendered and the working
	// bitmap. Blur and clarity radii are multiplied by it so previews match
	// the full resolution output. Zero means 1.
	Scale float64
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

// Apply runs the composable filter stage: the preset look and colour
// functions in their fixed order, then blur and clarity. The source is never
// modified.
func Apply(img *image.NRGBA, st adjust.State, opts Options) *image.NRGBA {
	work := img
	if ops := chain(st); len(ops) > 0 {
		work = applyColorOps(work, ops)
	}
	if st.Blur > 0 {
		work = imaging.Blur(work, st.Blur*opts.scale())
	}
	if st.Clarity > 0 {
		work = applyClarity(work, st.Clarity, opts.scale())
	}
	if work == img {
		return imaging.Clone(img)
	}
	return work
}

// colorOp transforms one pixel with channels in [0,1].
type colorOp func(r, g, b float64) (float64, float64, float64)

func chain(st adjust.State) []colorOp {
	var ops []colorOp
	if st.Preset != adjust.PresetNone {
		if p, err := adjust.GetPreset(st.Preset); err == nil {
			for _, step := range p.Look {
				if op := lookOp(step); op != nil {
					ops = append(ops, op)
				}
			}
		}
	}
	if st.Brightness != 100 {
		ops = append(ops, brightness(st.Brightness/100))
	}
	if st.Contrast != 100 {
		ops = append(ops, contrast(st.Contrast/100))
	}
	if st.Saturation != 100 {
		ops = append(ops, saturate(st.Saturation/100))
	}
	if st.Hue != 0 {
		ops = append(ops, hueRotate(st.Hue))
	}
	if st.Exposure != 0 {
		ops = append(ops, brightness(math.Pow(2, st.Exposure/100)))
	}
	if st.Gamma != 1 {
		ops = append(ops, gamma(st.Gamma))
	}
	if st.Temperature != 0 {
		ops = append(ops, temperature(st.Temperature/100))
	}
	if st.Tint != 0 {
		ops = append(ops, tint(st.Tint/100))
	}
	if st.Sepia > 0 {
		ops = append(ops, sepia(st.Sepia/100))
	}
	if st.Grayscale > 0 {
		ops = append(ops, grayscale(st.Grayscale/100))
	}
	return ops
}

func lookOp(step adjust.LookStep) colorOp {
	switch step.Op {
	case "brightness":
		return brightness(step.Amount / 100)
	case "contrast":
		return contrast(step.Amount / 100)
	case "saturate":
		return saturate(step.Amount / 100)
	case "hue-rotate":
		return hueRotate(step.Amount)
	case "sepia":
		return sepia(step.Amount / 100)
	case "grayscale":
		return grayscale(step.Amount / 100)
	}
	return nil
}

func applyColorOps(img *image.NRGBA, ops []colorOp) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
		for _, op := range ops {
			r, g, b = op(r, g, b)
			r, g, b = clamp01(r), clamp01(g), clamp01(b)
		}
		return color.NRGBA{to8(r * 255), to8(g * 255), to8(b * 255), c.A}
	})
}

func brightness(k float64) colorOp {
	return func(r, g, b float64) (float64, float64, float64) {
		return r * k, g * k, b * k
	}
}

func contrast(k float64) colorOp {
	return func(r, g, b float64) (float64, float64, float64) {
		return (r-0.5)*k + 0.5, (g-0.5)*k + 0.5, (b-0.5)*k + 0.5
	}
}

func saturate(s float64) colorOp {
	return matrix([9]float64{
		0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s,
		0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s,
		0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s,
	})
}

func hueRotate(deg float64) colorOp {
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return matrix([9]float64{
		0.213 + cos*0.787 - sin*0.213, 0.715 - cos*0.715 - sin*0.715, 0.072 - cos*0.072 + sin*0.928,
		0.213 - cos*0.213 + sin*0.143, 0.715 + cos*0.285 + sin*0.140, 0.072 - cos*0.072 - sin*0.283,
		0.213 - cos*0.213 - sin*0.787, 0.715 - cos*0.715 + sin*0.715, 0.072 + cos*0.928 + sin*0.072,
	})
}

func sepia(a float64) colorOp {
	a = 1 - clamp01(a)
	return matrix([9]float64{
		0.393 + 0.607*a, 0.769 - 0.769*a, 0.189 - 0.189*a,
		0.349 - 0.349*a, 0.686 + 0.314*a, 0.168 - 0.168*a,
		0.272 - 0.272*a, 0.534 - 0.534*a, 0.131 + 0.869*a,
	})
}

func grayscale(a float64) colorOp {
	a = 1 - clamp01(a)
	return matrix([9]float64{
		0.2126 + 0.7874*a, 0.7152 - 0.7152*a, 0.0722 - 0.0722*a,
		0.2126 - 0.2126*a, 0.7152 + 0.2848*a, 0.0722 - 0.0722*a,
		0.2126 - 0.2126*a, 0.7152 - 0.7152*a, 0.0722 + 0.9278*a,
	})
}

func gamma(g float64) colorOp {
	e := 1 / g
	return func(r, gr, b float64) (float64, float64, float64) {
		return math.Pow(r, e), math.Pow(gr, e), math.Pow(b, e)
	}
}

// temperature shifts towards amber for w > 0 and towards blue for w < 0.
func temperature(w float64) colorOp {
	return func(r, g, b float64) (float64, float64, float64) {
		return r * (1 + 0.2*w), g, b * (1 - 0.2*w)
	}
}

// tint shifts towards magenta for t > 0 and towards green for t < 0.
func tint(t float64) colorOp {
	return func(r, g, b float64) (float64, float64, float64) {
		return r, g * (1 - 0.2*t), b
	}
}

func matrix(m [9]float64) colorOp {
	return func(r, g, b float64) (float64, float64, float64) {
		return m[0]*r + m[1]*g + m[2]*b,
			m[3]*r + m[4]*g + m[5]*b,
			m[6]*r + m[7]*g + m[8]*b
	}
}

func applyClarity(img *image.NRGBA, clarity, scale float64) *image.NRGBA {
	g := gift.New(gift.UnsharpMask(float32(2*scale), float32(clarity/100*1.5), 0))
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// Correct runs the per-pixel highlight, shadow and vibrance corrections. It
// returns a clone when none of them is set.
func Correct(img *image.NRGBA, st adjust.State) *image.NRGBA {
	if !st.NeedsCorrection() {
		return imaging.Clone(img)
	}
	hi := 1 + st.Highlights/100
	sh := 1 + st.Shadows/100
	vib := st.Vibrance / 100
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		r, g, b := float64(c.R), float64(c.G), float64(c.B)
		lum := 0.299*r + 0.587*g + 0.114*b
		if st.Highlights != 0 && lum > 128 {
			r, g, b = clamp255(r*hi), clamp255(g*hi), clamp255(b*hi)
		}
		if st.Shadows != 0 && lum < 128 {
			r, g, b = clamp255(r*sh), clamp255(g*sh), clamp255(b*sh)
		}
		if vib != 0 {
			avg := (r + g + b) / 3
			push := func(v float64) float64 {
				d := v - avg
				return clamp255(avg + d*(1+vib*(1-math.Abs(d)/128)))
			}
			r, g, b = push(r), push(g), push(b)
		}
		return color.NRGBA{to8(r), to8(g), to8(b), c.A}
	})
}

// Grain adds monochrome film grain. amount is in [0,100]; the noise sequence
// comes from seed, so equal inputs give equal output.
func Grain(img *image.NRGBA, amount float64, seed int64) *image.NRGBA {
	res := imaging.Clone(img)
	if amount <= 0 {
		return res
	}
	sigma := amount / 100 * 0.12 * 255
	r := rand.New(rand.NewSource(seed))
	bounds := res.Bounds()
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			i := y*res.Stride + x*4
			n := r.NormFloat64() * sigma
			res.Pix[i] = to8(float64(res.Pix[i]) + n)
			res.Pix[i+1] = to8(float64(res.Pix[i+1]) + n)
			res.Pix[i+2] = to8(float64(res.Pix[i+2]) + n)
		}
	}
	return res
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func clamp255(v float64) float64 {
	return math.Max(0, math.Min(255, v))
}

func to8(v float64) uint8 {
	return uint8(clamp255(math.Round(v)))
}

// Package pipeline ties the editor components into one editing session and
// provides the one-shot Process used by the command line.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/codynego/smarteditor/internal/adjust"
	"github.com/codynego/smarteditor/internal/config"
	"github.com/codynego/smarteditor/internal/crop"
	"github.com/codynego/smarteditor/internal/export"
	"github.com/codynego/smarteditor/internal/history"
	"github.com/codynego/smarteditor/internal/logging"
	"github.com/codynego/smarteditor/internal/overlay"
	"github.com/codynego/smarteditor/internal/render"
	"github.com/codynego/smarteditor/internal/source"
)

var ErrNotLoaded = errors.New("no image loaded")

// Status mirrors the session flags an editor UI shows.
type Status struct {
	Loaded    bool
	LoadErr   error
	RenderErr error
	ExportErr error
	Exporting bool
	CropMode  bool
	Selecting bool
	CanUndo   bool
	CanRedo   bool
}

// Processor is one editing session. It is driven from a single goroutine;
// only the render scheduler does work in the background.
type Processor struct {
	inputPath string
	cfg       *config.Config

	loader     *source.Loader
	image      *source.Image
	display    *image.NRGBA
	controller *adjust.Controller
	engine     *render.Engine
	scheduler  *render.Scheduler
	cropTool   *crop.Tool
	cropBounds image.Point
	cropMode   bool
	history    *history.Stack
	exporter   *export.Exporter
	text       *overlay.Text

	loadErr   error
	exportErr error
}

// New creates a session for inputPath, a file path or http(s) URL. A nil cfg
// uses config.Default.
func New(inputPath string, cfg *config.Config) *Processor {
	if cfg == nil {
		cfg = config.Default()
	}

	loader := source.NewLoader(nil, cfg.Load.Timeout)
	loader.AuthToken = cfg.Load.AuthToken

	exporter := export.New(cfg.Export.Dir, cfg.Export.Quality)
	if f, err := export.ParseFormat(cfg.Export.Format); err == nil {
		exporter.Format = f
	}
	if cfg.Export.UploadURL != "" {
		exporter.Uploader = export.NewHTTPUploader(cfg.Export.UploadURL, cfg.Export.UploadToken, nil, cfg.Export.Timeout)
	}

	engine := render.NewEngine()
	tool := crop.NewTool(0, 0)
	tool.MinSize = cfg.Crop.MinSize

	p := &Processor{
		inputPath:  inputPath,
		cfg:        cfg,
		loader:     loader,
		controller: adjust.NewController(),
		engine:     engine,
		scheduler:  render.NewScheduler(engine, cfg.Display.Debounce),
		cropTool:   tool,
		history:    history.New(cfg.History.Limit),
		exporter:   exporter,
	}
	p.controller.Subscribe(func(adjust.State) { p.schedule() })
	return p
}

// Load fetches and decodes the input and starts a fresh session on it.
func (p *Processor) Load(ctx context.Context) error {
	img, err := p.loader.Load(ctx, p.inputPath)
	if err != nil {
		p.loadErr = err
		return err
	}
	p.loadErr = nil
	p.image = img
	p.text = nil
	p.cropMode = false
	p.scheduler.Reset()
	p.history.Reset()
	p.rebuildDisplay()
	p.controller.ResetAll()
	p.Snapshot("open")
	logging.L().Info("image loaded", "location", p.inputPath, "size", img.Size())
	return nil
}

// Reload retries a failed or repeated load.
func (p *Processor) Reload(ctx context.Context) error {
	return p.Load(ctx)
}

func (p *Processor) Loaded() bool { return p.image != nil }

func (p *Processor) Status() Status {
	return Status{
		Loaded:    p.Loaded(),
		LoadErr:   p.loadErr,
		RenderErr: p.scheduler.Err(),
		ExportErr: p.exportErr,
		Exporting: p.exporter.Busy(),
		CropMode:  p.cropMode,
		Selecting: p.cropTool.State() == crop.Selecting,
		CanUndo:   p.history.CanUndo(),
		CanRedo:   p.history.CanRedo(),
	}
}

// State returns the current adjustment state.
func (p *Processor) State() adjust.State { return p.controller.State() }

// SetState replaces the adjustment state, clamping every value.
func (p *Processor) SetState(st adjust.State) {
	p.controller.Restore(st)
}

// SetSlider changes one slider. Slider drags are continuous, so no snapshot
// is taken; call Snapshot when the drag ends.
func (p *Processor) SetSlider(name string, value float64) error {
	return p.controller.SetSlider(name, value)
}

func (p *Processor) ApplyPreset(name string) error {
	preset, err := adjust.ParsePreset(name)
	if err != nil {
		return err
	}
	if err := p.controller.ApplyPreset(preset); err != nil {
		return err
	}
	p.Snapshot("preset " + string(preset))
	return nil
}

func (p *Processor) Rotate(d adjust.Direction) {
	p.controller.Rotate(d)
	p.Snapshot("rotate")
}

func (p *Processor) FlipHorizontal() {
	p.controller.FlipHorizontal()
	p.Snapshot("flip horizontal")
}

func (p *Processor) FlipVertical() {
	p.controller.FlipVertical()
	p.Snapshot("flip vertical")
}

// ResetAll returns every adjustment to neutral. Crops are kept.
func (p *Processor) ResetAll() {
	p.controller.ResetAll()
	p.Snapshot("reset")
}

// Revert discards crops and adjustments and starts again from the original.
func (p *Processor) Revert() error {
	if p.image == nil {
		return ErrNotLoaded
	}
	p.image.Revert()
	p.rebuildDisplay()
	p.controller.ResetAll()
	p.Snapshot("revert")
	return nil
}

// SetText sets or, with nil, removes the text overlay.
func (p *Processor) SetText(t *overlay.Text) {
	p.text = t
	p.schedule()
}

// Display returns the preview-sized working bitmap.
func (p *Processor) Display() *image.NRGBA { return p.display }

// Image returns the current working bitmap.
func (p *Processor) Image() *image.NRGBA {
	if p.image == nil {
		return nil
	}
	return p.image.Working()
}

// SetCropMode shows or hides the crop guide. Entering or leaving crop mode
// selects the whole image again.
func (p *Processor) SetCropMode(on bool) {
	p.cropMode = on
	p.cropTool.Reset(p.cropBounds.X, p.cropBounds.Y)
	p.schedule()
}

// CropArea returns the selection in preview coordinates.
func (p *Processor) CropArea() crop.Area { return p.cropTool.Area() }

// BeginCrop, MoveCrop and EndCrop take pointer positions in preview
// coordinates.
func (p *Processor) BeginCrop(x, y float64) {
	p.cropTool.Begin(x, y)
	p.schedule()
}

func (p *Processor) MoveCrop(x, y float64) {
	p.cropTool.Move(x, y)
	p.schedule()
}

// EndCrop reports whether the selection was kept.
func (p *Processor) EndCrop(x, y float64) bool {
	_, ok := p.cropTool.End(x, y)
	p.schedule()
	return ok
}

func (p *Processor) CancelCrop() {
	p.cropTool.Cancel()
	p.cropMode = false
	p.schedule()
}

// ApplyCrop cuts the working bitmap down to the current selection and leaves
// crop mode. A selection still being dragged, or one below the minimum size,
// is discarded and nothing is cropped.
func (p *Processor) ApplyCrop() error {
	if p.image == nil {
		return ErrNotLoaded
	}
	if !p.cropTool.Valid() {
		logging.L().Debug("crop discarded", "area", p.cropTool.Area(), "state", p.cropTool.State())
		p.cropTool.Reset(p.cropBounds.X, p.cropBounds.Y)
		p.cropMode = false
		p.schedule()
		return nil
	}
	st := p.controller.State()
	working := p.image.Size()
	rendered := render.OutputSize(working, st)
	r := p.cropTool.Area().ToSource(p.cropBounds, rendered)
	p.cropMode = false

	if err := p.cropWorking(render.SourceRect(r, working, st)); err != nil {
		p.schedule()
		return err
	}
	return nil
}

// CropTo cuts the working bitmap to r, given in working bitmap pixels before
// rotation and flips.
func (p *Processor) CropTo(r image.Rectangle) error {
	if p.image == nil {
		return ErrNotLoaded
	}
	return p.cropWorking(r)
}

func (p *Processor) cropWorking(r image.Rectangle) error {
	working := p.image.Working()
	if r == working.Bounds() {
		p.cropTool.Reset(p.cropBounds.X, p.cropBounds.Y)
		p.schedule()
		return nil
	}
	cropped, err := crop.Apply(working, r)
	if err != nil {
		return fmt.Errorf("crop: %w", err)
	}
	p.image.SetWorking(cropped)
	p.rebuildDisplay()
	p.schedule()
	p.Snapshot("crop")
	logging.L().Debug("cropped", "rect", r, "size", cropped.Bounds().Size())
	return nil
}

// Snapshot records the current state and working bitmap in the history.
func (p *Processor) Snapshot(label string) {
	if p.image == nil {
		return
	}
	p.history.Push(history.Entry{
		Label:   label,
		State:   p.controller.State(),
		Working: p.image.Working(),
	})
}

// Undo steps back one snapshot. It reports false when there is nothing to
// undo.
func (p *Processor) Undo() bool {
	e, ok := p.history.Undo()
	if ok {
		p.restore(e)
	}
	return ok
}

func (p *Processor) Redo() bool {
	e, ok := p.history.Redo()
	if ok {
		p.restore(e)
	}
	return ok
}

func (p *Processor) restore(e history.Entry) {
	if e.Working != nil && e.Working != p.image.Working() {
		p.image.SetWorking(e.Working)
		p.rebuildDisplay()
	}
	p.controller.Restore(e.State)
}

// Preview renders any pending change at preview size and returns the latest
// committed preview. When the newest render failed the previous preview is
// returned along with the error.
func (p *Processor) Preview() (*image.NRGBA, error) {
	if p.image == nil {
		return nil, ErrNotLoaded
	}
	res := p.scheduler.Flush()
	return res.Image, res.Err
}

// Render produces the full resolution output without the crop guide.
func (p *Processor) Render() (*image.NRGBA, error) {
	if p.image == nil {
		return nil, ErrNotLoaded
	}
	return p.engine.Render(p.image.Working(), p.controller.State(), render.Options{Text: p.text, Scale: 1})
}

// Export renders at full resolution and hands the result to the exporter.
// A failure is kept in Status and leaves the edit untouched.
func (p *Processor) Export(ctx context.Context, req export.Request) (export.Result, error) {
	img, err := p.Render()
	if err != nil {
		p.exportErr = err
		return export.Result{}, fmt.Errorf("render: %w", err)
	}
	res, err := p.exporter.Export(ctx, img, req)
	p.exportErr = err
	return res, err
}

// Save renders at full resolution and writes the result to outputPath. The
// format follows the file extension.
func (p *Processor) Save(outputPath string) error {
	if p.image == nil {
		return fmt.Errorf("no image to save")
	}
	img, err := p.Render()
	if err != nil {
		return err
	}
	if err := imaging.Save(img, outputPath, imaging.JPEGQuality(p.exporter.Quality)); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// Close stops the pending preview render.
func (p *Processor) Close() {
	p.scheduler.Reset()
}

func (p *Processor) schedule() {
	if p.image == nil {
		return
	}
	st := p.controller.State()
	bounds := render.OutputSize(p.display.Bounds().Size(), st)
	if bounds != p.cropBounds {
		p.cropBounds = bounds
		p.cropTool.Reset(bounds.X, bounds.Y)
	}

	opts := render.Options{
		Text:  p.text,
		Scale: float64(p.display.Bounds().Dx()) / float64(p.image.Size().X),
	}
	if p.cropMode {
		guide := p.cropTool.Area().Rect()
		opts.Guide = &guide
	}
	p.scheduler.Schedule(render.Request{Source: p.display, State: st, Options: opts})
}

func (p *Processor) rebuildDisplay() {
	p.display = fitDisplay(p.image.Working(), p.cfg.Display.MaxWidth, p.cfg.Display.MaxHeight)
	p.cropBounds = image.Point{}
}

// fitDisplay scales img down to fit maxW x maxH, keeping its aspect ratio.
// Images that already fit are returned as is.
func fitDisplay(img *image.NRGBA, maxW, maxH int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return img
	}
	ratio := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	dw := max(1, int(math.Round(float64(w)*ratio)))
	dh := max(1, int(math.Round(float64(h)*ratio)))
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Options configures Process.
type Options struct {
	State adjust.State
	// Crop is applied to the loaded image before any adjustment. An empty
	// rectangle keeps the whole image.
	Crop    image.Rectangle
	Text    *overlay.Text
	Quality int
	// Config defaults to config.Default when nil.
	Config *config.Config
}

// DefaultOptions returns neutral adjustments and the default JPEG quality.
func DefaultOptions() Options {
	return Options{
		State:   adjust.Default(),
		Quality: export.DefaultQuality,
	}
}

// Process loads inputPath, applies opts and writes the result to outputPath.
func Process(inputPath, outputPath string, opts Options) error {
	cfg := config.Default()
	if opts.Config != nil {
		c := *opts.Config
		cfg = &c
	}
	if opts.Quality > 0 {
		cfg.Export.Quality = opts.Quality
	}
	proc := New(inputPath, cfg)
	defer proc.Close()

	if err := proc.Load(context.Background()); err != nil {
		return fmt.Errorf("load: %w", err)
	}

	if !opts.Crop.Empty() {
		if err := proc.CropTo(opts.Crop); err != nil {
			return err
		}
	}

	proc.SetState(opts.State)
	proc.SetText(opts.Text)

	if err := proc.Save(outputPath); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

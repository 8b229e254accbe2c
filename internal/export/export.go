// Package export encodes the final render and delivers it as a download or
// an upload.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"

	"github.com/codynego/smarteditor/internal/logging"
)

const DefaultQuality = 95

var (
	ErrBusy       = errors.New("export already in progress")
	ErrNoUploader = errors.New("no uploader configured")
	ErrNoTarget   = errors.New("export has neither download nor upload target")
)

// Error wraps a failure of one export step.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// ParseFormat accepts jpeg, jpg and png in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unknown export format: %s (valid: jpeg, png)", s)
	}
}

func (f Format) ext() string {
	if f == FormatPNG {
		return ".png"
	}
	return ".jpg"
}

// Request selects the export targets.
type Request struct {
	Download  bool
	Upload    bool
	SaveAsNew bool
}

// Result describes a finished export.
type Result struct {
	Filename string
	// Path is set when the image was written to the download directory.
	Path     string
	Size     int
	Uploaded bool
}

// Exporter encodes renders and hands them to the configured targets. Only
// one export runs at a time.
type Exporter struct {
	Quality  int
	Format   Format
	Dir      string
	Uploader Uploader

	now  func() time.Time
	busy atomic.Bool
}

// New creates an Exporter writing JPEGs of the given quality into dir.
func New(dir string, quality int) *Exporter {
	if quality <= 0 {
		quality = DefaultQuality
	}
	return &Exporter{
		Quality: quality,
		Format:  FormatJPEG,
		Dir:     dir,
		now:     time.Now,
	}
}

// Busy reports whether an export is running.
func (e *Exporter) Busy() bool { return e.busy.Load() }

// Encode returns img in the exporter's format.
func (e *Exporter) Encode(img image.Image) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, &Error{Op: "encode", Err: errors.New("empty image")}
	}
	var buf bytes.Buffer
	var err error
	if e.Format == FormatPNG {
		err = imaging.Encode(&buf, img, imaging.PNG)
	} else {
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(e.Quality))
	}
	if err != nil {
		return nil, &Error{Op: "encode", Err: err}
	}
	return buf.Bytes(), nil
}

// Filename returns edited_<unix-millis> with the format's extension.
func (e *Exporter) Filename() string {
	return fmt.Sprintf("edited_%d%s", e.now().UnixMilli(), e.Format.ext())
}

// Export encodes img and delivers it to the targets of req. A call made while
// another export is running fails with ErrBusy.
func (e *Exporter) Export(ctx context.Context, img image.Image, req Request) (Result, error) {
	if !req.Download && !req.Upload {
		return Result{}, &Error{Op: "request", Err: ErrNoTarget}
	}
	if req.Upload && e.Uploader == nil {
		return Result{}, &Error{Op: "upload", Err: ErrNoUploader}
	}
	if !e.busy.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer e.busy.Store(false)

	data, err := e.Encode(img)
	if err != nil {
		return Result{}, err
	}
	res := Result{Filename: e.Filename(), Size: len(data)}

	if req.Download {
		if err := os.MkdirAll(e.Dir, 0755); err != nil {
			return res, &Error{Op: "download", Err: err}
		}
		path := filepath.Join(e.Dir, res.Filename)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return res, &Error{Op: "download", Err: err}
		}
		res.Path = path
		logging.L().Info("exported image", "path", path, "bytes", len(data))
	}

	if req.Upload {
		if err := e.Uploader.Upload(ctx, res.Filename, data, req.SaveAsNew); err != nil {
			return res, &Error{Op: "upload", Err: err}
		}
		res.Uploaded = true
		logging.L().Info("uploaded image", "filename", res.Filename, "save_as_new", req.SaveAsNew)
	}
	return res, nil
}

// Package source loads the image being edited and holds its original and
// working bitmaps.
package source

import (
	"image"

	"github.com/disintegration/imaging"
)

// Image holds the decoded original and the current working bitmap. The
// original is never modified; every edit that changes pixels installs a new
// working bitmap.
type Image struct {
	location string
	original *image.NRGBA
	working  *image.NRGBA
}

// New wraps img. The working bitmap starts as a copy of the original.
func New(location string, img image.Image) *Image {
	orig := imaging.Clone(img)
	return &Image{
		location: location,
		original: orig,
		working:  imaging.Clone(orig),
	}
}

func (s *Image) Location() string       { return s.location }
func (s *Image) Original() *image.NRGBA { return s.original }
func (s *Image) Working() *image.NRGBA  { return s.working }
func (s *Image) Size() image.Point      { return s.working.Bounds().Size() }

// Cropped reports whether the working bitmap differs in size from the
// original.
func (s *Image) Cropped() bool {
	return s.working.Bounds().Size() != s.original.Bounds().Size()
}

// SetWorking replaces the working bitmap. The caller must not modify img
// afterwards.
func (s *Image) SetWorking(img *image.NRGBA) {
	s.working = img
}

// Revert discards every crop and restores the working bitmap from the
// original.
func (s *Image) Revert() {
	s.working = imaging.Clone(s.original)
}

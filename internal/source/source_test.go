package source

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

func createTestImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 10), uint8(y * 10), 128, 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImageHolder(t *testing.T) {
	src := createTestImage(20, 10)
	img := New("mem", src)
	if img.Original() == img.Working() {
		t.Fatal("working bitmap aliases the original")
	}
	if img.Size() != image.Pt(20, 10) || img.Cropped() {
		t.Errorf("Size() = %v, Cropped() = %v", img.Size(), img.Cropped())
	}

	img.SetWorking(imaging.Crop(img.Working(), image.Rect(0, 0, 5, 5)))
	if !img.Cropped() || img.Size() != image.Pt(5, 5) {
		t.Errorf("after crop Size() = %v, Cropped() = %v", img.Size(), img.Cropped())
	}
	if img.Original().Bounds().Size() != image.Pt(20, 10) {
		t.Error("crop changed the original")
	}

	img.Revert()
	if img.Cropped() || img.Size() != image.Pt(20, 10) {
		t.Errorf("after Revert() Size() = %v", img.Size())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.png")
	if err := imaging.Save(createTestImage(12, 8), path); err != nil {
		t.Fatal(err)
	}

	img, err := NewLoader(nil, time.Second).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Size() != image.Pt(12, 8) {
		t.Errorf("Size() = %v, want 12x8", img.Size())
	}
	if img.Location() != path {
		t.Errorf("Location() = %q, want %q", img.Location(), path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(nil, time.Second).Load(context.Background(), filepath.Join(t.TempDir(), "nope.jpg"))
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Load() error = %v, want *LoadError", err)
	}
	if le.Attempts != 1 {
		t.Errorf("Attempts = %d, want a single attempt for a local file", le.Attempts)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoader(nil, time.Second).Load(context.Background(), path); err == nil {
		t.Error("Load() of a corrupt file should fail")
	}
}

func TestLoadURLRetriesWithoutCredentials(t *testing.T) {
	body := encodePNG(t, createTestImage(6, 4))
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	l := NewLoader(srv.Client(), time.Second)
	l.AuthToken = "token"
	img, err := l.Load(context.Background(), srv.URL+"/photo.png")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Size() != image.Pt(6, 4) {
		t.Errorf("Size() = %v, want 6x4", img.Size())
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("server saw %d requests, want 2", n)
	}
}

func TestLoadURLSendsCredentialsFirst(t *testing.T) {
	body := encodePNG(t, createTestImage(3, 3))
	var sawToken atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer token" {
			sawToken.Store(true)
		}
		w.Write(body)
	}))
	defer srv.Close()

	l := NewLoader(srv.Client(), time.Second)
	l.AuthToken = "token"
	if _, err := l.Load(context.Background(), srv.URL); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !sawToken.Load() {
		t.Error("first attempt did not carry the bearer token")
	}
}

func TestLoadURLFailsAfterOneRetry(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewLoader(srv.Client(), time.Second).Load(context.Background(), srv.URL)
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Load() error = %v, want *LoadError", err)
	}
	if le.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", le.Attempts)
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("server saw %d requests, want exactly 2", n)
	}
}

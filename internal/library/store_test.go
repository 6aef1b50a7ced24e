package library_test

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-signage/internal/library"
)

func writePNG(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
}

func newStore(t *testing.T) (*library.FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := library.NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, dir
}

func TestResizeByOrientation(t *testing.T) {
	store, dir := newStore(t)
	writePNG(t, dir, "landscape.png", 200, 100)
	writePNG(t, dir, "portrait.png", 100, 200)

	if err := store.Resize("landscape.png", 80, 0); err != nil {
		t.Fatalf("resize landscape: %v", err)
	}
	if err := store.Resize("portrait.png", 0, 80); err != nil {
		t.Fatalf("resize portrait: %v", err)
	}

	cases := map[string][2]int{
		"landscape.png": {80, 40},
		"portrait.png":  {40, 80},
	}
	for name, want := range cases {
		w, h, err := store.Dimensions(name)
		if err != nil {
			t.Fatalf("dimensions %s: %v", name, err)
		}
		if w != want[0] || h != want[1] {
			t.Fatalf("%s: expected %dx%d, got %dx%d", name, want[0], want[1], w, h)
		}
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	if err != nil || len(leftovers) != 0 {
		t.Fatalf("expected no temporary files, got %v (%v)", leftovers, err)
	}
}

func TestResizeDoesNotUpscale(t *testing.T) {
	store, dir := newStore(t)
	writePNG(t, dir, "small.png", 50, 30)
	before, err := os.ReadFile(filepath.Join(dir, "small.png"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if err := store.Resize("small.png", 80, 0); err != nil {
		t.Fatalf("resize: %v", err)
	}

	after, err := os.ReadFile(filepath.Join(dir, "small.png"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("expected file untouched")
	}
}

func TestResizeKeepsJPEGFormat(t *testing.T) {
	store, dir := newStore(t)
	file, err := os.Create(filepath.Join(dir, "photo.jpg"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := jpeg.Encode(file, image.NewGray(image.Rect(0, 0, 120, 60)), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	_ = file.Close()

	if err := store.Resize("photo.jpg", 60, 0); err != nil {
		t.Fatalf("resize: %v", err)
	}

	reopened, err := os.Open(filepath.Join(dir, "photo.jpg"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reopened.Close()
	cfg, format, err := image.DecodeConfig(reopened)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "jpeg" || cfg.Width != 60 || cfg.Height != 30 {
		t.Fatalf("expected 60x30 jpeg, got %dx%d %s", cfg.Width, cfg.Height, format)
	}
}

func TestPathsAreConfinedToLibrary(t *testing.T) {
	store, _ := newStore(t)
	for _, path := range []string{"../escape.png", "/etc/passwd", "", "a/../../b.png"} {
		if _, _, err := store.Dimensions(path); !errors.Is(err, library.ErrPathOutsideLibrary) {
			t.Fatalf("%q: expected ErrPathOutsideLibrary, got %v", path, err)
		}
		if err := store.Resize(path, 10, 0); !errors.Is(err, library.ErrPathOutsideLibrary) {
			t.Fatalf("%q: expected ErrPathOutsideLibrary on resize, got %v", path, err)
		}
	}
}

func TestSizeCacheInvalidation(t *testing.T) {
	store, dir := newStore(t)
	writePNG(t, dir, "nested/item.png", 10, 10)

	first, err := store.Size("nested/item.png")
	if err != nil {
		t.Fatalf("size: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "nested", "item.png"), []byte("x"), 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	cached, err := store.Size("nested/item.png")
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if cached != first {
		t.Fatalf("expected cached size %d, got %d", first, cached)
	}

	store.Invalidate("nested/item.png")
	fresh, err := store.Size("nested/item.png")
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if fresh != 1 {
		t.Fatalf("expected size 1 after invalidate, got %d", fresh)
	}
}

func TestHashMatchesContents(t *testing.T) {
	store, dir := newStore(t)
	if err := os.WriteFile(filepath.Join(dir, "blob.bin"), []byte("signage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sum := md5.Sum([]byte("signage"))

	got, err := store.Hash("blob.bin")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if got != hex.EncodeToString(sum[:]) {
		t.Fatalf("unexpected hash %s", got)
	}
}

func TestDimensionsOfUnreadableFile(t *testing.T) {
	store, dir := newStore(t)
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := store.Dimensions("broken.png"); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, _, err := store.Dimensions("missing.png"); err == nil {
		t.Fatalf("expected open error")
	}
}

func TestNewFileStoreRequiresLocation(t *testing.T) {
	if _, err := library.NewFileStore("  "); !errors.Is(err, library.ErrLocationRequired) {
		t.Fatalf("expected ErrLocationRequired, got %v", err)
	}
}

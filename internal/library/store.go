package library

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goliatone/go-signage/pkg/interfaces"
	"golang.org/x/image/draw"
)

var (
	// ErrPathOutsideLibrary is returned for paths that escape the library root.
	ErrPathOutsideLibrary = errors.New("library: path outside library root")
	// ErrUnsupportedFormat is returned when an image cannot be re-encoded.
	ErrUnsupportedFormat = errors.New("library: unsupported image format")
	// ErrLocationRequired is returned when no library root is configured.
	ErrLocationRequired = errors.New("library: location required")
)

const jpegQuality = 90

// FileStore implements interfaces.LibraryFileStore on the local filesystem.
type FileStore struct {
	root string

	mu    sync.Mutex
	stats map[string]fs.FileInfo
}

var _ interfaces.LibraryFileStore = (*FileStore)(nil)

// NewFileStore returns a store rooted at location.
func NewFileStore(location string) (*FileStore, error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return nil, ErrLocationRequired
	}
	root, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("library: resolve location: %w", err)
	}
	return &FileStore{root: root, stats: map[string]fs.FileInfo{}}, nil
}

// Root returns the absolute library root.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) resolve(path string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(strings.TrimSpace(path)))
	if rel == "." || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", ErrPathOutsideLibrary, path)
	}
	return filepath.Join(s.root, rel), nil
}

func (s *FileStore) Dimensions(path string) (int, int, error) {
	full, err := s.resolve(path)
	if err != nil {
		return 0, 0, err
	}
	file, err := os.Open(full)
	if err != nil {
		return 0, 0, fmt.Errorf("library: open %s: %w", path, err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("library: decode %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

func (s *FileStore) Resize(path string, width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("library: invalid bounds %dx%d", width, height)
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	src, format, err := decodeFile(full)
	if err != nil {
		return fmt.Errorf("library: decode %s: %w", path, err)
	}
	bounds := src.Bounds()
	targetW, targetH, ok := fitWithin(bounds.Dx(), bounds.Dy(), width, height)
	if !ok {
		return nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	if err := writeAtomic(full, func(w io.Writer) error {
		return encode(w, dst, format)
	}); err != nil {
		return fmt.Errorf("library: write %s: %w", path, err)
	}
	s.Invalidate(path)
	return nil
}

func (s *FileStore) Invalidate(path string) {
	full, err := s.resolve(path)
	if err != nil {
		return
	}
	s.mu.Lock()
	delete(s.stats, full)
	s.mu.Unlock()
}

func (s *FileStore) Hash(path string) (string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	file, err := os.Open(full)
	if err != nil {
		return "", fmt.Errorf("library: open %s: %w", path, err)
	}
	defer file.Close()

	sum := md5.New()
	if _, err := io.Copy(sum, file); err != nil {
		return "", fmt.Errorf("library: hash %s: %w", path, err)
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}

func (s *FileStore) Size(path string) (int64, error) {
	info, err := s.stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *FileStore) stat(path string) (fs.FileInfo, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if info, ok := s.stats[full]; ok {
		return info, nil
	}
	info, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("library: stat %s: %w", path, err)
	}
	s.stats[full] = info
	return info, nil
}

// fitWithin returns the scaled size of a w×h image bounded by maxW×maxH.
// Zero bounds are unconstrained. ok is false when no downscale is needed.
func fitWithin(w, h, maxW, maxH int) (int, int, bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = float64(maxW) / float64(w)
	}
	if maxH > 0 && h > maxH {
		if s := float64(maxH) / float64(h); s < scale {
			scale = s
		}
	}
	if scale >= 1 {
		return w, h, false
	}
	targetW := max(1, int(float64(w)*scale+0.5))
	targetH := max(1, int(float64(h)*scale+0.5))
	if maxW > 0 {
		targetW = min(targetW, maxW)
	}
	if maxH > 0 {
		targetH = min(targetH, maxH)
	}
	return targetW, targetH, true
}

func decodeFile(full string) (image.Image, string, error) {
	file, err := os.Open(full)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()
	return image.Decode(file)
}

func encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case "png":
		return png.Encode(w, img)
	case "gif":
		return gif.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// writeAtomic writes to a temporary file next to target and renames it over
// target once the write succeeded.
func writeAtomic(target string, write func(io.Writer) error) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if info, err := os.Stat(target); err == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return err
	}
	return nil
}

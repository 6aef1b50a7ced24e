package interfaces

// LibraryFileStore reads and rewrites stored media files. Paths are relative
// to the library root.
type LibraryFileStore interface {
	// Dimensions reports the pixel size of a stored image.
	Dimensions(path string) (width, height int, err error)
	// Resize scales the stored image so it fits the given bounds while keeping
	// its aspect ratio. A zero width or height leaves that axis unconstrained.
	// Images already within the bounds are left untouched.
	Resize(path string, width, height int) error
	// Invalidate drops any cached file state for path so subsequent reads see
	// the file as it is on disk.
	Invalidate(path string)
	// Hash returns the hex encoded MD5 of the file contents.
	Hash(path string) (string, error)
	// Size returns the file size in bytes.
	Size(path string) (int64, error)
}

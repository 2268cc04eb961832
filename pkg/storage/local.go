package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Extensions accepted for photos and catalogue documents.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// FileStorage defines the contract for the upload store. Save returns
// the stored name, or "" when the upload is empty or its extension is
// not allowed; it never overwrites an existing file.
type FileStorage interface {
	Save(filename string, r io.Reader) (string, error)
	Delete(filename string) error
	Open(filename string) (io.ReadCloser, error)
	Path(filename string) string
	ListPrefix(prefix string) ([]string, error)
}

type localStorage struct {
	baseDir string
}

// NewLocalStorage creates a flat on-disk store rooted at baseDir,
// creating the directory if needed.
func NewLocalStorage(baseDir string) (FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &localStorage{baseDir: baseDir}, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename strips any path components and replaces characters
// that are unsafe in a flat upload directory.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	return name
}

func (s *localStorage) Save(filename string, r io.Reader) (string, error) {
	if filename == "" || r == nil {
		return "", nil
	}
	name := SanitizeFilename(filename)
	if name == "" {
		return "", nil
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return "", nil
	}

	unique := s.uniqueName(name)
	dst, err := os.Create(filepath.Join(s.baseDir, unique))
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %w", unique, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write %s: %w", unique, err)
	}
	return unique, nil
}

// uniqueName appends an incrementing numeric suffix before the
// extension until a free name is found. Not safe against two
// simultaneous writers picking the same base name.
func (s *localStorage) uniqueName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	unique := name
	for counter := 1; ; counter++ {
		if _, err := os.Stat(filepath.Join(s.baseDir, unique)); os.IsNotExist(err) {
			return unique
		}
		unique = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}
}

func (s *localStorage) Delete(filename string) error {
	if filename == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.baseDir, SanitizeFilename(filename)))
	if os.IsNotExist(err) {
		// The filesystem may already be missing it.
		return nil
	}
	return err
}

func (s *localStorage) Open(filename string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.baseDir, SanitizeFilename(filename)))
}

func (s *localStorage) Path(filename string) string {
	return filepath.Join(s.baseDir, SanitizeFilename(filename))
}

// ListPrefix returns stored names beginning with prefix. Used to clean
// up generated QR images when a supplier is deleted.
func (s *localStorage) ListPrefix(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

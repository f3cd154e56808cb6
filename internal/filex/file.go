// Package filex holds local file helpers for the CLI: reading files to
// upload and creating download targets without clobbering existing files.
package filex

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyFile   = errors.New("file is empty")
	ErrFileTooBig  = errors.New("file is too large")
	ErrIsDirectory = errors.New("path is a directory")
)

// LocalFile is a file read fully into memory for upload.
type LocalFile struct {
	Name     string
	MimeType string
	Data     []byte
}

func (f *LocalFile) Size() int64 { return int64(len(f.Data)) }

// EnsureDir creates dir (relative paths resolve against the working
// directory) and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// ReadForUpload reads path, rejecting directories, empty files and files
// larger than limit bytes. The MIME type comes from the extension and falls
// back to content sniffing.
func ReadForUpload(path string, limit int64) (*LocalFile, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	if fi.Size() > limit {
		return nil, fmt.Errorf("%s: %w (%d > %d bytes)", path, ErrFileTooBig, fi.Size(), limit)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w", path, ErrFileTooBig)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	return &LocalFile{
		Name:     filepath.Base(path),
		MimeType: DetectMimeType(path, data),
		Data:     data,
	}, nil
}

// DetectMimeType returns the media type without parameters.
func DetectMimeType(name string, head []byte) string {
	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if mt == "" {
		if len(head) > 512 {
			head = head[:512]
		}
		mt = http.DetectContentType(head)
	}
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	return mt
}

// CreateUnique creates name inside dir. If the name is taken, " (1)",
// " (2)" ... is inserted before the extension. Only the base of name is
// used, so a server-provided name cannot escape dir.
func CreateUnique(dir, name string) (*os.File, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		base = "download"
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 0; i < 1000; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("no free file name for %s in %s", base, dir)
}

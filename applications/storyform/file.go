package storyform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gabriel-vasile/mimetype"
)

// MaxFileSize is the largest document the form accepts, 10 MiB.
const MaxFileSize = 10 * 1024 * 1024

var (
	ErrFileType     = errors.New("file type not allowed")
	ErrFileTooLarge = errors.New("file too large")
)

var allowedTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

var allowedExt = regexp.MustCompile(`(?i)\.(pdf|docx?)$`)

// File is a document picked by the user. Content is only read when the form
// is submitted.
type File struct {
	Name string
	Size int64
	Type string

	open func() (io.ReadCloser, error)
}

func NewFile(name, mediaType string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		Type: mediaType,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// OpenFile describes a document on disk. The media type is sniffed from the
// content, the way a browser would declare it for a picked file.
func OpenFile(path string) (File, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("can't stat file: %w", err)
	}
	if stat.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return File{}, fmt.Errorf("can't detect media type: %w", err)
	}

	return File{
		Name: filepath.Base(path),
		Size: stat.Size(),
		Type: mtype.String(),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %q has no content", f.Name)
	}
	return f.open()
}

// Validate checks type before size: a file must be PDF, DOC or DOCX by media
// type or by extension, and at most MaxFileSize bytes.
func Validate(f File) error {
	if !allowedTypes[f.Type] && !allowedExt.MatchString(f.Name) {
		return ErrFileType
	}
	if f.Size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

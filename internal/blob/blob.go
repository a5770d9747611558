package blob

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// allowed identity document extensions
var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
}

// Store persists uploaded identity documents and returns a stable
// path reference for each stored file.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

func ValidateFileType(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExts[ext] {
		return ErrUnsupportedFileType
	}
	return nil
}

func detectContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

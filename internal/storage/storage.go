package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned when a file extension is not an accepted image type.
var ErrUnsupportedType = errors.New("storage: unsupported file type")

type PutInput struct {
	// Key is the object name; when empty a random one is generated.
	Key         string
	Filename    string
	ContentType string
	Size        int64
}

type PutResult struct {
	Key string
	URL string
}

type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	Delete(ctx context.Context, key string) error
}

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".svg":  "image/svg+xml",
	".gif":  "image/gif",
}

// ImageExt returns the lower-cased extension of filename if it is an accepted image type.
func ImageExt(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := imageTypes[ext]; !ok {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

// ContentTypeFor maps an accepted image extension to its MIME type.
func ContentTypeFor(ext string) string {
	if ct, ok := imageTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Package storage holds product images, on local disk or in an S3 bucket.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned when an image does not exist.
	ErrNotFound    = errors.New("storage: image not found")
	ErrInvalidName = errors.New("storage: invalid image name")
)

// ImageStore reads and writes image objects by file name.
type ImageStore interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, body io.Reader, contentType string) error
}

// CleanName rejects names that could escape the image root.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w %q", ErrInvalidName, name)
	}
	return path.Clean(name), nil
}

// LocalStore keeps images in a directory on disk.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root}
}

func (s *LocalStore) Get(_ context.Context, name string) ([]byte, error) {
	name, err := CleanName(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.Root, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

func (s *LocalStore) Put(_ context.Context, name string, body io.Reader, _ string) error {
	name, err := CleanName(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return fmt.Errorf("storage: create root: %w", err)
	}
	f, err := os.Create(filepath.Join(s.Root, name))
	if err != nil {
		return fmt.Errorf("storage: create %s: %w", name, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	return nil
}

// MIMEType guesses an image content type from the file extension, falling
// back to image/<ext>.
func MIMEType(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "svg":
		return "image/svg+xml"
	case "":
		return "application/octet-stream"
	default:
		return "image/" + ext
	}
}

// DataURI encodes data as a data: URI typed by the file extension of name.
func DataURI(name string, data []byte) string {
	return "data:" + MIMEType(name) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ridloal/apparel-store/internal/platform/logger"
)

var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrUnsupportedFormat = errors.New("unsupported file format, allowed: jpg, jpeg, png, webp")
	ErrObjectTooLarge    = errors.New("file exceeds upload size limit")
	ErrInvalidObjectID   = errors.New("invalid object id")
	allowedExtensions    = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
)

// Object adalah hasil upload: ID stabil untuk delete, URL untuk client.
type Object struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type ObjectStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*Object, error)
	Delete(ctx context.Context, id string) error
}

type localObjectStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewLocalObjectStore menyimpan file di dir dan melayaninya di bawah baseURL.
func NewLocalObjectStore(dir, baseURL string, maxBytes int64) (ObjectStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	return &localObjectStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}, nil
}

func (s *localObjectStore) Upload(ctx context.Context, filename string, r io.Reader) (*Object, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, ErrUnsupportedFormat
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString() + ext
	target := filepath.Join(s.dir, id)

	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create object file: %w", err)
	}

	// Baca satu byte lebih dari batas untuk mendeteksi file yang terlalu besar.
	n, copyErr := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	if copyErr == nil && n > s.maxBytes {
		copyErr = ErrObjectTooLarge
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(target)
		if errors.Is(copyErr, ErrObjectTooLarge) {
			return nil, copyErr
		}
		return nil, fmt.Errorf("failed to write object: %w", copyErr)
	}

	logger.Info("Stored object %s (%d bytes)", id, n)
	return &Object{ID: id, URL: s.baseURL + "/" + id}, nil
}

func (s *localObjectStore) Delete(ctx context.Context, id string) error {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return ErrInvalidObjectID
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, id))
	if errors.Is(err, os.ErrNotExist) {
		return ErrObjectNotFound
	}
	return err
}

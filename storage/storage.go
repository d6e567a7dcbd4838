package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultKeyPrefix is the folder uploaded SBC documents are stored under
const DefaultKeyPrefix = "text-extraction-pdf"

// ErrObjectNotFound is returned by Download when the key does not exist
var ErrObjectNotFound = errors.New("object not found")

// Storage stores source documents
type Storage interface {
	// Upload stores data and returns its object key
	Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader, opts ...UploadOption) (string, error)

	// Download opens the object stored under key
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the stable locator recorded alongside the document
	URL(key string) string
}

// Presigner is implemented by backends that can hand out temporary links
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// UploadOption adds optional attributes to an upload
type UploadOption func(*uploadOptions)

type uploadOptions struct {
	checksum string
}

// WithChecksum records the document fingerprint with the object
func WithChecksum(sum string) UploadOption {
	return func(o *uploadOptions) {
		o.checksum = sum
	}
}

func applyUploadOptions(opts []UploadOption) uploadOptions {
	var o uploadOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	KeyPrefix    string
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		return NewLocalStorage(cfg.LocalPath, cfg.KeyPrefix)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("an S3 bucket is required for S3 storage")
		}
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// objectKey builds "<prefix>/<id>.<ext>". The original filename only
// contributes its lowercased extension.
func objectKey(prefix string, fileID uuid.UUID, filename string) string {
	name := fileID.String() + strings.ToLower(filepath.Ext(filename))
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// getContentType determines content type from filename
func getContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

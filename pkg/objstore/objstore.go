// Package objstore stores certificate PDFs in S3 or an S3-compatible
// service. Objects are keyed by tenant so one company's documents never
// collide with another's.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	ErrInvalidConfig    = errors.New("invalid object storage config")
	ErrInvalidKey       = errors.New("invalid object key")
	ErrObjectNotFound   = errors.New("object not found")
	ErrAccessDenied     = errors.New("object storage access denied")
	ErrOperationTimeout = errors.New("object storage operation timed out")
	ErrFailedToLoadAWS  = errors.New("failed to load aws configuration")
	ErrUploadFailed     = errors.New("failed to upload object")
)

// Object describes a stored document.
type Object struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	URL         string    `json:"url"`
	StoredAt    time.Time `json:"stored_at"`
}

// Storage is the document store surface the application depends on.
type Storage interface {
	// Put uploads the content under key and returns the stored object.
	Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) (*Object, error)
	// Get streams the object's content. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL for key.
	URL(key string) string
}

// CertificateKey builds the canonical object key for a certificate PDF.
func CertificateKey(tenantID, certificateID uuid.UUID) string {
	return fmt.Sprintf("certificates/%s/%s.pdf", tenantID, certificateID)
}

func validateKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key, nil
}

// s3API is the subset of the S3 client used here, extracted for test fakes.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Config holds S3 settings, populated from the environment. Endpoint and
// ForcePathStyle support S3-compatible services like MinIO in development.
type Config struct {
	Bucket         string        `env:"S3_BUCKET,required"`
	Region         string        `env:"S3_REGION" envDefault:"sa-east-1"`
	AccessKeyID    string        `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string        `env:"S3_SECRET_KEY"`
	Endpoint       string        `env:"S3_ENDPOINT"`
	BaseURL        string        `env:"S3_BASE_URL"`
	ForcePathStyle bool          `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`
	UploadTimeout  time.Duration `env:"S3_UPLOAD_TIMEOUT" envDefault:"30s"`
}

// S3Storage implements Storage on Amazon S3. Safe for concurrent use.
type S3Storage struct {
	client        s3API
	bucket        string
	baseURL       string
	uploadTimeout time.Duration
}

// S3Option configures S3Storage construction.
type S3Option func(*S3Storage)

// WithS3Client injects a pre-built client, mainly for tests.
func WithS3Client(client s3API) S3Option {
	return func(s *S3Storage) { s.client = client }
}

// NewS3Storage builds the store, loading AWS configuration unless a client
// was injected.
func NewS3Storage(ctx context.Context, cfg Config, opts ...S3Option) (*S3Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	store := &S3Storage{
		bucket:        cfg.Bucket,
		baseURL:       publicBaseURL(cfg),
		uploadTimeout: cfg.UploadTimeout,
	}
	for _, opt := range opts {
		opt(store)
	}

	if store.client == nil {
		loadOpts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.Join(ErrFailedToLoadAWS, err)
		}
		store.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return store, nil
}

func publicBaseURL(cfg Config) string {
	base := cfg.BaseURL
	if base == "" {
		if cfg.Endpoint != "" {
			base = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return strings.TrimSuffix(base, "/") + "/"
}

func (s *S3Storage) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) (*Object, error) {
	key, err := validateKey(key)
	if err != nil {
		return nil, err
	}
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          content,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, classifyError(err, ErrUploadFailed)
	}

	return &Object{
		Key:         key,
		Size:        size,
		ContentType: contentType,
		URL:         s.URL(key),
		StoredAt:    time.Now().UTC(),
	}, nil
}

func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	key, err := validateKey(key)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyError(err, ErrObjectNotFound)
	}
	return out.Body, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	key, err := validateKey(key)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classifyError(err, errors.New("delete object"))
	}
	return nil
}

func (s *S3Storage) URL(key string) string {
	return s.baseURL + strings.TrimPrefix(key, "/")
}

func classifyError(err error, fallback error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrOperationTimeout, err)
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return errors.Join(ErrObjectNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return errors.Join(ErrObjectNotFound, err)
		case "AccessDenied":
			return errors.Join(ErrAccessDenied, err)
		}
	}

	return errors.Join(fallback, err)
}

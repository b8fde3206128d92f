// Package storage persists finished aggregation artifacts. The local backend
// is the default; the s3 backend targets any S3-compatible endpoint such as
// MinIO.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

type Storage interface {
	Save(ctx context.Context, name string, content []byte) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	Remove(ctx context.Context, name string) error
}

type Config struct {
	Driver    string
	LocalDir  string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
	URLExpiry time.Duration
}

func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalDir)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/shandysiswandi/gosales/internal/pkg/pkgerror"
)

type S3 struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

func NewS3(ctx context.Context, cfg Config) (*S3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	return &S3{client: client, bucket: cfg.Bucket, expiry: expiry}, nil
}

func (s *S3) Save(ctx context.Context, name string, content []byte) (string, error) {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		name,
		bytes.NewReader(content),
		int64(len(content)),
		minio.PutObjectOptions{ContentType: "text/csv"},
	)
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, name, s.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}

	return presigned.String(), nil
}

func (s *S3) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	info, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, pkgerror.ErrNotFound
		}
		return nil, 0, fmt.Errorf("s3 stat object: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("s3 get object: %w", err)
	}

	return obj, info.Size, nil
}

func (s *S3) Remove(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("s3 remove object: %w", err)
	}

	return nil
}

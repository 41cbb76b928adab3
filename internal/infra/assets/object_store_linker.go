package assets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStoreConfig points at an S3-compatible bucket holding the hero images.
type ObjectStoreConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	Region     string
	PresignTTL time.Duration
}

// ObjectStoreLinker hands out presigned GET URLs for hero images.
type ObjectStoreLinker struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
	logger *slog.Logger
}

func NewObjectStoreLinker(cfg ObjectStoreConfig, logger *slog.Logger) (*ObjectStoreLinker, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("object store bucket cannot be empty")
	}
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       useSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store client: %w", err)
	}
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ObjectStoreLinker{
		client: client,
		bucket: cfg.Bucket,
		ttl:    ttl,
		logger: logger.With("component", "assets.objectstore"),
	}, nil
}

// Link presigns the object named by ref.
func (l *ObjectStoreLinker) Link(ctx context.Context, ref string) (string, error) {
	key := strings.TrimLeft(ref, "/")
	if key == "" {
		return "", fmt.Errorf("empty asset reference")
	}
	u, err := l.client.PresignedGetObject(ctx, l.bucket, key, l.ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	l.logger.Debug("hero presigned", "key", key, "ttl", l.ttl)
	return u.String(), nil
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

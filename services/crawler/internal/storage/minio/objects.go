// Package minio guarda artefatos de debug e mídia dos vídeos em MinIO/S3.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/loviiin/argus-crawler/pkg/config"
)

// Objects é o adapter de object storage (screenshots, dumps e mídia).
type Objects struct {
	client *mclient.Client
	bucket string
}

// New cria o cliente e garante que o bucket exista.
func New(ctx context.Context, cfg config.S3Config) (*Objects, error) {
	const op = "storage/minio/New"

	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%s: empty endpoint", op)
	}
	endpoint, secure := splitEndpoint(cfg.Endpoint)

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, mclient.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: make bucket %q: %w", op, cfg.Bucket, err)
		}
	}

	return &Objects{client: client, bucket: cfg.Bucket}, nil
}

// splitEndpoint tira o esquema da URL; o cliente quer só host:porta.
func splitEndpoint(raw string) (string, bool) {
	secure := strings.HasPrefix(raw, "https://")
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Host, u.Scheme == "https"
	}
	return raw, secure
}

// Upload grava data em key.
func (o *Objects) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	const op = "storage/minio/Upload"

	_, err := o.client.PutObject(ctx, o.bucket, key, bytes.NewReader(data), int64(len(data)), mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, key, err)
	}
	return nil
}

// Location devolve a referência s3://bucket/key gravada nos registros.
func (o *Objects) Location(key string) string {
	return "s3://" + o.bucket + "/" + key
}

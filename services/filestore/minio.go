package filestore

import (
	"bytes"
	"context"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/submitly/backend/core"
)

// MinioStore stores files in an S3 compatible bucket.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string // public URL of the bucket
}

var _ core.FileStore = (*MinioStore)(nil)

// NewMinioStore connects to the configured endpoint and creates the bucket if it does not exist.
func NewMinioStore(ctx context.Context, conf *core.Config) (*MinioStore, error) {
	sc := conf.Storage
	client, err := minio.New(sc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, ""),
		Secure: sc.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating minio client")
	}

	exists, err := client.BucketExists(ctx, sc.Bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "checking bucket %s", sc.Bucket)
	}
	if !exists {
		if err := client.MakeBucket(ctx, sc.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrapf(err, "creating bucket %s", sc.Bucket)
		}
	}

	return &MinioStore{client: client, bucket: sc.Bucket, baseURL: bucketURL(conf)}, nil
}

func bucketURL(conf *core.Config) string {
	sc := conf.Storage
	if sc.PublicURL != "" {
		return strings.TrimRight(sc.PublicURL, "/") + "/" + sc.Bucket
	}
	scheme := "http://"
	if sc.UseSSL {
		scheme = "https://"
	}
	return scheme + sc.Endpoint + "/" + sc.Bucket
}

func (s *MinioStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	name := objectName(contentType)
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrapf(err, "uploading %s", name)
	}
	return s.baseURL + "/" + name, nil
}

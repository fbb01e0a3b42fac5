package assets

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore deletes objects from a single bucket of an S3 compatible server.
type MinioStore struct {
	client *minio.Client
	bucket string
	hosts  HostMatcher
}

// NewMinioStore builds the client without contacting the server. When hosts is
// empty the endpoint host is the only recognized asset host.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool, hosts []string) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	if len(hosts) == 0 {
		hosts = []string{strings.Split(endpoint, ":")[0]}
	}
	return &MinioStore{client: client, bucket: bucket, hosts: NewHostMatcher(hosts...)}, nil
}

func (s *MinioStore) Owns(rawURL string) bool {
	return s.hosts.Match(rawURL)
}

// ObjectKey extracts the object key from both path-style
// (host/bucket/key) and virtual-host style (bucket.host/key) URLs.
func (s *MinioStore) ObjectKey(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	key := strings.TrimPrefix(u.Path, "/")
	key = strings.TrimPrefix(key, s.bucket+"/")
	if key == "" {
		return "", fmt.Errorf("no object key in %q", rawURL)
	}
	return key, nil
}

func (s *MinioStore) Delete(ctx context.Context, rawURL string) error {
	if !s.Owns(rawURL) {
		return ErrForeignAsset
	}
	key, err := s.ObjectKey(rawURL)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

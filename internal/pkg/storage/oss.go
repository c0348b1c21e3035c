package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSStorage stores files in an Aliyun OSS bucket.
type OSSStorage struct {
	bucket *oss.Bucket
}

func NewOSSStorage(endpoint, accessKeyID, accessKeySecret, bucketName string) (*OSSStorage, error) {
	client, err := oss.New(normalizeEndpoint(endpoint), accessKeyID, accessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to open OSS bucket %s: %w", bucketName, err)
	}

	return &OSSStorage{bucket: bucket}, nil
}

func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" || strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return "https://" + endpoint
}

func objectKey(path string) string {
	return strings.TrimLeft(path, "/")
}

func (s *OSSStorage) Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error) {
	key := objectKey(path)
	opts := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}

	if err := s.bucket.PutObject(key, file, opts...); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

func (s *OSSStorage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	key := objectKey(path)
	body, err := s.bucket.GetObject(key, oss.WithContext(ctx))
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	return body, nil
}

func (s *OSSStorage) Delete(ctx context.Context, path string) error {
	if err := s.bucket.DeleteObject(objectKey(path), oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (s *OSSStorage) GetURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	seconds := int64(expiry / time.Second)
	if seconds <= 0 {
		seconds = 3600
	}
	url, err := s.bucket.SignURL(objectKey(path), oss.HTTPGet, seconds)
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for %s: %w", path, err)
	}
	return url, nil
}

func (s *OSSStorage) Exists(ctx context.Context, path string) (bool, error) {
	ok, err := s.bucket.IsObjectExist(objectKey(path), oss.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return ok, nil
}

func (s *OSSStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	marker := oss.Marker("")

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := s.bucket.ListObjects(oss.Prefix(objectKey(prefix)), marker, oss.MaxKeys(1000), oss.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		for _, obj := range res.Objects {
			if obj.Key == "" || strings.HasSuffix(obj.Key, "/") {
				continue
			}
			objects = append(objects, ObjectInfo{
				Key:          obj.Key,
				Size:         obj.Size,
				ETag:         strings.Trim(obj.ETag, `"`),
				LastModified: obj.LastModified,
			})
		}
		if !res.IsTruncated {
			break
		}
		marker = oss.Marker(res.NextMarker)
	}

	return objects, nil
}

func isNoSuchKey(err error) bool {
	var svcErr oss.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code == "NoSuchKey" || svcErr.StatusCode == 404
	}
	var svcErrPtr *oss.ServiceError
	if errors.As(err, &svcErrPtr) && svcErrPtr != nil {
		return svcErrPtr.Code == "NoSuchKey" || svcErrPtr.StatusCode == 404
	}
	return false
}

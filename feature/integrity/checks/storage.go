package checks

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"food-index/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// StorageReport describes the thumbnail bucket.
type StorageReport struct {
	Bucket       string `json:"bucket"`
	Prefix       string `json:"prefix"`
	PrefixExists bool   `json:"prefix_exists"`
}

func folder(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

// CheckStorage verifies that the bucket exists and the thumbnail prefix holds
// at least one object.
func CheckStorage(ctx context.Context, client storage.Client, bucket, prefix string) (*StorageReport, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	report := &StorageReport{Bucket: bucket, Prefix: prefix}
	opts := minio.ListObjectsOptions{
		Prefix:    folder(prefix),
		Recursive: false,
		MaxKeys:   1,
	}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		report.PrefixExists = true
		break
	}
	return report, nil
}

// FixStorage creates the thumbnail folder marker.
func FixStorage(ctx context.Context, client storage.Client, bucket, prefix string, logger *zap.Logger) error {
	path := folder(prefix)
	if path == "" {
		return nil
	}
	_, err := client.PutObject(ctx, bucket, path, bytes.NewReader([]byte{}), 0, minio.PutObjectOptions{})
	if err != nil {
		logger.Error("Failed to create folder", zap.String("folder", path), zap.Error(err))
		return err
	}
	logger.Info("Created missing folder", zap.String("folder", path))
	return nil
}

package checks

import (
	"context"
	"fmt"

	"grid-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// StorageReport describes the snapshot bucket.
type StorageReport struct {
	Bucket    string `json:"bucket"`
	Exists    bool   `json:"exists"`
	Snapshots int    `json:"snapshots"`
}

// CheckStorage verifies the snapshot bucket and counts snapshots under prefix.
func CheckStorage(ctx context.Context, client storage.Client, bucket, prefix string) (*StorageReport, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	report := &StorageReport{Bucket: bucket, Exists: exists}
	if !exists {
		return report, nil
	}

	opts := minio.ListObjectsOptions{Prefix: prefix + "/", Recursive: true}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		report.Snapshots++
	}
	return report, nil
}

// FixStorage creates the snapshot bucket.
func FixStorage(ctx context.Context, client storage.Client, bucket string, logger *zap.Logger) error {
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	logger.Info("Created snapshot bucket", zap.String("bucket", bucket))
	return nil
}

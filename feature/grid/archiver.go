package grid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"time"

	"grid-sync/core/reconcile"
	"grid-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archiver stores grid snapshots as JSON objects in a bucket.
type Archiver struct {
	client storage.Client
	bucket string
	prefix string
	retain int
	logger *zap.Logger
}

// SnapshotObject describes an archived snapshot.
type SnapshotObject struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

var _ reconcile.SnapshotArchiver = (*Archiver)(nil)

// NewArchiver creates a snapshot archiver writing under prefix.
func NewArchiver(client storage.Client, bucket, prefix string, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// WithRetain keeps only the newest n snapshots after each upload. Zero keeps all.
func (a *Archiver) WithRetain(n int) *Archiver {
	a.retain = n
	return a
}

// EnsureBucket creates the bucket when it does not exist.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	a.logger.Info("Created snapshot bucket", zap.String("bucket", a.bucket))
	return nil
}

// ObjectName returns the object key of a snapshot, ordered by read time:
// <prefix>/2026/10/19/20261019T101500.000Z.json
func (a *Archiver) ObjectName(snap *reconcile.Snapshot) string {
	t := snap.ReadAt.UTC()
	return path.Join(a.prefix, t.Format("2006/01/02"), t.Format("20060102T150405.000Z")+".json")
}

// Archive implements reconcile.SnapshotArchiver.
func (a *Archiver) Archive(ctx context.Context, snap *reconcile.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	objName := a.ObjectName(snap)
	_, err = a.client.PutObject(ctx, a.bucket, objName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot %s: %w", objName, err)
	}

	a.logger.Debug("Archived grid snapshot", zap.String("object", objName), zap.Int("rows", len(snap.Rows)))

	if a.retain > 0 {
		if _, err := a.Prune(ctx, a.retain); err != nil {
			a.logger.Warn("Snapshot pruning failed", zap.Error(err))
		}
	}
	return nil
}

// List returns up to limit snapshots, newest first. A non-positive limit
// returns all of them.
func (a *Archiver) List(ctx context.Context, limit int) ([]SnapshotObject, error) {
	objects, err := a.list(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(objects) > limit {
		objects = objects[:limit]
	}
	return objects, nil
}

// Prune removes every snapshot but the newest retain ones and returns how many
// were removed.
func (a *Archiver) Prune(ctx context.Context, retain int) (int, error) {
	objects, err := a.list(ctx)
	if err != nil {
		return 0, err
	}
	if retain < 0 || len(objects) <= retain {
		return 0, nil
	}
	stale := objects[retain:]

	objectsCh := make(chan minio.ObjectInfo)
	go func() {
		defer close(objectsCh)
		for _, obj := range stale {
			select {
			case objectsCh <- minio.ObjectInfo{Key: obj.Key}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var errs []error
	for rErr := range a.client.RemoveObjects(ctx, a.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("%s: %w", rErr.ObjectName, rErr.Err))
	}
	if len(errs) > 0 {
		return len(stale) - len(errs), fmt.Errorf("failed to remove snapshots: %w", errors.Join(errs...))
	}

	a.logger.Info("Pruned grid snapshots", zap.Int("removed", len(stale)), zap.Int("kept", retain))
	return len(stale), nil
}

// list returns every snapshot under the prefix, newest first. Object keys embed
// the read time, so key order is time order.
func (a *Archiver) list(ctx context.Context) ([]SnapshotObject, error) {
	var out []SnapshotObject
	opts := minio.ListObjectsOptions{Prefix: a.prefix + "/", Recursive: true}
	for obj := range a.client.ListObjects(ctx, a.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		out = append(out, SnapshotObject{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out, nil
}

// Package storage provides the object storage client used to archive grid
// snapshots.
//
// It wraps the MinIO Go client and works against both AWS S3 and self-hosted
// MinIO. The Client interface keeps only the calls the archiver makes, so tests
// can use the testify mock in core/storage/mocks.
//
// # Operations
//
//   - BucketExists and MakeBucket: create the snapshot bucket at startup.
//   - PutObject: uploads a snapshot.
//   - ListObjects: lists snapshots under the configured prefix.
//   - RemoveObjects: prunes snapshots beyond the retention count.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage

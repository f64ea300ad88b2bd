// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a narrow interface. The compliance engine
// uses it as the remote source of rule sets: operators push YAML rule sets under
// a conventional prefix and the rules feature lists and downloads them on sync.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider so storage
// interactions can be mocked in unit tests (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: verify or create the rules bucket.
//   - PutObject: upload a rule set (rules push) or a folder marker.
//   - GetObject: download a rule set as a stream.
//   - ListObjects: list rule sets under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "compliance")
package storage

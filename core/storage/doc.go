// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small interface covering what the food
// search needs from the image bucket: checking bucket access, checking whether a
// thumbnail object exists, issuing presigned download URLs, and listing or creating
// objects for the integrity checks. This
// abstraction supports both AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface makes it easy to mock storage interactions in unit tests
// (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "food-images")
package storage

// Package storage provides object storage access and the object sheet backend.
//
// It wraps the MinIO Go client behind the Client interface so that both AWS S3
// and self-hosted MinIO work, and so tests can use the testify mock in
// core/storage/mocks.
//
// # Object Sheet
//
// ObjectSheet keeps one sheet as a CSV object. OpenObjectSheet downloads and
// decodes it into an in-memory sheet.Sheet; the engine mutates that copy and
// Flush uploads the result. Names ending in ".gz" are gzip-compressed with
// klauspost/compress. The header style is stored in the object's user
// metadata under Header-Style.
//
// A missing object opens as an empty sheet, so the first sync creates it.
//
// # Helpers
//
//   - EnsureBucket: creates the bucket on first upload.
//   - IsNotFound: classifies NoSuchKey and NoSuchBucket responses.
//   - ListSheets: lists .csv and .csv.gz objects under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	sheet, err := storage.OpenObjectSheet(ctx, client, cfg.Storage.Bucket, "machines.csv", cfg.Storage.Region)
//	report := reconcile.NewEngine(sheet, opts, logger).Sync(ctx, records)
package storage

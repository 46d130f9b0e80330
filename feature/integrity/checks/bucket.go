package checks

import (
	"context"
	"fmt"

	"inventory-sync/core/storage"

	"go.uber.org/zap"
)

// BucketReport strictly types the result of an object storage check.
type BucketReport struct {
	Bucket string `json:"bucket"`
	Exists bool   `json:"exists"`
	// Object is the configured sheet and Present whether it was found.
	Object  string   `json:"object"`
	Present bool     `json:"present"`
	Sheets  []string `json:"sheets"`
}

// CheckBucket verifies that bucket exists and lists the sheets it holds.
// A missing object is not an issue: the first sync creates it.
func CheckBucket(ctx context.Context, client storage.Client, bucket, object string) (*BucketReport, error) {
	report := &BucketReport{Bucket: bucket, Object: object, Sheets: []string{}}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.Exists = exists
	if !exists {
		return report, nil
	}

	sheets, err := storage.ListSheets(ctx, client, bucket, "")
	if err != nil {
		return nil, err
	}
	if sheets != nil {
		report.Sheets = sheets
	}
	for _, s := range sheets {
		if s == object {
			report.Present = true
			break
		}
	}
	return report, nil
}

// FixBucket creates the bucket when it is missing.
func FixBucket(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger) error {
	if err := storage.EnsureBucket(ctx, client, bucket, region); err != nil {
		logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}
	logger.Info("Bucket ready", zap.String("bucket", bucket))
	return nil
}

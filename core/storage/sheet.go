package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"inventory-sync/core/reconcile"
	"inventory-sync/core/sheet"

	"github.com/klauspost/compress/gzip"
	"github.com/minio/minio-go/v7"
)

const headerStyleMeta = "Header-Style"

// ObjectSheet is a sheet persisted as one CSV object. Objects whose name ends
// in ".gz" are gzip-compressed. The header style travels in the object's
// user metadata.
//
// The sheet is loaded when opened and written back only by Flush, so one
// ObjectSheet serves exactly one sync pass.
type ObjectSheet struct {
	*sheet.Sheet

	client Client
	bucket string
	object string
	region string
}

// OpenObjectSheet downloads and decodes bucket/object.
// A missing object or bucket opens as an empty sheet.
func OpenObjectSheet(ctx context.Context, client Client, bucket, object, region string) (*ObjectSheet, error) {
	sh := &ObjectSheet{
		Sheet:  sheet.New(),
		client: client,
		bucket: bucket,
		object: object,
		region: region,
	}

	info, err := client.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if IsNotFound(err) {
		return sh, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s/%s: %w", bucket, object, err)
	}

	body, err := client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", bucket, object, err)
	}
	defer body.Close()

	var r io.Reader = body
	if sh.Compressed() {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", object, err)
		}
		defer gz.Close()
		r = gz
	}

	decoded, err := sheet.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", object, err)
	}
	sh.Sheet = decoded

	if raw := metaValue(info.UserMetadata, headerStyleMeta); raw != "" {
		var style reconcile.HeaderStyle
		if err := json.Unmarshal([]byte(raw), &style); err == nil {
			sh.SetHeaderStyle(style)
		}
	}

	return sh, nil
}

// Object returns the object name.
func (o *ObjectSheet) Object() string {
	return o.object
}

// Compressed reports whether the object is stored gzip-compressed.
func (o *ObjectSheet) Compressed() bool {
	return strings.HasSuffix(o.object, ".gz")
}

// Flush encodes the sheet and uploads it, creating the bucket if needed.
func (o *ObjectSheet) Flush(ctx context.Context) error {
	var buf bytes.Buffer
	if o.Compressed() {
		gz := gzip.NewWriter(&buf)
		if err := o.Encode(gz); err != nil {
			return err
		}
		if err := gz.Close(); err != nil {
			return err
		}
	} else if err := o.Encode(&buf); err != nil {
		return err
	}

	if err := EnsureBucket(ctx, o.client, o.bucket, o.region); err != nil {
		return err
	}

	opts := minio.PutObjectOptions{ContentType: "text/csv"}
	if o.Compressed() {
		opts.ContentType = "application/gzip"
	}
	if style, ok := o.HeaderStyle(); ok {
		raw, err := json.Marshal(style)
		if err != nil {
			return err
		}
		opts.UserMetadata = map[string]string{headerStyleMeta: string(raw)}
	}

	if _, err := o.client.PutObject(ctx, o.bucket, o.object, &buf, int64(buf.Len()), opts); err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", o.bucket, o.object, err)
	}
	return nil
}

// ListSheets returns the names of CSV sheet objects under prefix.
func ListSheets(ctx context.Context, client Client, bucket, prefix string) ([]string, error) {
	var names []string
	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", bucket, obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".csv") || strings.HasSuffix(obj.Key, ".csv.gz") {
			names = append(names, obj.Key)
		}
	}
	return names, nil
}

func metaValue(meta map[string]string, key string) string {
	for k, v := range meta {
		if strings.EqualFold(k, key) || strings.EqualFold(k, "X-Amz-Meta-"+key) {
			return v
		}
	}
	return ""
}

package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"inventory-sync/core/reconcile"
	"inventory-sync/core/storage"
	"inventory-sync/core/storage/mocks"

	"github.com/klauspost/compress/gzip"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const bucket = "inventory"

func notFound() error {
	return minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
}

// capturePut records the uploaded bytes and options.
func capturePut(client *mocks.Client, object string, body *[]byte, opts *minio.PutObjectOptions) {
	client.On("PutObject", mock.Anything, bucket, object, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			data, _ := io.ReadAll(args.Get(3).(io.Reader))
			*body = data
			*opts = args.Get(5).(minio.PutObjectOptions)
		}).
		Return(minio.UploadInfo{}, nil)
}

func TestOpenObjectSheet_Missing(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("StatObject", ctx, bucket, "machines.csv", minio.StatObjectOptions{}).Return(minio.ObjectInfo{}, notFound())

	sh, err := storage.OpenObjectSheet(ctx, client, bucket, "machines.csv", "")
	require.NoError(t, err)

	header, err := sh.HeaderRow(ctx)
	require.NoError(t, err)
	assert.Empty(t, header)
	client.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOpenObjectSheet_Existing(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	info := minio.ObjectInfo{UserMetadata: map[string]string{
		"X-Amz-Meta-Header-Style": `{"bold":true,"background":"#000000"}`,
	}}
	client.On("StatObject", ctx, bucket, "machines.csv", minio.StatObjectOptions{}).Return(info, nil)
	client.On("GetObject", ctx, bucket, "machines.csv", minio.GetObjectOptions{}).
		Return(io.NopCloser(strings.NewReader("ComputerName,CPU\nPC1,x\n")), nil)

	sh, err := storage.OpenObjectSheet(ctx, client, bucket, "machines.csv", "")
	require.NoError(t, err)

	header, rows := sh.Table()
	assert.Equal(t, reconcile.HeaderSet{"ComputerName", "CPU"}, header)
	assert.Equal(t, [][]string{{"PC1", "x"}}, rows)

	style, ok := sh.HeaderStyle()
	assert.True(t, ok)
	assert.Equal(t, reconcile.HeaderStyle{Bold: true, Background: "#000000"}, style)
}

func TestOpenObjectSheet_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("StatFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("StatObject", ctx, bucket, "machines.csv", mock.Anything).Return(minio.ObjectInfo{}, errors.New("timeout"))

		_, err := storage.OpenObjectSheet(ctx, client, bucket, "machines.csv", "")
		assert.ErrorContains(t, err, "timeout")
	})

	t.Run("NotGzip", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("StatObject", ctx, bucket, "machines.csv.gz", mock.Anything).Return(minio.ObjectInfo{}, nil)
		client.On("GetObject", ctx, bucket, "machines.csv.gz", mock.Anything).
			Return(io.NopCloser(strings.NewReader("plain,text\n")), nil)

		_, err := storage.OpenObjectSheet(ctx, client, bucket, "machines.csv.gz", "")
		assert.ErrorContains(t, err, "gzip")
	})
}

func TestObjectSheet_SyncAndFlush(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("StatObject", ctx, bucket, "machines.csv", mock.Anything).Return(minio.ObjectInfo{}, notFound())
	client.On("BucketExists", ctx, bucket).Return(true, nil)

	var body []byte
	var opts minio.PutObjectOptions
	capturePut(client, "machines.csv", &body, &opts)

	sh, err := storage.OpenObjectSheet(ctx, client, bucket, "machines.csv", "")
	require.NoError(t, err)

	var pc2, pc1 reconcile.Record
	pc2.Set("ComputerName", "PC2")
	pc2.Set("CPU", "b")
	pc1.Set("ComputerName", "PC1")
	pc1.Set("CPU", "a")

	report := reconcile.NewEngine(sh, reconcile.Options{}, nil).Sync(ctx, []reconcile.Record{pc2, pc1})
	require.NoError(t, report.Err())
	assert.Equal(t, reconcile.SyncResult{Added: 2, Total: 2}, report.SyncResult)

	assert.Equal(t, "ComputerName,CPU\nPC1,a\nPC2,b\n", string(body))
	assert.Equal(t, "text/csv", opts.ContentType)
	assert.JSONEq(t, `{"bold":true,"background":"#4A86E8","foreground":"#FFFFFF"}`, opts.UserMetadata["Header-Style"])
	client.AssertExpectations(t)
}

func TestObjectSheet_FlushCompressed(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("StatObject", ctx, bucket, "machines.csv.gz", mock.Anything).Return(minio.ObjectInfo{}, notFound())
	client.On("BucketExists", ctx, bucket).Return(false, nil)
	client.On("MakeBucket", ctx, bucket, mock.Anything).Return(nil)

	var body []byte
	var opts minio.PutObjectOptions
	capturePut(client, "machines.csv.gz", &body, &opts)

	sh, err := storage.OpenObjectSheet(ctx, client, bucket, "machines.csv.gz", "")
	require.NoError(t, err)
	require.NoError(t, sh.WriteHeaderRow(ctx, reconcile.HeaderSet{"ComputerName"}))
	require.NoError(t, sh.AppendRow(ctx, []string{"PC1"}))
	require.NoError(t, sh.Flush(ctx))

	gz, err := gzip.NewReader(bytes.NewReader(body))
	require.NoError(t, err)
	plain, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, "ComputerName\nPC1\n", string(plain))
	assert.Equal(t, "application/gzip", opts.ContentType)
	assert.Nil(t, opts.UserMetadata, "no style was applied")
}

func TestObjectSheet_FlushFailure(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("StatObject", ctx, bucket, "machines.csv", mock.Anything).Return(minio.ObjectInfo{}, notFound())
	client.On("BucketExists", ctx, bucket).Return(true, nil)
	client.On("PutObject", mock.Anything, bucket, "machines.csv", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("quota exceeded"))

	sh, err := storage.OpenObjectSheet(ctx, client, bucket, "machines.csv", "")
	require.NoError(t, err)

	var pc1 reconcile.Record
	pc1.Set("ComputerName", "PC1")
	report := reconcile.NewEngine(sh, reconcile.Options{}, nil).Sync(ctx, []reconcile.Record{pc1})

	assert.False(t, report.Success)
	assert.ErrorIs(t, report.Err(), reconcile.ErrStoreWrite)
	assert.Contains(t, report.Message, "quota exceeded")
}

func TestListSheets(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)

	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "sites/a.csv"}
	ch <- minio.ObjectInfo{Key: "sites/readme.txt"}
	ch <- minio.ObjectInfo{Key: "sites/b.csv.gz"}
	close(ch)
	client.On("ListObjects", ctx, bucket, minio.ListObjectsOptions{Prefix: "sites/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	names, err := storage.ListSheets(ctx, client, bucket, "sites/")
	require.NoError(t, err)
	assert.Equal(t, []string{"sites/a.csv", "sites/b.csv.gz"}, names)
}

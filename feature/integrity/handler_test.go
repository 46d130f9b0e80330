package integrity

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"inventory-sync/core/sheet"
	"inventory-sync/core/storage"
	"inventory-sync/core/storage/mocks"
	"inventory-sync/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestApp(source StoreSource, db *gorm.DB, client storage.Client) *fiber.App {
	app := fiber.New()
	svc := NewService(source, db, client, storage.Config{Bucket: "inventory"}, "machines.csv", zap.NewNop())
	NewHandler(svc).RegisterRoutes(app)
	return app
}

func TestHandleIntegrityCheck(t *testing.T) {
	app := setupTestApp(sheetSource{sheet: healthySheet()}, nil, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var report Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.True(t, report.Healthy)
	assert.Equal(t, "ComputerName", report.Store.KeyField)
}

func TestHandleStoreCheck(t *testing.T) {
	unsorted := sheet.FromTable([]string{"ComputerName"}, [][]string{{"PC2"}, {"PC1"}})
	app := setupTestApp(sheetSource{sheet: unsorted}, nil, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/store", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var report checks.StoreReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.False(t, report.Healthy)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, checks.CheckUnsorted, report.Issues[0].Check)

	resp, err = app.Test(httptest.NewRequest("GET", "/integrity/store?fix=true", nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.False(t, report.Healthy, "GET never modifies the store")
	_, rows := unsorted.Table()
	assert.Equal(t, [][]string{{"PC2"}, {"PC1"}}, rows)
}

func TestHandleStoreFix(t *testing.T) {
	unsorted := sheet.FromTable([]string{"ComputerName"}, [][]string{{"PC2"}, {"PC1"}})
	app := setupTestApp(sheetSource{sheet: unsorted}, nil, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/integrity/store/fix", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var report checks.StoreReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.True(t, report.Healthy)
	_, rows := unsorted.Table()
	assert.Equal(t, [][]string{{"PC1"}, {"PC2"}}, rows)

	app = setupTestApp(sheetSource{err: errors.New("store offline")}, nil, nil)
	resp, err = app.Test(httptest.NewRequest("POST", "/integrity/store/fix", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestHandleStoreCheck_Error(t *testing.T) {
	app := setupTestApp(sheetSource{err: errors.New("store offline")}, nil, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/store", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestHandleSchemaCheck(t *testing.T) {
	app := setupTestApp(sheetSource{sheet: healthySheet()}, nil, nil)
	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/schema", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	app = setupTestApp(sheetSource{sheet: healthySheet()}, setupSQLite(t, true), nil)
	resp, err = app.Test(httptest.NewRequest("GET", "/integrity/schema", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var report checks.SchemaReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.True(t, report.Matched)
}

func TestHandleBucketCheck(t *testing.T) {
	app := setupTestApp(sheetSource{sheet: healthySheet()}, nil, nil)
	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/bucket", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "inventory").Return(true, nil)
	ch := make(chan minio.ObjectInfo)
	close(ch)
	client.On("ListObjects", mock.Anything, "inventory", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	app = setupTestApp(sheetSource{sheet: healthySheet()}, nil, client)
	resp, err = app.Test(httptest.NewRequest("GET", "/integrity/bucket", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var report checks.BucketReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.True(t, report.Exists)
	assert.False(t, report.Present)
}

func TestHandleBucketCheck_Fix(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "inventory").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "inventory", mock.Anything).Return(nil)

	app := setupTestApp(sheetSource{sheet: healthySheet()}, nil, client)
	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/bucket?fix=true", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)

	resp, err = app.Test(httptest.NewRequest("POST", "/integrity/bucket/fix", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "fixed", body["status"])
	client.AssertCalled(t, "MakeBucket", mock.Anything, "inventory", mock.Anything)
}

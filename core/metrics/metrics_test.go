package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSync(t *testing.T) {
	successBefore := testutil.ToFloat64(SyncsTotal.WithLabelValues("success"))
	insertsBefore := testutil.ToFloat64(RowsWritten.WithLabelValues("insert"))
	failedBefore := testutil.ToFloat64(RowWriteFailures.WithLabelValues("update"))
	skippedBefore := testutil.ToFloat64(RecordsSkipped)

	ObserveSync(SyncOutcome{
		Status:         "success",
		Updated:        2,
		Added:          3,
		Total:          12,
		Skipped:        1,
		FailedUpdates:  1,
		Duration:       50 * time.Millisecond,
		TotalIsCurrent: true,
	})

	assert.Equal(t, successBefore+1, testutil.ToFloat64(SyncsTotal.WithLabelValues("success")))
	assert.Equal(t, insertsBefore+3, testutil.ToFloat64(RowsWritten.WithLabelValues("insert")))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(RowWriteFailures.WithLabelValues("update")))
	assert.Equal(t, skippedBefore+1, testutil.ToFloat64(RecordsSkipped))
	assert.Equal(t, float64(12), testutil.ToFloat64(StoreRows))

	ObserveSync(SyncOutcome{Status: "failure", Total: 99})
	assert.Equal(t, float64(12), testutil.ToFloat64(StoreRows), "failed passes leave the gauge alone")
}

func TestMiddlewareAndHandler(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/inventory/:key", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })
	app.Get("/metrics", Handler())

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/inventory/:key", "404"))

	resp, err := app.Test(httptest.NewRequest("GET", "/inventory/PC1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/inventory/:key", "404")))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "inventory_syncs_total")
}

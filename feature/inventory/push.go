package inventory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"inventory-sync/core/middleware/auth"
	"inventory-sync/core/reconcile"

	"github.com/gofiber/fiber/v2"
)

// PushClient sends snapshots to a remote inventory server.
type PushClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

// NewPushClient creates a client for the server at baseURL.
func NewPushClient(baseURL, apiKey string, timeout time.Duration) *PushClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PushClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
	}
}

// Push posts records to /inventory/sync and returns the server's report.
// A report is returned whenever the server answered with one, even on a
// non-2xx status; err is set for transport failures and failed passes.
func (p *PushClient) Push(records []reconcile.Record, dryRun bool) (*reconcile.Report, error) {
	agent := fiber.Post(p.baseURL + "/inventory/sync")
	agent.Timeout(p.timeout)
	if p.apiKey != "" {
		agent.Set(auth.HeaderName, p.apiKey)
	}
	agent.JSON(SyncRequest{Records: records, DryRun: dryRun})

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("push to %s failed: %w", p.baseURL, errs[0])
	}

	var report reconcile.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("push to %s: unexpected response (status %d): %s", p.baseURL, status, strings.TrimSpace(string(body)))
	}
	if status != fiber.StatusOK || !report.Success {
		msg := report.Message
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return &report, fmt.Errorf("push to %s rejected (status %d): %s", p.baseURL, status, msg)
	}
	return &report, nil
}

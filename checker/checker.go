package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// CheckItem is one unit of work submitted to the external checker.
type CheckItem struct {
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// BatchRequest is a bounded-size chunk of a larger work list. The
// correlation id ties the chunk back to the dispatching invocation so that
// the asynchronous result callback can find its running total.
type BatchRequest struct {
	CorrelationID string      `json:"correlationId"`
	InvocationID  string      `json:"invocationId"`
	BatchID       string      `json:"batchId"`
	Items         []CheckItem `json:"items"`
}

// Checker is the external verification service. CheckBulk is
// fire-and-acknowledge: a nil error means the batch was accepted, and the
// real per-item results arrive later through the accumulation callback.
type Checker interface {
	CheckBulk(ctx context.Context, req BatchRequest) error
}

// HTTPChecker submits batches to a checker service over HTTP.
type HTTPChecker struct {
	endpoint string
	client   *http.Client
}

var _ Checker = (*HTTPChecker)(nil)

// NewHTTPChecker creates a checker client for the given endpoint. A
// timeout of 0 defaults to 30 seconds.
func NewHTTPChecker(endpoint string, timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPChecker{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// CheckBulk posts the batch as JSON. Any transport failure or non-2xx
// response is an error; the response body is otherwise discarded.
func (c *HTTPChecker) CheckBulk(ctx context.Context, req BatchRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return errors.Wrapf(err, "failed to encode batch %s", req.BatchID)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "failed to build request for batch %s", req.BatchID)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Correlation-Id", req.CorrelationID)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return errors.Wrapf(err, "checker request failed for batch %s", req.BatchID)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("checker rejected batch %s: %s", req.BatchID, resp.Status)
	}
	return nil
}

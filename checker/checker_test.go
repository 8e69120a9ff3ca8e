package checker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBulkPostsBatchAsJSON(t *testing.T) {
	var received BatchRequest
	var correlationHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		correlationHeader = r.Header.Get("X-Correlation-Id")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	chk := NewHTTPChecker(srv.URL, 0)
	req := BatchRequest{
		CorrelationID: "bulk-check-job-1-0",
		InvocationID:  "job-1",
		BatchID:       "batch-1",
		Items: []CheckItem{
			{ID: "item-1", Attributes: map[string]string{"name": "alpha"}},
			{ID: "item-2"},
		},
	}

	require.NoError(t, chk.CheckBulk(context.Background(), req))
	assert.Equal(t, "bulk-check-job-1-0", correlationHeader)
	assert.Equal(t, req.InvocationID, received.InvocationID)
	assert.Equal(t, req.BatchID, received.BatchID)
	require.Len(t, received.Items, 2)
	assert.Equal(t, "alpha", received.Items[0].Attributes["name"])
}

func TestCheckBulkNonSuccessStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	chk := NewHTTPChecker(srv.URL, 0)
	err := chk.CheckBulk(context.Background(), BatchRequest{BatchID: "batch-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checker rejected batch batch-1")
}

func TestCheckBulkTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	chk := NewHTTPChecker(srv.URL, 0)
	err := chk.CheckBulk(context.Background(), BatchRequest{BatchID: "batch-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checker request failed")
}

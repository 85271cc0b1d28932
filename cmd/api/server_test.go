package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csr-insights-go/internal/classifier"
	"csr-insights-go/internal/customer"
	"csr-insights-go/internal/logger"
	"csr-insights-go/internal/processor"
	"csr-insights-go/internal/router"
)

type constScorer float64

func (c constScorer) Compound(string) float64 { return float64(c) }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logger.NewWithOutput(io.Discard)
	rt, err := router.New(router.ReferenceRoster(), log.Entry)
	require.NoError(t, err)
	dir := customer.NewMemoryDirectory(customer.ReferenceCustomers(time.Now())...)
	proc := processor.New(processor.Deps{
		Classifier: classifier.New(classifier.Options{Backend: classifier.BackendLexicon, Scorer: constScorer(-0.6), Log: log.Entry}),
		Router:     rt,
		Directory:  dir,
		Log:        log.Entry,
	})
	srv := httptest.NewServer((&server{proc: proc, dir: dir, log: log}).routes())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func TestCallFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/route", map[string]string{
		"customer_text": "my bill is wrong",
		"phone_number":  "555-987-6543",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id, _ := body["call_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Maria Garcia", body["customer_info"].(map[string]interface{})["name"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/calls/"+id+"/transcript", map[string]string{"speaker": "customer", "text": "hello"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/calls/"+id+"/accept", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/calls/"+id+"/accept", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = do(t, http.MethodPost, srv.URL+"/api/calls/"+id+"/transcript", map[string]string{"speaker": "customer", "text": "still wrong"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, body["analysis"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/calls/"+id+"/transcript", map[string]string{"speaker": "robot", "text": "beep"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/calls/"+id+"/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["total_interactions"])

	resp, body = do(t, http.MethodGet, srv.URL+"/api/calls/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "active", body["status"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/calls/"+id+"/end", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, http.MethodPost, srv.URL+"/api/calls/"+id+"/end", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ended", body["call"].(map[string]interface{})["status"])

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/calls/"+id+"/summary", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEndpoints(t *testing.T) {
	srv := newTestServer(t)

	tests := map[string]struct {
		method string
		path   string
		body   interface{}
		status int
	}{
		"health":             {method: http.MethodGet, path: "/healthz", status: http.StatusOK},
		"metrics":            {method: http.MethodGet, path: "/metrics", status: http.StatusOK},
		"analyze":            {method: http.MethodPost, path: "/api/analyze", body: map[string]string{"customer_text": "no signal"}, status: http.StatusOK},
		"analyze_empty":      {method: http.MethodPost, path: "/api/analyze", body: map[string]string{}, status: http.StatusBadRequest},
		"route_empty":        {method: http.MethodPost, path: "/api/route", body: map[string]string{}, status: http.StatusBadRequest},
		"customer_found":     {method: http.MethodGet, path: "/api/customer/5551234567", status: http.StatusOK},
		"customer_missing":   {method: http.MethodGet, path: "/api/customer/5550000000", status: http.StatusNotFound},
		"csrs":               {method: http.MethodGet, path: "/api/csrs", status: http.StatusOK},
		"pending":            {method: http.MethodGet, path: "/api/calls/pending", status: http.StatusOK},
		"unknown_call":       {method: http.MethodGet, path: "/api/calls/call_nope", status: http.StatusNotFound},
		"accept_unknown":     {method: http.MethodPost, path: "/api/calls/call_nope/accept", status: http.StatusNotFound},
		"stats":              {method: http.MethodGet, path: "/api/stats", status: http.StatusOK},
		"insights":           {method: http.MethodGet, path: "/api/insights", status: http.StatusOK},
		"dataset_not_loaded": {method: http.MethodGet, path: "/api/dataset", status: http.StatusNotFound},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			resp, _ := do(t, tc.method, srv.URL+tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestBadJSON(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/api/route", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

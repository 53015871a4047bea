package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/bookdash/internal/books"
)

var _ books.Observer = (*Registry)(nil)

func TestRegistry_ObserveRequest(t *testing.T) {
	reg := NewRegistry()
	reg.ObserveRequest("GetBooks", "ok", 20*time.Millisecond)
	reg.ObserveRequest("GetBooks", "ok", 30*time.Millisecond)
	reg.ObserveRequest("CreateBook", "http_error", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.requests.WithLabelValues("GetBooks", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.requests.WithLabelValues("CreateBook", "http_error")))
	assert.Equal(t, 2, testutil.CollectAndCount(reg.duration))
}

func TestRouter_Metrics(t *testing.T) {
	reg := NewRegistry()
	reg.ObserveRequest("DeleteBookByID", "ok", time.Millisecond)

	srv := httptest.NewServer(Router(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bookdash_api_requests_total{operation="DeleteBookByID",outcome="ok"} 1`)
	assert.Contains(t, string(body), "bookdash_go_goroutines")
	assert.Contains(t, string(body), "bookdash_api_request_duration_seconds_bucket")
}

func TestRouter_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	Router(NewRegistry()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_StartAndShutdown(t *testing.T) {
	s := NewServer("127.0.0.1:0", NewRegistry(), nil)
	require.NoError(t, s.Start())

	resp, err := http.Get("http://" + s.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Shutdown(context.Background()))
	_, err = http.Get("http://" + s.Addr() + "/health")
	assert.Error(t, err)
}

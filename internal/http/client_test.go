package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, r.Header.Get("User-Agent"))
	})
	mux.HandleFunc("/file", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "5")
		if r.Method == http.MethodGet {
			fmt.Fprint(w, "audio")
		}
	})
	mux.HandleFunc("/missing", http.NotFound)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetString(t *testing.T) {
	srv := testServer(t)

	body, err := NewClient().GetString(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, body)

	body, err = NewClient(WithUserAgent("test-agent")).GetString(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "test-agent", body)
}

func TestClient_StatusError(t *testing.T) {
	srv := testServer(t)

	_, err := NewClient().Get(context.Background(), srv.URL+"/missing")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestClient_GetFileSize(t *testing.T) {
	srv := testServer(t)

	size, err := NewClient().GetFileSize(context.Background(), srv.URL+"/file")
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)
}

func TestClient_DownloadFile(t *testing.T) {
	srv := testServer(t)
	dest := filepath.Join(t.TempDir(), "song.mp3")

	var last int64
	err := NewClient().DownloadFile(context.Background(), srv.URL+"/file", dest, func(written, total int64) {
		last = written
	})
	require.NoError(t, err)
	assert.EqualValues(t, 5, last)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file left behind")
}

func TestClient_DownloadFileFailureLeavesNothing(t *testing.T) {
	srv := testServer(t)
	dest := filepath.Join(t.TempDir(), "song.mp3")

	err := NewClient().DownloadFile(context.Background(), srv.URL+"/missing", dest, nil)
	require.Error(t, err)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithProxy(t *testing.T) {
	c := NewClient(WithProxy(ProxyManual, "127.0.0.1", 3128))
	transport, ok := c.httpClient.Transport.(*http.Transport)
	require.True(t, ok)

	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)
	proxy, err := transport.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:3128", proxy.String())

	c = NewClient(WithProxy(ProxyNone, "", 0))
	assert.Nil(t, c.httpClient.Transport.(*http.Transport).Proxy)
}

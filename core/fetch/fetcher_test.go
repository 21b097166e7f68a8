package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/webclipper/core"
)

func TestFetch_SendsBrowserUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><p>hello</p></body></html>"))
	}))
	t.Cleanup(srv.Close)

	f := New(WithClient(srv.Client()))
	res, err := f.Fetch(context.Background(), srv.URL+"/a")
	require.NoError(t, err)

	assert.Equal(t, UserAgent, gotUA)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, srv.URL+"/a", res.URL)
	assert.Contains(t, res.HTML, "<p>hello</p>")
}

func TestFetch_NonSuccessStatusIsFetchError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	f := New(WithClient(srv.Client()))
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var ferr *core.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, http.StatusServiceUnavailable, ferr.StatusCode)
	assert.Equal(t, srv.URL, ferr.URL)
	assert.Equal(t, int32(1), calls.Load(), "no retries")
}

func TestFetch_TransportErrorIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := New().Fetch(context.Background(), addr)
	require.Error(t, err)
	assert.True(t, core.IsFetch(err))

	var ferr *core.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Zero(t, ferr.StatusCode)
}

func TestFetch_DecodesDeclaredCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "café" in Latin-1.
		w.Write([]byte("<p>caf\xe9</p>"))
	}))
	t.Cleanup(srv.Close)

	res, err := New(WithClient(srv.Client())).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, res.HTML, "café")
}

func TestFetch_OversizedBodyIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(strings.Repeat("a", 1000)))
	}))
	t.Cleanup(srv.Close)

	res, err := New(WithClient(srv.Client()), WithMaxBytes(100)).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Nil(t, res)

	var ferr *core.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, http.StatusOK, ferr.StatusCode)
	assert.Contains(t, err.Error(), "exceeds 100 bytes")
}

func TestFetch_BodyAtLimitIsAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(strings.Repeat("a", 100)))
	}))
	t.Cleanup(srv.Close)

	res, err := New(WithClient(srv.Client()), WithMaxBytes(100)).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, res.HTML, 100)
}

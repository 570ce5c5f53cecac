package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGet_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := NewClient(nil, nil).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestClientGet_InvalidURL(t *testing.T) {
	_, err := NewClient(nil, nil).Get(context.Background(), "not-a-valid-url")
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestClientGet_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	result, err := NewClient(nil, nil).Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.NotNil(t, result) // Result is returned even on error
	assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "503")
	assert.False(t, fetchErr.Timeout())
}

func TestClientGet_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := NewClient(nil, &Options{Timeout: 50 * time.Millisecond})
	_, err := client.Get(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, fetchErr.Timeout())
}

func TestClientGet_DecodesBodies(t *testing.T) {
	page := []byte("<html><body><table id=\"grades\"></table></body></html>")

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	_, _ = bw.Write(page)
	require.NoError(t, bw.Close())

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, _ = gw.Write(page)
	require.NoError(t, gw.Close())

	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{"identity", "", page},
		{"brotli", "br", br.Bytes()},
		{"gzip", "gzip", gz.Bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, acceptEncoding, r.Header.Get("Accept-Encoding"))
				if tt.encoding != "" {
					w.Header().Set("Content-Encoding", tt.encoding)
				}
				_, _ = w.Write(tt.body)
			}))
			defer server.Close()

			result, err := NewClient(nil, nil).Get(context.Background(), server.URL)
			require.NoError(t, err)
			assert.Equal(t, string(page), result.HTML)
		})
	}
}

func TestClientGet_UnsupportedEncoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "zstd")
		_, _ = w.Write([]byte("??"))
	}))
	defer server.Close()

	_, err := NewClient(nil, nil).Get(context.Background(), server.URL)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "decode")
}

func TestClientPostForm_FollowsRedirectWithCookies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "11-12345-1", r.PostForm.Get("UserName"))
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		http.Redirect(w, r, "/Student", http.StatusFound)
	})
	mux.HandleFunc("GET /Student", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session")
		if err != nil || c.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("home"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	result, err := NewClient(jar, nil).PostForm(context.Background(), server.URL+"/",
		url.Values{"UserName": {"11-12345-1"}, "Password": {"secret"}})
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/Student", result.FinalURL)
	assert.Equal(t, "home", result.HTML)
}

func TestError_Unwrap(t *testing.T) {
	cause := context.DeadlineExceeded
	err := &Error{URL: "http://x", Message: "HTTP request failed", Cause: cause}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, err.Timeout())
	assert.Equal(t, "fetch error for http://x: HTTP request failed: context deadline exceeded", err.Error())
}

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
)

func newTestService(t *testing.T, production bool) *Service {
	t.Helper()
	config := common.NewDefaultConfig()
	config.Fetch.RateLimit = "1ms"
	if production {
		config.Environment = "production"
	}
	return NewService(config, arbor.NewLogger())
}

func TestValidateURL(t *testing.T) {
	svc := newTestService(t, true)

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https ok", "https://example.com/page", false},
		{"http ok", "http://example.com", false},
		{"ftp rejected", "ftp://example.com/file", true},
		{"no host", "https://", true},
		{"relative", "/just/a/path", true},
		{"localhost blocked in production", "http://localhost:8080", true},
		{"loopback blocked in production", "http://127.0.0.1/", true},
		{"private blocked in production", "http://192.168.1.10/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateURLDevelopmentAllowsLocal(t *testing.T) {
	svc := newTestService(t, false)
	assert.NoError(t, svc.ValidateURL("http://localhost:8080/test"))
	assert.NoError(t, svc.ValidateURL("http://127.0.0.1/test"))
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	svc := newTestService(t, false)

	body, contentType, err := svc.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "hello")
	assert.Contains(t, contentType, "text/html")
}

func TestGetNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	svc := newTestService(t, false)

	_, _, err := svc.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "410")
}

func TestGetBodySizeCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer server.Close()

	config := common.NewDefaultConfig()
	config.Fetch.RateLimit = "1ms"
	config.Fetch.MaxBodySize = 1024
	svc := NewService(config, arbor.NewLogger())

	_, _, err := svc.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "byte limit")
}

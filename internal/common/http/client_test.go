package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SetsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tests := []struct {
		name      string
		userAgent string
		header    string
		want      string
	}{
		{"default", "", "", DefaultUserAgent},
		{"configured", "intent-fallback/1.0", "", "intent-fallback/1.0"},
		{"caller header wins", "intent-fallback/1.0", "custom/2.0", "custom/2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("User-Agent", tt.header)
			}

			resp, err := NewClient(time.Second, tt.userAgent).Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = NewClient(50*time.Millisecond, "").Do(req)
	assert.Error(t, err)
}

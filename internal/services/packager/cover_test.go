package packager

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/killallgit/r2get/pkg/errors"
	"github.com/killallgit/r2get/pkg/logging"
)

func TestCoverFetcher(t *testing.T) {
	cover := makeJPEG(t, 10, 10)

	mux := http.NewServeMux()
	mux.HandleFunc("/ok.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg; charset=binary")
		_, _ = w.Write(cover)
	})
	mux.HandleFunc("/missing.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher := NewCoverFetcher(5*time.Second, "r2get-test", logging.Discard())

	t.Run("jpeg", func(t *testing.T) {
		data, err := fetcher.Fetch(context.Background(), server.URL+"/ok.jpg")
		require.NoError(t, err)
		assert.Equal(t, cover, data)
	})

	warnings := []struct {
		name   string
		url    string
		reason string
	}{
		{"not found", server.URL + "/missing.jpg", "HTTP 404"},
		{"wrong type", server.URL + "/png", "image/png"},
		{"no url", "", "no image"},
		{"unreachable", "http://127.0.0.1:1/x.jpg", ""},
	}
	for _, tt := range warnings {
		t.Run(tt.name, func(t *testing.T) {
			data, err := fetcher.Fetch(context.Background(), tt.url)
			assert.Nil(t, data)
			require.Error(t, err)
			assert.True(t, apperrors.IsAssetWarning(err))
			assert.Equal(t, apperrors.ClassAsset, apperrors.ClassOf(err))
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

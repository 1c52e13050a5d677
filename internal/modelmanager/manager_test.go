package modelmanager

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haasonsaas/conduit/pkg/conduit"
)

func newTestManager(t *testing.T, body []byte) (*Manager, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)

	root := t.TempDir()
	mgr, err := New(context.Background(), Config{
		Root: root,
		SourceURL: func(modelID string) (string, error) {
			return srv.URL, nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return mgr, srv
}

func TestDownloadThenIsCachedAndLocalPath(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager(t, []byte("fake weights"))

	if mgr.IsCached("org/model") {
		t.Fatalf("should not be cached before download")
	}
	if err := mgr.Download(context.Background(), "org/model"); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !mgr.IsCached("org/model") {
		t.Fatalf("should be cached after download")
	}
	path, err := mgr.LocalPath("org/model")
	if err != nil {
		t.Fatalf("LocalPath: %v", err)
	}
	if path == "" {
		t.Fatalf("expected non-empty local path")
	}
}

func TestLocalPathFailsWhenNotCached(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager(t, []byte("x"))
	_, err := mgr.LocalPath("missing/model")
	if err == nil {
		t.Fatalf("expected error for uncached model")
	}
	if cerr, ok := err.(*conduit.Error); !ok || cerr.Kind != conduit.ErrModelNotCached {
		t.Fatalf("expected ModelNotCached, got %v", err)
	}
}

func TestDownloadValidatedRejectsChecksumMismatch(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager(t, []byte("fake weights"))
	err := mgr.DownloadValidated(context.Background(), "org/model", "deadbeef")
	if err == nil {
		t.Fatalf("expected checksum mismatch error")
	}
	if mgr.IsCached("org/model") {
		t.Fatalf("model should not be cached after a checksum mismatch")
	}
}

func TestEstimateDownloadSize(t *testing.T) {
	t.Parallel()

	body := []byte("0123456789")
	mgr, _ := newTestManager(t, body)
	size, err := mgr.EstimateDownloadSize(context.Background(), "org/model")
	if err != nil {
		t.Fatalf("EstimateDownloadSize: %v", err)
	}
	if size != int64(len(body)) {
		t.Fatalf("size = %d, want %d", size, len(body))
	}
}

func TestCachedModelsAndCacheSize(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager(t, []byte("abcdefghij"))
	if err := mgr.Download(context.Background(), "a/one"); err != nil {
		t.Fatalf("Download a: %v", err)
	}
	if err := mgr.Download(context.Background(), "b/two"); err != nil {
		t.Fatalf("Download b: %v", err)
	}

	ids, err := mgr.CachedModels()
	if err != nil {
		t.Fatalf("CachedModels: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("CachedModels = %v, want 2 entries", ids)
	}

	size, err := mgr.CacheSize()
	if err != nil {
		t.Fatalf("CacheSize: %v", err)
	}
	if size != 20 {
		t.Fatalf("CacheSize = %d, want 20", size)
	}
}

func TestDeleteAndClearCache(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager(t, []byte("abcdefghij"))
	mgr.Download(context.Background(), "a/one")
	mgr.Download(context.Background(), "b/two")

	if err := mgr.Delete("a/one"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mgr.IsCached("a/one") {
		t.Fatalf("a/one should be gone after Delete")
	}

	if err := mgr.ClearCache(); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}
	ids, _ := mgr.CachedModels()
	if len(ids) != 0 {
		t.Fatalf("expected empty cache after ClearCache, got %v", ids)
	}
}

func TestEvictToFitRemovesOldestFirst(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager(t, []byte("abcdefghij")) // 10 bytes each
	mgr.Download(context.Background(), "a/one")
	mgr.Download(context.Background(), "b/two")
	mgr.Download(context.Background(), "c/three")

	if err := mgr.EvictToFit(20); err != nil {
		t.Fatalf("EvictToFit: %v", err)
	}

	size, _ := mgr.CacheSize()
	if size > 20 {
		t.Fatalf("CacheSize = %d after EvictToFit(20), want <= 20", size)
	}
	if !mgr.IsCached("c/three") {
		t.Fatalf("most recently downloaded model should remain resident")
	}
}

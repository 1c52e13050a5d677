package modelmanager

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/haasonsaas/conduit/pkg/conduit"
)

const defaultRequestTimeout = 10 * time.Minute

// Config configures a Manager.
type Config struct {
	// Root is the on-disk directory models are downloaded into; one
	// subdirectory per model id.
	Root string
	// SourceURL resolves a model id to its download URL.
	SourceURL func(modelID string) (string, error)
	HTTPClient *http.Client
	// WatchFS enables fsnotify-based reaping of out-of-band deletions.
	WatchFS bool
}

// Manager implements download, validation, size-estimation, and local
// path resolution for on-device models, tracked by an on-disk YAML
// manifest per model.
type Manager struct {
	root       string
	sourceURL  func(modelID string) (string, error)
	httpClient *http.Client

	mu      sync.Mutex
	removed map[string]bool
}

// New constructs a Manager, ensuring Root exists and optionally starting
// the fsnotify watch loop.
func New(ctx context.Context, cfg Config) (*Manager, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("modelmanager: Root is required")
	}
	if cfg.SourceURL == nil {
		return nil, fmt.Errorf("modelmanager: SourceURL is required")
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("modelmanager: create root: %w", err)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultRequestTimeout}
	}

	m := &Manager{
		root:       cfg.Root,
		sourceURL:  cfg.SourceURL,
		httpClient: client,
		removed:    make(map[string]bool),
	}

	if cfg.WatchFS {
		if _, err := watchCacheRoot(ctx, cfg.Root, m.markRemoved); err != nil {
			return nil, fmt.Errorf("modelmanager: start cache watch: %w", err)
		}
	}

	return m, nil
}

func (m *Manager) markRemoved(modelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed[modelID] = true
}

func (m *Manager) wasExternallyRemoved(modelID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removed[modelID]
}

func (m *Manager) clearRemoved(modelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.removed, modelID)
}

// sanitizedID maps a model id (which may contain path separators, e.g.
// "org/repo") to a single safe directory component.
func sanitizedID(modelID string) string {
	return strings.ReplaceAll(modelID, "/", "__")
}

func (m *Manager) modelDir(modelID string) string {
	return filepath.Join(m.root, sanitizedID(modelID))
}

func modelIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.ReplaceAll(base, "__", "/")
}

// IsCached reports whether modelID's weights and manifest are both
// present on disk and haven't been reaped by an out-of-band deletion.
func (m *Manager) IsCached(modelID string) bool {
	if m.wasExternallyRemoved(modelID) {
		return false
	}
	dir := m.modelDir(modelID)
	if _, err := os.Stat(filepath.Join(dir, "weights.bin")); err != nil {
		return false
	}
	if _, err := os.Stat(manifestPath(dir)); err != nil {
		return false
	}
	return true
}

// LocalPath returns the weights file path for a cached model, or
// ModelNotCached if it isn't resident.
func (m *Manager) LocalPath(modelID string) (string, error) {
	if !m.IsCached(modelID) {
		return "", conduit.ModelNotCached(modelID)
	}
	return filepath.Join(m.modelDir(modelID), "weights.bin"), nil
}

// EstimateDownloadSize reports modelID's download size in bytes via a
// HEAD request, without downloading the body.
func (m *Manager) EstimateDownloadSize(ctx context.Context, modelID string) (int64, error) {
	url, err := m.sourceURL(modelID)
	if err != nil {
		return 0, conduit.ModelNotCached(modelID)
	}
	return estimateSize(ctx, m.httpClient, url)
}

// Download fetches modelID's weights into the cache root, overwriting
// any existing entry, without verifying a checksum against a known-good
// value (there isn't one to check against for an arbitrary source URL).
func (m *Manager) Download(ctx context.Context, modelID string) error {
	return m.downloadInternal(ctx, modelID, "")
}

// DownloadValidated downloads modelID and verifies the computed sha256
// checksum matches expectedChecksum, rejecting (and discarding) the
// download on mismatch.
func (m *Manager) DownloadValidated(ctx context.Context, modelID, expectedChecksum string) error {
	return m.downloadInternal(ctx, modelID, expectedChecksum)
}

func (m *Manager) downloadInternal(ctx context.Context, modelID, expectedChecksum string) error {
	url, err := m.sourceURL(modelID)
	if err != nil {
		return conduit.ModelNotCached(modelID)
	}

	dir := m.modelDir(modelID)
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return fmt.Errorf("modelmanager: prepare root: %w", err)
	}
	stagedFile, checksum, size, err := downloadToStaging(ctx, m.httpClient, url, m.root)
	if err != nil {
		return err
	}
	if expectedChecksum != "" && checksum != expectedChecksum {
		os.Remove(stagedFile)
		return fmt.Errorf("modelmanager: checksum mismatch for %s: got %s, want %s", modelID, checksum, expectedChecksum)
	}

	if err := installStaged(stagedFile, dir, modelID, url, checksum, size); err != nil {
		return err
	}
	m.clearRemoved(modelID)
	return nil
}

// CachedModels lists the model ids currently resident on disk.
func (m *Manager) CachedModels() ([]string, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil, fmt.Errorf("modelmanager: read cache root: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id := modelIDFromPath(e.Name())
		if m.IsCached(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// CacheSize returns the total bytes occupied by every resident model's
// weights, per its manifest.
func (m *Manager) CacheSize() (int64, error) {
	ids, err := m.CachedModels()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, id := range ids {
		man, err := readManifest(manifestPath(m.modelDir(id)))
		if err != nil {
			continue
		}
		total += man.WeightsSize
	}
	return total, nil
}

// EvictToFit deletes the oldest-downloaded resident models (by
// DownloadedAt) until total cache size is at or under maxSize.
func (m *Manager) EvictToFit(maxSize int64) error {
	ids, err := m.CachedModels()
	if err != nil {
		return err
	}
	type entry struct {
		id  string
		man *Manifest
	}
	entries := make([]entry, 0, len(ids))
	var total int64
	for _, id := range ids {
		man, err := readManifest(manifestPath(m.modelDir(id)))
		if err != nil {
			continue
		}
		entries = append(entries, entry{id: id, man: man})
		total += man.WeightsSize
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].man.DownloadedAt.Before(entries[j].man.DownloadedAt)
	})

	for _, e := range entries {
		if total <= maxSize {
			break
		}
		if err := m.Delete(e.id); err != nil {
			return err
		}
		total -= e.man.WeightsSize
	}
	return nil
}

// Delete removes modelID's weights and manifest from disk.
func (m *Manager) Delete(modelID string) error {
	if err := os.RemoveAll(m.modelDir(modelID)); err != nil {
		return fmt.Errorf("modelmanager: delete %s: %w", modelID, err)
	}
	m.clearRemoved(modelID)
	return nil
}

// ClearCache removes every resident model.
func (m *Manager) ClearCache() error {
	ids, err := m.CachedModels()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := m.Delete(id); err != nil {
			return err
		}
	}
	return nil
}

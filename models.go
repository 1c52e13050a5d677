package conduit

import (
	"context"

	"github.com/haasonsaas/conduit/internal/modelmanager"
)

// ModelManager exposes the on-device model cache/manager surface: check
// residency, resolve a local weights path, estimate and perform
// downloads, and bound the cache by size.
type ModelManager struct {
	mgr *modelmanager.Manager
}

// NewModelManager constructs a ModelManager rooted at cfg.Root, resolving
// model ids to download URLs via cfg.SourceURL.
func NewModelManager(ctx context.Context, cfg modelmanager.Config) (*ModelManager, error) {
	mgr, err := modelmanager.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &ModelManager{mgr: mgr}, nil
}

// IsCached reports whether modelID's weights and manifest are resident
// on disk.
func (m *ModelManager) IsCached(modelID string) bool { return m.mgr.IsCached(modelID) }

// LocalPath returns the weights file path for a cached model, or
// ModelNotCached if it isn't resident.
func (m *ModelManager) LocalPath(modelID string) (string, error) { return m.mgr.LocalPath(modelID) }

// EstimateDownloadSize reports modelID's download size in bytes without
// downloading the body.
func (m *ModelManager) EstimateDownloadSize(ctx context.Context, modelID string) (int64, error) {
	return m.mgr.EstimateDownloadSize(ctx, modelID)
}

// Download fetches modelID's weights into the cache, overwriting any
// existing entry, without checksum validation.
func (m *ModelManager) Download(ctx context.Context, modelID string) error {
	return m.mgr.Download(ctx, modelID)
}

// DownloadValidated downloads modelID and rejects it if its sha256
// checksum doesn't match expectedChecksum.
func (m *ModelManager) DownloadValidated(ctx context.Context, modelID, expectedChecksum string) error {
	return m.mgr.DownloadValidated(ctx, modelID, expectedChecksum)
}

// CachedModels lists the model ids currently resident on disk, sorted.
func (m *ModelManager) CachedModels() ([]string, error) { return m.mgr.CachedModels() }

// CacheSize returns the total bytes occupied by every resident model.
func (m *ModelManager) CacheSize() (int64, error) { return m.mgr.CacheSize() }

// EvictToFit deletes the oldest-downloaded resident models until total
// cache size is at or under maxSize.
func (m *ModelManager) EvictToFit(maxSize int64) error { return m.mgr.EvictToFit(maxSize) }

// Delete removes modelID's weights and manifest from disk.
func (m *ModelManager) Delete(modelID string) error { return m.mgr.Delete(modelID) }

// ClearCache removes every resident model.
func (m *ModelManager) ClearCache() error { return m.mgr.ClearCache() }

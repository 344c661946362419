package watcher

import (
	"context"

	"go.uber.org/zap"

	"github.com/ronak0808/CDP-chatbot/internal/fileid"
)

// Reloader re-fetches collections from their source and rebuilds when content changed.
type Reloader interface {
	Reload(ctx context.Context, keys ...string) (bool, error)
}

// ReloadOnChange returns an onChange callback that reloads the collection named by a
// changed document file. Files that do not name a collection are ignored.
func ReloadOnChange(ctx context.Context, r Reloader, logger *zap.Logger) func(path string) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(path string) {
		key, ok := fileid.CollectionKey(path)
		if !ok {
			return
		}
		changed, err := r.Reload(ctx, key)
		if err != nil {
			logger.Error("reload after file change failed", zap.String("collection", key), zap.Error(err))
			return
		}
		if changed {
			logger.Info("collection reloaded", zap.String("collection", key), zap.String("path", path))
		}
	}
}

// LogRemoval returns an onRemove callback that logs removed document files. The loaded
// sections stay searchable until the next explicit update or reload.
func LogRemoval(logger *zap.Logger) func(path string) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(path string) {
		if key, ok := fileid.CollectionKey(path); ok {
			logger.Warn("document file removed; keeping loaded sections", zap.String("collection", key), zap.String("path", path))
		}
	}
}

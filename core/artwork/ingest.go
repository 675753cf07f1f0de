package artwork

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"focustracks/config"
	"focustracks/logger"
	"focustracks/storage"

	"github.com/fsnotify/fsnotify"
)

// stabilityWindow is how long a file must go unmodified before it is
// considered fully written.
const stabilityWindow = 500 * time.Millisecond

// Ingestor watches a local drop directory for cover images and uploads them
// to object storage. Admins can bulk-drop artwork without going through the
// upload endpoint.
type Ingestor struct {
	dir    string
	bucket string
}

// NewIngestor creates an Ingestor for the configured ingest directory.
// Returns nil if no directory is configured.
func NewIngestor(cfg *config.Config) *Ingestor {
	if cfg.ArtworkIngestDir == "" {
		return nil
	}
	return &Ingestor{
		dir:    cfg.ArtworkIngestDir,
		bucket: cfg.MinioBucket,
	}
}

// Run watches the ingest directory until the context is cancelled.
func (in *Ingestor) Run(ctx context.Context) error {
	if err := os.MkdirAll(in.dir, 0755); err != nil {
		return fmt.Errorf("failed to create ingest directory %s: %w", in.dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create artwork watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(in.dir); err != nil {
		return fmt.Errorf("failed to watch ingest directory %s: %w", in.dir, err)
	}

	logger.Info("Artwork ingest watching directory", logger.String("dir", in.dir))

	// Uploads are deferred until a file has been stable for a short window,
	// so half-written images are never picked up.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && isImage(event.Name) {
				pending[event.Name] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Artwork watcher error", logger.ErrorField(err))

		case <-ticker.C:
			now := time.Now()
			for path, lastMod := range pending {
				if now.Sub(lastMod) < stabilityWindow {
					continue
				}
				delete(pending, path)
				if err := in.upload(ctx, path); err != nil {
					logger.Error("Failed to ingest artwork",
						logger.String("path", path), logger.ErrorField(err))
				}
			}
		}
	}
}

// upload pushes one image to object storage and removes the local file.
func (in *Ingestor) upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	name := filepath.Base(path)
	objectPath, err := storage.UploadCover(ctx, in.bucket, name, f, info.Size(), contentTypeFor(name))
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		logger.Warn("Failed to remove ingested file", logger.String("path", path), logger.ErrorField(err))
	}

	logger.Info("Ingested cover art",
		logger.String("file", name), logger.String("object", objectPath))
	return nil
}

func isImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

package services

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"render-service/internal/config"
	"render-service/utils"
)

// CleanupService prunes generated artifacts from the temp output directory
// once they outlive their TTL. Renders whose callers supplied an explicit
// filePath are the caller's responsibility.
type CleanupService struct {
	dir      string
	ttl      time.Duration
	interval time.Duration
	log      *slog.Logger
	stopChan chan struct{}
}

func NewCleanupService(cfg *config.Config, log *slog.Logger) *CleanupService {
	return &CleanupService{
		dir:      utils.ArtifactDir(),
		ttl:      time.Duration(cfg.ArtifactTTLMinutes) * time.Minute,
		interval: time.Duration(cfg.CleanupIntervalMinutes) * time.Minute,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

func (c *CleanupService) Start() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.log.Info("starting artifact cleanup service", "dir", c.dir, "ttl", c.ttl.String())

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopChan:
			c.log.Info("stopping artifact cleanup service")
			return
		}
	}
}

func (c *CleanupService) Stop() {
	close(c.stopChan)
}

func (c *CleanupService) sweep() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.log.Error("cleanup sweep failed", "error", err)
		return
	}

	cutoff := time.Now().Add(-c.ttl)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			c.log.Error("failed to remove expired artifact", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		c.log.Info("removed expired render artifacts", "count", removed)
	}
}

// Package backup snapshots the database file on a schedule and on demand.
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config controls where snapshots land and when they are taken.
type Config struct {
	Dir          string        // destination directory
	TmpDir       string        // optional staging directory; snapshots are renamed into Dir when set
	Interval     time.Duration // periodic snapshots when > 0
	OnBatchClose bool          // also snapshot synchronously after every batch close
}

// Snapshotter is the slice of the store the scheduler needs.
type Snapshotter interface {
	Snapshot(ctx context.Context, path string) error
}

// Scheduler owns the periodic backup task. Failures are logged and never
// stop the schedule or reach a request path.
type Scheduler struct {
	cfg   Config
	store Snapshotter
}

func NewScheduler(cfg Config, store Snapshotter) *Scheduler {
	return &Scheduler{cfg: cfg, store: store}
}

// Run takes one snapshot immediately, then one per interval until ctx is
// cancelled. It is a no-op when periodic backups are disabled.
func (s *Scheduler) Run(ctx context.Context) {
	if s.cfg.Interval <= 0 {
		return
	}

	if err := s.Now(ctx); err != nil {
		slog.Error("startup backup failed", "error", err)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Now(ctx); err != nil {
				slog.Error("periodic backup failed", "error", err)
			}
		}
	}
}

// BatchClosed takes a synchronous snapshot if close-triggered backups are
// configured. Errors are logged, not returned: a failed backup must never
// fail the batch close that triggered it.
func (s *Scheduler) BatchClosed(ctx context.Context) {
	if !s.cfg.OnBatchClose {
		return
	}
	if err := s.Now(ctx); err != nil {
		slog.Error("batch-close backup failed", "error", err)
	}
}

// Now takes one snapshot. With a staging directory configured the snapshot
// is written there first and renamed into place, so a reader of Dir never
// observes a partial file.
func (s *Scheduler) Now(ctx context.Context) error {
	filename := fmt.Sprintf("thingbox-%s.db", time.Now().UTC().Format("20060102-150405.000000000"))

	stagingDir := s.cfg.TmpDir
	if stagingDir == "" {
		stagingDir = s.cfg.Dir
	}
	stagingPath := filepath.Join(stagingDir, filename)

	if err := s.store.Snapshot(ctx, stagingPath); err != nil {
		return err
	}

	if s.cfg.TmpDir != "" {
		finalPath := filepath.Join(s.cfg.Dir, filename)
		if err := os.Rename(stagingPath, finalPath); err != nil {
			return err
		}
	}

	slog.Info("backup complete", "file", filename)
	return nil
}

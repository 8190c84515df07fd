package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// fileSnapshotter writes a marker file where the store would write the
// database copy.
type fileSnapshotter struct {
	calls int
	fail  bool
}

func (f *fileSnapshotter) Snapshot(ctx context.Context, path string) error {
	f.calls++
	if f.fail {
		return errors.New("disk full")
	}
	return os.WriteFile(path, []byte("snapshot"), 0o600)
}

func TestSchedulerNow(t *testing.T) {
	dir := t.TempDir()
	snap := &fileSnapshotter{}
	s := NewScheduler(Config{Dir: dir}, snap)

	if err := s.Now(context.Background()); err != nil {
		t.Fatalf("Now() unexpected error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("backup dir holds %d files, want 1", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".db" {
		t.Errorf("backup file = %q, want .db extension", entries[0].Name())
	}
}

func TestSchedulerNowStagesThroughTmpDir(t *testing.T) {
	dir := t.TempDir()
	tmp := t.TempDir()
	snap := &fileSnapshotter{}
	s := NewScheduler(Config{Dir: dir, TmpDir: tmp}, snap)

	if err := s.Now(context.Background()); err != nil {
		t.Fatalf("Now() unexpected error: %v", err)
	}

	tmpEntries, _ := os.ReadDir(tmp)
	if len(tmpEntries) != 0 {
		t.Errorf("staging dir holds %d files after rename, want 0", len(tmpEntries))
	}

	dirEntries, _ := os.ReadDir(dir)
	if len(dirEntries) != 1 {
		t.Errorf("backup dir holds %d files, want 1", len(dirEntries))
	}
}

func TestSchedulerBatchClosed(t *testing.T) {
	dir := t.TempDir()

	snap := &fileSnapshotter{}
	NewScheduler(Config{Dir: dir, OnBatchClose: false}, snap).BatchClosed(context.Background())
	if snap.calls != 0 {
		t.Errorf("Snapshot called %d times with OnBatchClose disabled, want 0", snap.calls)
	}

	snap = &fileSnapshotter{}
	NewScheduler(Config{Dir: dir, OnBatchClose: true}, snap).BatchClosed(context.Background())
	if snap.calls != 1 {
		t.Errorf("Snapshot called %d times with OnBatchClose enabled, want 1", snap.calls)
	}

	// A failing backup is logged, never propagated.
	snap = &fileSnapshotter{fail: true}
	NewScheduler(Config{Dir: dir, OnBatchClose: true}, snap).BatchClosed(context.Background())
}

func TestSchedulerRunDisabled(t *testing.T) {
	snap := &fileSnapshotter{}
	s := NewScheduler(Config{Dir: t.TempDir()}, snap)

	// Interval zero: Run returns immediately without snapshotting.
	s.Run(context.Background())
	if snap.calls != 0 {
		t.Errorf("Snapshot called %d times with no interval, want 0", snap.calls)
	}
}

package migrate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rrdkit/rrdmigrate/internal/config"
	"github.com/rrdkit/rrdmigrate/internal/rrd"
	"github.com/rrdkit/rrdmigrate/internal/util"
)

// fakeConverter records conversions and creates the target file so repeat
// runs hit the already-migrated path. failOn lists source names that fail.
type fakeConverter struct {
	mu     sync.Mutex
	calls  []string
	failOn map[string]bool
}

func newFakeConverter(failOn ...string) *fakeConverter {
	fail := make(map[string]bool, len(failOn))
	for _, name := range failOn {
		fail[name] = true
	}
	return &fakeConverter{failOn: fail}
}

func (f *fakeConverter) Convert(_ context.Context, source, target string, _ rrd.Kind) error {
	name := filepath.Base(source)

	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()

	if f.failOn[name] {
		return fmt.Errorf("simulated conversion failure for %s", name)
	}
	return os.WriteFile(target, []byte("migrated"), 0o644)
}

func (f *fakeConverter) converted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fixture builds a source tree mirroring the production layout:
//
//	source/pve2-node/{testnode, gone}
//	source/pve2-vm/{100, 200, 400}
//	source/pve2-storage/testnode/{iso, local}
//	resources/{.members, .vmlist}
//
// testnode is a member, guests 100 and 200 are configured, "gone" and 400
// are stale leftovers.
func fixture(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := &config.Config{
		SourceDir:   filepath.Join(base, "source"),
		TargetDir:   filepath.Join(base, "target"),
		ResourceDir: filepath.Join(base, "resources"),
		Threads:     2,
		Output:      "table",
	}

	dirs := []string{
		cfg.SourceNodeDir(),
		cfg.SourceGuestDir(),
		filepath.Join(cfg.SourceStorageDir(), "testnode"),
		cfg.TargetDir,
		cfg.ResourceDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	files := map[string]string{
		filepath.Join(cfg.SourceNodeDir(), "testnode"):              "rrd",
		filepath.Join(cfg.SourceNodeDir(), "gone"):                  "rrd",
		filepath.Join(cfg.SourceGuestDir(), "100"):                  "rrd",
		filepath.Join(cfg.SourceGuestDir(), "200"):                  "rrd",
		filepath.Join(cfg.SourceGuestDir(), "400"):                  "rrd",
		filepath.Join(cfg.SourceStorageDir(), "testnode", "iso"):    "rrd",
		filepath.Join(cfg.SourceStorageDir(), "testnode", "local"):  "rrd",
		cfg.MemberListPath(): `{"nodelist":{"testnode":{"id":1}}}`,
		cfg.VMListPath():     `{"ids":{"100":{"node":"testnode"},"200":{"node":"testnode"}}}`,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	return cfg
}

func phase(t *testing.T, report *Report, name string) PhaseReport {
	t.Helper()
	for _, p := range report.Phases {
		if p.Phase == name {
			return p
		}
	}
	t.Fatalf("report has no %q phase: %+v", name, report.Phases)
	return PhaseReport{}
}

func TestMigrator_Run(t *testing.T) {
	cfg := fixture(t)
	conv := newFakeConverter()

	report, err := New(cfg, WithConverter(conv)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	nodes := phase(t, report, "nodes")
	if nodes.Total != 2 || nodes.Migrated != 1 || nodes.Skipped != 1 || nodes.Failed != 0 {
		t.Errorf("nodes phase = %+v, want total 2, migrated 1, skipped 1", nodes)
	}

	storage := phase(t, report, "storage")
	if storage.Total != 2 || storage.Migrated != 2 {
		t.Errorf("storage phase = %+v, want total 2, migrated 2", storage)
	}

	guests := phase(t, report, "guests")
	if guests.Total != 3 || guests.Migrated != 2 || guests.Skipped != 1 || guests.Failed != 0 {
		t.Errorf("guests phase = %+v, want total 3, migrated 2, skipped 1", guests)
	}

	// target files exist for live resources only
	for _, path := range []string{
		filepath.Join(cfg.TargetNodeDir(), "testnode"),
		filepath.Join(cfg.TargetStorageDir(), "testnode", "iso"),
		filepath.Join(cfg.TargetStorageDir(), "testnode", "local"),
		filepath.Join(cfg.TargetGuestDir(), "100"),
		filepath.Join(cfg.TargetGuestDir(), "200"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected migrated file %s: %v", path, err)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.TargetGuestDir(), "400")); !os.IsNotExist(err) {
		t.Error("stale guest 400 must not be migrated")
	}

	// migrated and stale sources are renamed to .old
	for _, path := range []string{
		filepath.Join(cfg.SourceNodeDir(), "testnode.old"),
		filepath.Join(cfg.SourceNodeDir(), "gone.old"),
		filepath.Join(cfg.SourceGuestDir(), "100.old"),
		filepath.Join(cfg.SourceGuestDir(), "400.old"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected source marked old at %s: %v", path, err)
		}
	}
}

func TestMigrator_SecondRunFindsNothing(t *testing.T) {
	cfg := fixture(t)

	if _, err := New(cfg, WithConverter(newFakeConverter())).Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// all sources were renamed .old, so the second run has nothing to do
	report, err := New(cfg, WithConverter(newFakeConverter())).Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if report.TotalFiles() != 0 {
		t.Errorf("second run considered %d files, want 0", report.TotalFiles())
	}
}

func TestMigrator_AlreadyMigratedNeedsForce(t *testing.T) {
	cfg := fixture(t)

	// pre-existing target for guest 100
	if err := os.MkdirAll(cfg.TargetGuestDir(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	existing := filepath.Join(cfg.TargetGuestDir(), "100")
	if err := os.WriteFile(existing, []byte("previous"), 0o644); err != nil {
		t.Fatalf("write existing target: %v", err)
	}

	conv := newFakeConverter()
	report, err := New(cfg, WithConverter(conv)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	guests := phase(t, report, "guests")
	if guests.Migrated != 1 || guests.Skipped != 2 {
		t.Errorf("guests phase = %+v, want migrated 1, skipped 2 (stale 400 + existing 100)", guests)
	}
	for _, name := range conv.converted() {
		if name == "100" {
			t.Error("guest 100 must not be converted without --force")
		}
	}

	// with --force the existing target is overwritten
	cfg2 := fixture(t)
	cfg2.Force = true
	if err := os.MkdirAll(cfg2.TargetGuestDir(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg2.TargetGuestDir(), "100"), []byte("previous"), 0o644); err != nil {
		t.Fatalf("write existing target: %v", err)
	}

	conv2 := newFakeConverter()
	report2, err := New(cfg2, WithConverter(conv2)).Run(context.Background())
	if err != nil {
		t.Fatalf("forced run failed: %v", err)
	}
	if got := phase(t, report2, "guests").Migrated; got != 2 {
		t.Errorf("forced guests migrated = %d, want 2", got)
	}
}

func TestMigrator_DryRun(t *testing.T) {
	cfg := fixture(t)
	cfg.DryRun = true

	conv := newFakeConverter()
	report, err := New(cfg, WithConverter(conv)).Run(context.Background())
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}

	if !report.DryRun {
		t.Error("report should be flagged as dry run")
	}
	if len(conv.converted()) != 0 {
		t.Errorf("dry run must not convert anything, got %v", conv.converted())
	}

	// nothing created, nothing renamed
	if _, err := os.Stat(cfg.TargetNodeDir()); !os.IsNotExist(err) {
		t.Error("dry run must not create target directories")
	}
	if _, err := os.Stat(filepath.Join(cfg.SourceGuestDir(), "400")); err != nil {
		t.Error("dry run must not rename stale sources")
	}

	// but the report still says what would happen
	if got := report.TotalMigrated(); got != 5 {
		t.Errorf("dry run would migrate %d files, want 5", got)
	}
}

func TestMigrator_ConversionFailureIsSoft(t *testing.T) {
	cfg := fixture(t)

	conv := newFakeConverter("200")
	report, err := New(cfg, WithConverter(conv)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run should absorb per-file failures, got %v", err)
	}

	guests := phase(t, report, "guests")
	if guests.Failed != 1 {
		t.Errorf("guests failed = %d, want 1", guests.Failed)
	}
	if guests.Migrated != 1 {
		t.Errorf("guests migrated = %d, want 1 (sibling of the failed guest)", guests.Migrated)
	}

	// failed source must not be marked old
	if _, err := os.Stat(filepath.Join(cfg.SourceGuestDir(), "200")); err != nil {
		t.Errorf("failed guest source should remain in place: %v", err)
	}
}

func TestMigrator_MissingResourceListIsFatal(t *testing.T) {
	cfg := fixture(t)
	if err := os.Remove(cfg.VMListPath()); err != nil {
		t.Fatalf("remove vmlist: %v", err)
	}

	_, err := New(cfg, WithConverter(newFakeConverter())).Run(context.Background())
	if err == nil {
		t.Fatal("expected fatal error for missing .vmlist")
	}
	if !errors.Is(err, util.ErrResourceListMissing) {
		t.Errorf("expected ErrResourceListMissing, got %v", err)
	}
}

func TestMigrator_CancelledContext(t *testing.T) {
	cfg := fixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg, WithConverter(newFakeConverter())).Run(ctx)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, util.ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}

func TestMigrator_ProgressCallback(t *testing.T) {
	cfg := fixture(t)

	var mu sync.Mutex
	var updates []int
	progress := func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, done)
		if total != 3 {
			t.Errorf("progress total = %d, want 3", total)
		}
	}

	_, err := New(cfg, WithConverter(newFakeConverter()), WithProgress(progress)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(updates) != 3 {
		t.Errorf("expected 3 progress updates, got %d", len(updates))
	}
}

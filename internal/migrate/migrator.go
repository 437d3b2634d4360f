package migrate

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rrdkit/rrdmigrate/internal/config"
	"github.com/rrdkit/rrdmigrate/internal/executor"
	"github.com/rrdkit/rrdmigrate/internal/rrd"
	"github.com/rrdkit/rrdmigrate/internal/util"
)

// ProgressFunc receives guest-phase progress updates: how many files have
// been handled so far out of the total. Called from worker goroutines, so it
// must be safe for concurrent use.
type ProgressFunc func(done, total int)

// itemOutcome classifies what happened to a single source file.
type itemOutcome int

const (
	outcomeMigrated itemOutcome = iota
	outcomeSkipped
)

// Migrator drives the three migration phases over an on-disk RRD hierarchy.
// Nodes and storages are migrated serially (their numbers stay small);
// guests run through the executor pool since converting thousands of files
// dominates the total runtime.
type Migrator struct {
	cfg       *config.Config
	converter rrd.Converter
	logger    *slog.Logger
	progress  ProgressFunc
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithConverter overrides the RRD converter. Defaults to the rrdtool-backed
// implementation.
func WithConverter(c rrd.Converter) Option {
	return func(m *Migrator) {
		if c != nil {
			m.converter = c
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Migrator) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithProgress installs a guest-phase progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(m *Migrator) { m.progress = fn }
}

// New creates a Migrator for the given configuration.
func New(cfg *config.Config, opts ...Option) *Migrator {
	m := &Migrator{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.converter == nil {
		m.converter = rrd.NewToolConverter(rrd.WithToolLogger(m.logger))
	}
	return m
}

// Run executes all three phases in order and returns the aggregate report.
// A fatal error in one phase (filesystem trouble, unreadable resource list,
// a dead worker pool) does not stop the remaining phases; the errors are
// combined and returned alongside the partial report. Per-file conversion
// failures are not fatal, they are counted in the report and logged.
func (m *Migrator) Run(ctx context.Context) (*Report, error) {
	report := &Report{DryRun: m.cfg.DryRun}

	if m.cfg.DryRun {
		m.logger.Info("dry run, no files will be written")
	}
	if m.cfg.Force {
		m.logger.Warn("force mode, existing target RRD files will be overwritten")
	}

	nodes, nodesErr := m.migrateNodes(ctx)
	report.Add(nodes)

	storage, storageErr := m.migrateStorage(ctx)
	report.Add(storage)

	guests, guestsErr := m.migrateGuests(ctx)
	report.Add(guests)

	return report, util.CombineErrors(nodesErr, storageErr, guestsErr)
}

// migrateNodes migrates node RRD files serially; cluster node counts are
// small enough that parallelism would not pay off.
func (m *Migrator) migrateNodes(ctx context.Context) (PhaseReport, error) {
	rep := PhaseReport{Phase: "nodes"}
	start := time.Now()
	defer func() { rep.Duration = time.Since(start) }()

	m.logger.Info("migrating RRD metrics data for nodes")

	files, err := CollectFiles(m.cfg.SourceNodeDir())
	if err != nil {
		return rep, err
	}

	if err := m.ensureTargetDir(m.cfg.TargetNodeDir()); err != nil {
		return rep, err
	}

	targetDir := m.cfg.TargetNodeDir()
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return rep, util.ErrCancelled
		}
		rep.Total++

		m.logger.Debug("considering node", "node", file.Name)

		present, err := ResourcePresent(m.cfg.MemberListPath(), file.Name)
		if err != nil {
			return rep, err
		}
		if !present {
			m.logger.Info("node no longer in cluster, marking as old", "node", file.Name)
			if !m.cfg.DryRun {
				if err := MarkOld(file.Path); err != nil {
					return rep, err
				}
			}
			rep.Skipped++
			continue
		}

		outcome, err := m.convertOne(ctx, file, targetDir, rrd.KindNode)
		switch {
		case err != nil:
			m.logger.Error("node migration failed", "node", file.Name, "error", err)
			rep.Failed++
		case outcome == outcomeSkipped:
			rep.Skipped++
		default:
			rep.Migrated++
		}
	}

	m.logPhaseDone(rep)
	return rep, nil
}

// migrateStorage migrates storage RRD files serially. Storage adds one
// directory level per node over which we need to iterate.
func (m *Migrator) migrateStorage(ctx context.Context) (PhaseReport, error) {
	rep := PhaseReport{Phase: "storage"}
	start := time.Now()
	defer func() { rep.Duration = time.Since(start) }()

	m.logger.Info("migrating RRD metrics data for storages")

	entries, err := os.ReadDir(m.cfg.SourceStorageDir())
	if err != nil {
		return rep, util.WrapErrorf(err, "failed to read source storage directory")
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return rep, util.ErrCancelled
		}

		node := entry.Name()
		sourceSubdir := filepath.Join(m.cfg.SourceStorageDir(), node)
		targetSubdir := filepath.Join(m.cfg.TargetStorageDir(), node)

		if err := m.ensureTargetDir(targetSubdir); err != nil {
			return rep, err
		}

		files, err := CollectFiles(sourceSubdir)
		if err != nil {
			return rep, err
		}

		for _, file := range files {
			rep.Total++
			m.logger.Info("migrating metrics for storage", "node", node, "storage", file.Name)

			outcome, err := m.convertOne(ctx, file, targetSubdir, rrd.KindStorage)
			switch {
			case err != nil:
				m.logger.Error("storage migration failed", "node", node, "storage", file.Name, "error", err)
				rep.Failed++
			case outcome == outcomeSkipped:
				rep.Skipped++
			default:
				rep.Migrated++
			}
		}
	}

	m.logPhaseDone(rep)
	return rep, nil
}

// migrateGuests migrates guest RRD files in parallel to speed up the
// process, as most time is spent converting the data to the new format.
func (m *Migrator) migrateGuests(ctx context.Context) (PhaseReport, error) {
	rep := PhaseReport{Phase: "guests"}
	start := time.Now()
	defer func() { rep.Duration = time.Since(start) }()

	m.logger.Info("migrating RRD metrics data for virtual guests", "threads", m.cfg.Threads)

	files, err := CollectFiles(m.cfg.SourceGuestDir())
	if err != nil {
		return rep, err
	}

	if err := m.ensureTargetDir(m.cfg.TargetGuestDir()); err != nil {
		return rep, err
	}

	total := len(files)
	rep.Total = total

	// shared counters, mutated from worker goroutines and the send loop
	var migrated, skipped, failed, handled atomic.Int64

	targetDir := m.cfg.TargetGuestDir()
	pool := executor.New("guest rrd migration", m.cfg.Threads, func(file SourceFile) error {
		outcome, err := m.convertOne(ctx, file, targetDir, rrd.KindGuest)
		switch {
		case err != nil:
			// per-guest failure, keep the batch running
			m.logger.Error("guest migration failed", "guest", file.Name, "error", err)
			failed.Add(1)
		case outcome == outcomeSkipped:
			skipped.Add(1)
		default:
			count := migrated.Add(1)
			if count > 0 && count%100 == 0 {
				m.logger.Info("guest migration progress", "migrated", count, "total", total)
			}
		}
		if m.progress != nil {
			m.progress(int(handled.Add(1)), total)
		}
		return nil
	}, executor.WithLogger(m.logger))

	producer := pool.Producer()
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			producer.Release()
			pool.Complete()
			return rep, util.ErrCancelled
		}

		present, err := ResourcePresent(m.cfg.VMListPath(), file.Name)
		if err != nil {
			producer.Release()
			pool.Complete()
			return rep, err
		}
		if !present {
			m.logger.Info("guest no longer configured, marking as old", "guest", file.Name)
			if !m.cfg.DryRun {
				if err := MarkOld(file.Path); err != nil {
					producer.Release()
					pool.Complete()
					return rep, err
				}
			}
			skipped.Add(1)
			if m.progress != nil {
				m.progress(int(handled.Add(1)), total)
			}
			continue
		}

		if err := producer.Send(file); err != nil {
			// the pool can no longer make progress; this is fatal
			producer.Release()
			pool.Complete()
			return rep, util.WrapErrorf(err, "failed to queue guest %s", file.Name)
		}
	}
	producer.Release()

	if err := pool.Complete(); err != nil {
		return rep, err
	}

	rep.Migrated = int(migrated.Load())
	rep.Skipped = int(skipped.Load())
	rep.Failed = int(failed.Load())

	m.logPhaseDone(rep)
	return rep, nil
}

// convertOne migrates a single file into targetDir. The error return is a
// per-file failure; the caller decides how to account for it.
func (m *Migrator) convertOne(ctx context.Context, file SourceFile, targetDir string, kind rrd.Kind) (itemOutcome, error) {
	target := filepath.Join(targetDir, file.Name)

	if _, err := os.Stat(target); err == nil && !m.cfg.Force {
		m.logger.Warn("already migrated, use --force to overwrite", "target", target)
		return outcomeSkipped, nil
	}

	if m.cfg.DryRun {
		m.logger.Info("would migrate", "source", file.Path, "target", target, "kind", kind.String())
		return outcomeMigrated, nil
	}

	if err := m.converter.Convert(ctx, file.Path, target, kind); err != nil {
		return outcomeSkipped, util.WrapResourceError(file.Name, err)
	}

	if err := MarkOld(file.Path); err != nil {
		return outcomeSkipped, err
	}

	return outcomeMigrated, nil
}

// ensureTargetDir creates a target directory if missing. Dry runs only log.
func (m *Migrator) ensureTargetDir(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	}

	if m.cfg.DryRun {
		m.logger.Info("would create directory", "dir", dir)
		return nil
	}

	m.logger.Info("creating new directory", "dir", dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return util.WrapErrorf(err, "failed to create target directory %s", dir)
	}
	// MkdirAll honors umask; storage subdirs must stay world-readable
	if err := os.Chmod(dir, 0o755); err != nil {
		return util.WrapErrorf(err, "failed to set permissions on %s", dir)
	}
	return nil
}

func (m *Migrator) logPhaseDone(rep PhaseReport) {
	if rep.Failed == 0 {
		m.logger.Info("phase complete", "phase", rep.Phase,
			"migrated", rep.Migrated, "skipped", rep.Skipped, "total", rep.Total)
		return
	}
	m.logger.Warn("phase completed with failures, see output above for details", "phase", rep.Phase,
		"migrated", rep.Migrated, "skipped", rep.Skipped, "failed", rep.Failed, "total", rep.Total)
}

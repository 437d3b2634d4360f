package migrate

import (
	"fmt"
	"time"
)

// PhaseReport summarizes one migration phase (nodes, storage or guests).
type PhaseReport struct {
	// Phase names the migration phase
	Phase string `json:"phase" yaml:"phase"`

	// Total is the number of source files considered
	Total int `json:"total" yaml:"total"`

	// Migrated counts successfully converted files (or, in a dry run,
	// files that would be converted)
	Migrated int `json:"migrated" yaml:"migrated"`

	// Skipped counts files left alone: resource no longer present, or
	// target already migrated and --force not set
	Skipped int `json:"skipped" yaml:"skipped"`

	// Failed counts per-file conversion failures
	Failed int `json:"failed" yaml:"failed"`

	// Duration is the phase wall-clock time
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report aggregates all phase reports of one migration run.
type Report struct {
	// DryRun records whether this was a dry run
	DryRun bool `json:"dryRun" yaml:"dryRun"`

	// Phases holds one report per executed phase, in execution order
	Phases []PhaseReport `json:"phases" yaml:"phases"`
}

// Add appends a phase report.
func (r *Report) Add(p PhaseReport) {
	r.Phases = append(r.Phases, p)
}

// TotalFiles returns the number of source files considered across phases.
func (r *Report) TotalFiles() int {
	total := 0
	for _, p := range r.Phases {
		total += p.Total
	}
	return total
}

// TotalMigrated returns the number of migrated files across phases.
func (r *Report) TotalMigrated() int {
	total := 0
	for _, p := range r.Phases {
		total += p.Migrated
	}
	return total
}

// TotalSkipped returns the number of skipped files across phases.
func (r *Report) TotalSkipped() int {
	total := 0
	for _, p := range r.Phases {
		total += p.Skipped
	}
	return total
}

// TotalFailed returns the number of failed files across phases.
func (r *Report) TotalFailed() int {
	total := 0
	for _, p := range r.Phases {
		total += p.Failed
	}
	return total
}

// HasFailures reports whether any phase recorded per-file failures.
func (r *Report) HasFailures() bool {
	return r.TotalFailed() > 0
}

// Duration returns the combined wall-clock time of all phases.
func (r *Report) Duration() time.Duration {
	var total time.Duration
	for _, p := range r.Phases {
		total += p.Duration
	}
	return total
}

// String returns a one-line summary of the run.
func (r *Report) String() string {
	label := "migrated"
	if r.DryRun {
		label = "would migrate"
	}
	return fmt.Sprintf("%s %d of %d files (%d skipped, %d failed) in %s",
		label, r.TotalMigrated(), r.TotalFiles(), r.TotalSkipped(), r.TotalFailed(),
		r.Duration().Round(time.Millisecond))
}

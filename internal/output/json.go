package output

import (
	"encoding/json"
	"io"

	"github.com/rrdkit/rrdmigrate/internal/migrate"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	options *Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(opts *Options) *JSONFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &JSONFormatter{
		options: opts,
	}
}

// FormatReport outputs a migration report as JSON
func (f *JSONFormatter) FormatReport(w io.Writer, report *migrate.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reportDocument(report))
}

// reportDocument converts a report to a structure that renders durations
// human-readable instead of as raw nanosecond counts.
func reportDocument(report *migrate.Report) map[string]interface{} {
	phases := make([]map[string]interface{}, len(report.Phases))
	for i, phase := range report.Phases {
		phases[i] = map[string]interface{}{
			"phase":    phase.Phase,
			"total":    phase.Total,
			"migrated": phase.Migrated,
			"skipped":  phase.Skipped,
			"failed":   phase.Failed,
			"duration": phase.Duration.String(),
		}
	}

	return map[string]interface{}{
		"dryRun":   report.DryRun,
		"phases":   phases,
		"migrated": report.TotalMigrated(),
		"skipped":  report.TotalSkipped(),
		"failed":   report.TotalFailed(),
		"total":    report.TotalFiles(),
		"duration": report.Duration().String(),
	}
}

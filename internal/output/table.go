package output

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/rrdkit/rrdmigrate/internal/migrate"
)

// TableFormatter formats output as a table (kubectl-style)
type TableFormatter struct {
	options *Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(opts *Options) *TableFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &TableFormatter{
		options: opts,
	}
}

// FormatReport outputs a migration report as a table, one row per phase,
// followed by a one-line summary.
func (f *TableFormatter) FormatReport(w io.Writer, report *migrate.Report) error {
	if report == nil || len(report.Phases) == 0 {
		fmt.Fprintln(w, "No results")
		return nil
	}

	colors := NewColorScheme(w, f.options.NoColor)
	table := f.createTable(w)

	headers := []string{"PHASE", "TOTAL", "MIGRATED", "SKIPPED", "FAILED"}
	if f.options.Wide {
		headers = append(headers, "DURATION")
	}

	if !f.options.NoHeaders {
		if colors.Disabled {
			table.SetHeader(headers)
		} else {
			coloredHeaders := make([]string, len(headers))
			for i, h := range headers {
				coloredHeaders[i] = colors.Header(h)
			}
			table.SetHeader(coloredHeaders)
		}
	}

	for _, phase := range report.Phases {
		table.Append(f.formatPhaseRow(phase, colors))
	}

	table.Render()
	f.printSummary(w, report, colors)

	return nil
}

// formatPhaseRow formats a single phase report as a table row
func (f *TableFormatter) formatPhaseRow(phase migrate.PhaseReport, colors *ColorScheme) []string {
	name := phase.Phase
	if !colors.Disabled {
		name = colors.Phase(name)
	}

	failed := strconv.Itoa(phase.Failed)
	if !colors.Disabled {
		failed = colors.CountColor(phase.Failed)(failed)
	}

	row := []string{
		name,
		strconv.Itoa(phase.Total),
		strconv.Itoa(phase.Migrated),
		strconv.Itoa(phase.Skipped),
		failed,
	}

	if f.options.Wide {
		duration := phase.Duration.Round(time.Millisecond).String()
		if !colors.Disabled {
			duration = colors.Duration(duration)
		}
		row = append(row, duration)
	}

	return row
}

// createTable creates a new table with kubectl-style configuration
func (f *TableFormatter) createTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	// kubectl-style configuration
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t") // Tab-separated like kubectl
	table.SetNoWhiteSpace(true)

	return table
}

// printSummary prints a summary line below the table
func (f *TableFormatter) printSummary(w io.Writer, report *migrate.Report, colors *ColorScheme) {
	fmt.Fprintln(w, "")

	label := "Migrated"
	if report.DryRun {
		label = "Would migrate"
	}

	migratedText := fmt.Sprintf("%s %d of %d files", label, report.TotalMigrated(), report.TotalFiles())
	if !colors.Disabled {
		migratedText = colors.Success(migratedText)
	}

	failedText := fmt.Sprintf("%d failed", report.TotalFailed())
	if !colors.Disabled && report.HasFailures() {
		failedText = colors.Error(failedText)
	}

	durationText := fmt.Sprintf("in %s", report.Duration().Round(time.Millisecond))
	if !colors.Disabled {
		durationText = colors.Duration(durationText)
	}

	fmt.Fprintf(w, "%s, %d skipped, %s, %s\n", migratedText, report.TotalSkipped(), failedText, durationText)
}

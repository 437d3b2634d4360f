// Package output provides formatters for displaying migration reports.
//
// The package supports multiple output formats (table, JSON, YAML) and
// provides a unified interface for rendering the per-phase results of a
// migration run.
//
// # Basic Usage
//
//	// Create a table formatter
//	formatter := output.NewFormatter(output.FormatTable)
//
//	// Render a migration report
//	formatter.FormatReport(os.Stdout, report)
//
// # Options
//
// Formatters can be configured with functional options:
//
//	formatter := output.NewFormatter(
//	    output.FormatTable,
//	    output.WithNoColor(true),
//	    output.WithWide(true),
//	)
//
// # Formatters
//
// Table Formatter (kubectl-style):
//   - Borderless tables with tab-separated columns
//   - One row per migration phase plus a summary line
//   - Optional color highlighting for phases and failure counts
//   - Wide mode adds per-phase durations
//
// JSON Formatter:
//   - Clean, indented JSON output
//   - Suitable for scripting and automation
//
// YAML Formatter:
//   - Human-readable YAML output
//   - Proper indentation and formatting
//
// # Color Support
//
// Colors are automatically enabled for TTY outputs and can be disabled with:
//   - WithNoColor(true) option
//   - Non-TTY output (pipes, redirects)
//
// Color scheme:
//   - Phase names: Cyan, Bold
//   - Success counts: Green
//   - Failure counts: Red, Bold
//   - Warnings: Yellow
//   - Headers: White, Bold
//   - Durations: Blue
package output

package rrd

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// Converter rebuilds a source RRD file into the target schema. The migration
// driver treats this as the boundary to the round-robin-database tooling and
// never looks inside it.
type Converter interface {
	// Convert creates target from source using the schema for kind,
	// carrying over the existing data points.
	Convert(ctx context.Context, source, target string, kind Kind) error
}

// DefaultBinary is the rrdtool binary resolved from PATH.
const DefaultBinary = "rrdtool"

// ToolConverter converts files by invoking rrdtool's create command with
// --source, which maps to librrd's rrd_create_r2 and pre-fills the new file
// from the old one.
type ToolConverter struct {
	binary string
	logger *slog.Logger
}

// ToolOption configures a ToolConverter.
type ToolOption func(*ToolConverter)

// WithBinary overrides the rrdtool binary path. Mainly for tests.
func WithBinary(path string) ToolOption {
	return func(c *ToolConverter) {
		if path != "" {
			c.binary = path
		}
	}
}

// WithToolLogger sets the logger. Defaults to slog.Default().
func WithToolLogger(logger *slog.Logger) ToolOption {
	return func(c *ToolConverter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewToolConverter creates a converter backed by the rrdtool binary.
func NewToolConverter(opts ...ToolOption) *ToolConverter {
	c := &ToolConverter{
		binary: DefaultBinary,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert runs rrdtool create with the target schema, sourcing the data from
// the old file. Safe for concurrent use on disjoint files.
func (c *ToolConverter) Convert(ctx context.Context, source, target string, kind Kind) error {
	args := createArgs(source, target, kind)
	if args == nil {
		return fmt.Errorf("unknown RRD schema kind %q", kind)
	}

	c.logger.Debug("converting RRD file", "source", source, "target", target, "kind", kind.String())

	cmd := exec.CommandContext(ctx, c.binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("rrd create failed for %s: %s: %w", source, msg, err)
		}
		return fmt.Errorf("rrd create failed for %s: %w", source, err)
	}

	return nil
}

// createArgs builds the rrdtool create argument list for one conversion.
// Returns nil for an unknown kind.
func createArgs(source, target string, kind Kind) []string {
	def := Definition(kind)
	if def == nil {
		return nil
	}

	args := make([]string, 0, len(def)+5)
	args = append(args,
		"create", target,
		"--step", strconv.Itoa(StepSize),
		"--source", source,
	)
	args = append(args, def...)
	return args
}

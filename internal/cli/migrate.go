package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rrdkit/rrdmigrate/internal/config"
	"github.com/rrdkit/rrdmigrate/internal/migrate"
	"github.com/rrdkit/rrdmigrate/internal/output"
)

// newMigrateCmd creates the migrate command
func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate RRD files to the new format",
		Long: `Migrate node, storage and virtual guest RRD metrics files from the old
pve2 directory layout to the pve 9.0 layout.

Nodes and storages are converted serially, guests in parallel. Sources
whose resource no longer exists in the cluster are renamed with an .old
suffix and skipped. Successfully converted sources are renamed the same
way so that a second run only picks up what is left.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd)
		},
	}

	cmd.Flags().String("source", config.DefaultBaseDir, "directory containing the old-format RRD files")
	cmd.Flags().String("target", config.DefaultBaseDir, "directory receiving the new-format RRD files")
	cmd.Flags().String("resources", config.DefaultResourceDir, "directory containing the .members and .vmlist resource lists")
	cmd.Flags().IntP("threads", "t", 0, "worker threads for the guest phase (0 means auto)")
	cmd.Flags().Bool("force", false, "overwrite already migrated target files")
	cmd.Flags().Bool("dry-run", false, "log what would be migrated without writing anything")
	cmd.Flags().Bool("no-progress", false, "disable the guest-phase progress bar")

	return cmd
}

func runMigrate(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := []migrate.Option{}
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	if !noProgress && !cfg.Verbose && isatty.IsTerminal(os.Stderr.Fd()) {
		opts = append(opts, migrate.WithProgress(guestProgress()))
	}

	report, runErr := migrate.New(cfg, opts...).Run(cmd.Context())

	formatter := output.NewFormatter(output.Format(cfg.Output), output.WithNoColor(cfg.NoColor))
	if err := formatter.FormatReport(os.Stdout, report); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}
	if report.HasFailures() {
		return fmt.Errorf("%d of %d files failed to migrate", report.TotalFailed(), report.TotalFiles())
	}
	return nil
}

// loadConfig merges the config file, environment and command line flags,
// with the flags winning.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.NewManager(cfgFile).Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.SourceDir, _ = flags.GetString("source")
	}
	if flags.Changed("target") {
		cfg.TargetDir, _ = flags.GetString("target")
	}
	if flags.Changed("resources") {
		cfg.ResourceDir, _ = flags.GetString("resources")
	}
	if flags.Changed("threads") {
		cfg.Threads, _ = flags.GetInt("threads")
	}
	if flags.Changed("force") {
		cfg.Force, _ = flags.GetBool("force")
	}
	if flags.Changed("dry-run") {
		cfg.DryRun, _ = flags.GetBool("dry-run")
	}

	// Persistent flags and RRDMIGRATE_* environment variables are bound
	// to the global viper instance.
	if out := viper.GetString("output"); out != "" {
		cfg.Output = out
	}
	if viper.GetBool("no-color") {
		cfg.NoColor = true
	}
	if viper.GetBool("verbose") {
		cfg.Verbose = true
	}

	return cfg, nil
}

// guestProgress returns a progress callback backed by a terminal progress
// bar. The bar is created on the first update since the total is not known
// before the guest phase starts.
func guestProgress() migrate.ProgressFunc {
	var mu sync.Mutex
	var bar *progressbar.ProgressBar

	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("migrating guests"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Set(done)
		if done >= total {
			bar.Finish()
		}
	}
}

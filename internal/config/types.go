package config

// Default directory layout of the migration. Source and target live under
// the rrdcached database directory; the resource lists come from the cluster
// configuration filesystem.
const (
	// DefaultBaseDir is the rrdcached database directory holding both the
	// old and the new metric hierarchies
	DefaultBaseDir = "/var/lib/rrdcached/db"

	// DefaultResourceDir contains the .vmlist and .members resource lists
	DefaultResourceDir = "/etc/pve"

	// SourceSubdirNode holds the old-format node RRD files
	SourceSubdirNode = "pve2-node"
	// SourceSubdirGuest holds the old-format guest RRD files
	SourceSubdirGuest = "pve2-vm"
	// SourceSubdirStorage holds the old-format storage RRD files
	SourceSubdirStorage = "pve2-storage"

	// TargetSubdirNode receives the migrated node RRD files
	TargetSubdirNode = "pve-node-9.0"
	// TargetSubdirGuest receives the migrated guest RRD files
	TargetSubdirGuest = "pve-vm-9.0"
	// TargetSubdirStorage receives the migrated storage RRD files
	TargetSubdirStorage = "pve-storage-9.0"

	// MaxAutoThreads caps the automatically chosen worker count
	MaxAutoThreads = 6
)

// Config holds the migration settings assembled from flags, environment and
// an optional config file.
type Config struct {
	// SourceDir is the base directory containing the pve2-* hierarchies
	SourceDir string `mapstructure:"source"`

	// TargetDir is the base directory receiving the pve-*-9.0 hierarchies
	TargetDir string `mapstructure:"target"`

	// ResourceDir contains the .vmlist and .members files used to decide
	// whether a source file still belongs to a configured resource
	ResourceDir string `mapstructure:"resources"`

	// Threads is the guest-phase worker count; 0 selects automatically
	Threads int `mapstructure:"threads"`

	// DryRun walks and reports without writing anything
	DryRun bool `mapstructure:"dry-run"`

	// Force overwrites already-migrated target files
	Force bool `mapstructure:"force"`

	// Output selects the report format (table, json, yaml)
	Output string `mapstructure:"output"`

	// NoColor disables colored output
	NoColor bool `mapstructure:"no-color"`

	// Verbose enables debug logging
	Verbose bool `mapstructure:"verbose"`
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestManager_LoadDefaults(t *testing.T) {
	// point at a config file that does not exist; defaults must apply
	m := NewManager(filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SourceDir != DefaultBaseDir {
		t.Errorf("SourceDir = %q, want %q", cfg.SourceDir, DefaultBaseDir)
	}
	if cfg.TargetDir != DefaultBaseDir {
		t.Errorf("TargetDir = %q, want %q", cfg.TargetDir, DefaultBaseDir)
	}
	if cfg.ResourceDir != DefaultResourceDir {
		t.Errorf("ResourceDir = %q, want %q", cfg.ResourceDir, DefaultResourceDir)
	}
	if cfg.Threads < 1 || cfg.Threads > MaxAutoThreads {
		t.Errorf("Threads = %d, want within [1, %d]", cfg.Threads, MaxAutoThreads)
	}
	if cfg.Output != "table" {
		t.Errorf("Output = %q, want table", cfg.Output)
	}
}

func TestManager_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `source: /mnt/old
target: /mnt/new
resources: /mnt/pve
threads: 3
force: true
output: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SourceDir != "/mnt/old" {
		t.Errorf("SourceDir = %q, want /mnt/old", cfg.SourceDir)
	}
	if cfg.TargetDir != "/mnt/new" {
		t.Errorf("TargetDir = %q, want /mnt/new", cfg.TargetDir)
	}
	if cfg.ResourceDir != "/mnt/pve" {
		t.Errorf("ResourceDir = %q, want /mnt/pve", cfg.ResourceDir)
	}
	if cfg.Threads != 3 {
		t.Errorf("Threads = %d, want 3", cfg.Threads)
	}
	if !cfg.Force {
		t.Error("Force should be true")
	}
	if cfg.Output != "json" {
		t.Errorf("Output = %q, want json", cfg.Output)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		SourceDir:   "/src",
		TargetDir:   "/dst",
		ResourceDir: "/pve",
		Threads:     2,
		Output:      "table",
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}, wantErr: false},
		{name: "empty source", mutate: func(c *Config) { c.SourceDir = "" }, wantErr: true},
		{name: "empty target", mutate: func(c *Config) { c.TargetDir = "" }, wantErr: true},
		{name: "empty resources", mutate: func(c *Config) { c.ResourceDir = "" }, wantErr: true},
		{name: "zero threads", mutate: func(c *Config) { c.Threads = 0 }, wantErr: true},
		{name: "negative threads", mutate: func(c *Config) { c.Threads = -1 }, wantErr: true},
		{name: "bad output", mutate: func(c *Config) { c.Output = "xml" }, wantErr: true},
		{name: "yaml output", mutate: func(c *Config) { c.Output = "yaml" }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestConfig_DirectoryAccessors(t *testing.T) {
	cfg := Config{SourceDir: "/src", TargetDir: "/dst", ResourceDir: "/pve"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"source nodes", cfg.SourceNodeDir(), "/src/pve2-node"},
		{"source guests", cfg.SourceGuestDir(), "/src/pve2-vm"},
		{"source storage", cfg.SourceStorageDir(), "/src/pve2-storage"},
		{"target nodes", cfg.TargetNodeDir(), "/dst/pve-node-9.0"},
		{"target guests", cfg.TargetGuestDir(), "/dst/pve-vm-9.0"},
		{"target storage", cfg.TargetStorageDir(), "/dst/pve-storage-9.0"},
		{"member list", cfg.MemberListPath(), "/pve/.members"},
		{"vm list", cfg.VMListPath(), "/pve/.vmlist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestAutoThreads(t *testing.T) {
	threads := AutoThreads()
	if threads < 1 {
		t.Errorf("AutoThreads returned %d, want at least 1", threads)
	}
	if threads > MaxAutoThreads {
		t.Errorf("AutoThreads returned %d, want at most %d", threads, MaxAutoThreads)
	}
}

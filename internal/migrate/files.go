package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rrdkit/rrdmigrate/internal/util"
)

// SourceFile is one old-format RRD file awaiting migration.
type SourceFile struct {
	// Path is the full path to the source file
	Path string

	// Name is the base name, which doubles as the resource identifier
	// (node name, VMID or storage id)
	Name string
}

// CollectFiles returns the RRD files in dir: regular files without an
// extension. Anything else (directories, .old leftovers, journal files) is
// ignored.
func CollectFiles(dir string) ([]SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory %s: %w", dir, err)
	}

	files := make([]SourceFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if filepath.Ext(entry.Name()) != "" {
			continue
		}
		files = append(files, SourceFile{
			Path: filepath.Join(dir, entry.Name()),
			Name: entry.Name(),
		})
	}

	return files, nil
}

// ResourcePresent reports whether the resource list at path still mentions
// the given resource. The lists (.vmlist, .members) keep resource names as
// quoted JSON keys, so a plain substring match on the quoted name suffices.
func ResourcePresent(path, resource string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", util.ErrResourceListMissing, path, err)
	}
	return strings.Contains(string(data), `"`+resource+`"`), nil
}

// MarkOld renames a source file to <name>.old, either because it was
// migrated or because its resource no longer exists.
func MarkOld(path string) error {
	if err := os.Rename(path, path+".old"); err != nil {
		return fmt.Errorf("failed to mark %s as old: %w", path, err)
	}
	return nil
}

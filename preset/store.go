// Package preset persists named engine presets as YAML files in a storage
// bucket directory, one file per preset name.
package preset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lee-cloete/drift/engine"
)

// DefaultBucket is the process-wide storage bucket name.
const DefaultBucket = "drone-engine-presets"

const fileExt = ".yaml"

// Store is a file-backed key-value preset store. Last write wins per name;
// malformed files degrade to "absent" rather than erroring.
type Store struct {
	dir string
}

var _ engine.PresetStore = (*Store)(nil)

// NewStore opens (creating if needed) a bucket directory under root. An
// empty root uses the bucket name directly in the working directory.
func NewStore(root string) (*Store, error) {
	dir := filepath.Join(root, DefaultBucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preset bucket: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, sanitizeName(name)+fileExt)
}

// sanitizeName keeps preset names filesystem-safe without rejecting any
// caller-chosen string.
func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", string(filepath.Separator), "_", "..", "_")
	name = replacer.Replace(name)
	if name == "" {
		name = "_"
	}
	return name
}

// Save writes or overwrites the preset under name.
func (s *Store) Save(name string, p engine.Preset) error {
	data, err := yaml.Marshal(&p)
	if err != nil {
		return fmt.Errorf("marshal preset %q: %w", name, err)
	}
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write preset %q: %w", name, err)
	}
	return nil
}

// Load reads the preset under name; the second return is false when the
// name is absent or the stored data is unparsable.
func (s *Store) Load(name string) (engine.Preset, bool, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return engine.Preset{}, false, nil
	}
	if err != nil {
		return engine.Preset{}, false, fmt.Errorf("read preset %q: %w", name, err)
	}
	var p engine.Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		// Corrupt data is treated as missing, never fatal.
		slog.Warn("skipping unparsable preset", "name", name, "error", err)
		return engine.Preset{}, false, nil
	}
	return p, true, nil
}

// List returns the stored preset names in directory order. Unreadable
// buckets degrade to an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), fileExt))
	}
	return names, nil
}

// Delete removes the preset under name; deleting an absent name is a
// no-op.
func (s *Store) Delete(name string) error {
	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

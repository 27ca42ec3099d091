package publish

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ManifestFile is the name of the build manifest.
const ManifestFile = "manifest.json"

// Dir is a static output directory
type Dir struct {
	root string
}

// New creates the output directory if needed
func New(root string) (*Dir, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		root = filepath.Join(home, root[2:])
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Dir{root: root}, nil
}

// Root returns the directory path
func (d *Dir) Root() string {
	return d.root
}

// Path returns the full path of name inside the directory
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, filepath.Base(name))
}

// WriteFile replaces name with data
func (d *Dir) WriteFile(name string, data []byte) error {
	path := d.Path(name)

	tmp, err := os.CreateTemp(d.root, "."+filepath.Base(name)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions on %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", name, err)
	}

	return nil
}

// Manifest describes one build
type Manifest struct {
	BuiltAt  string         `json:"built_at"`
	LoadedAt string         `json:"loaded_at"`
	Pages    []string       `json:"pages"`
	Counts   map[string]int `json:"counts"`
	Degraded []string       `json:"degraded,omitempty"`
}

// SaveManifest writes the manifest, stamping BuiltAt
func (d *Dir) SaveManifest(m Manifest) error {
	m.BuiltAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	return d.WriteFile(ManifestFile, data)
}

// LoadManifest reads the manifest of the previous build.
// A missing manifest returns nil without error.
func (d *Dir) LoadManifest() (*Manifest, error) {
	data, err := os.ReadFile(d.Path(ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Change is a listing whose item count differs between two builds
type Change struct {
	Listing  string
	Previous int
	Current  int
}

// Diff compares the counts of two manifests. A nil previous manifest yields
// no changes. Changes are ordered by listing name.
func Diff(previous *Manifest, current Manifest) []Change {
	if previous == nil {
		return nil
	}

	names := make([]string, 0, len(current.Counts))
	seen := make(map[string]bool)
	for name := range current.Counts {
		names = append(names, name)
		seen[name] = true
	}
	for name := range previous.Counts {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var changes []Change
	for _, name := range names {
		before, after := previous.Counts[name], current.Counts[name]
		if before != after {
			changes = append(changes, Change{Listing: name, Previous: before, Current: after})
		}
	}
	return changes
}

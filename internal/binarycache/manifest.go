package binarycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const manifestFileName = "manifest.json"

// Entry records one installed archive.
type Entry struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Dir         string   `json:"dir"`
	Binaries    []string `json:"binaries"`
	Checksum    string   `json:"checksum,omitempty"`
	InstalledAt string   `json:"installed_at,omitempty"`
}

// Manifest wraps persisted entries keyed by entry directory name.
type Manifest struct {
	Entries map[string]Entry `json:"entries"`
}

// Entries lists recorded installs sorted by tool name then directory.
func (c *Cache) Entries() ([]Entry, error) {
	m, err := loadManifest(c.root)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(m.Entries))
	for _, e := range m.Entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Dir < entries[j].Dir
	})
	return entries, nil
}

// recordEntry adds entry under the manifest lock. Installs of different
// tools hold different install locks but share this file.
func recordEntry(ctx context.Context, root string, entry Entry) error {
	unlock, err := acquireLock(ctx, root, manifestLockName)
	if err != nil {
		return err
	}
	defer unlock()

	m, err := loadManifest(root)
	if err != nil {
		return err
	}
	m.Entries[entry.Dir] = entry
	return saveManifest(root, m)
}

func loadManifest(root string) (Manifest, error) {
	contents, err := os.ReadFile(filepath.Join(root, manifestFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Manifest{Entries: map[string]Entry{}}, nil
		}
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(contents, &m); err != nil {
		return Manifest{}, fmt.Errorf("unmarshal manifest: %w", err)
	}
	if m.Entries == nil {
		m.Entries = map[string]Entry{}
	}
	return m, nil
}

func saveManifest(root string, m Manifest) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("prepare manifest directory: %w", err)
	}

	buf, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	tmp, err := os.CreateTemp(root, "manifest-*.json")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("write manifest temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close manifest temp: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(root, manifestFileName)); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TreesConfig holds the named family trees (read/write).
type TreesConfig struct {
	Trees map[string]TreeEntry `yaml:"trees,omitempty"`
}

// TreeEntry holds configuration for a specific tree.
type TreeEntry struct {
	Description string `yaml:"description,omitempty"`
}

// LoadTrees loads tree configuration from the .lineage directory.
func LoadTrees(basePath string) (*TreesConfig, error) {
	data, err := os.ReadFile(TreesFilePath(basePath))
	if os.IsNotExist(err) {
		return &TreesConfig{
			Trees: make(map[string]TreeEntry),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading trees file: %w", err)
	}

	var cfg TreesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing trees file: %w", err)
	}

	if cfg.Trees == nil {
		cfg.Trees = make(map[string]TreeEntry)
	}

	return &cfg, nil
}

// Save writes the trees configuration to the trees file.
func (t *TreesConfig) Save(basePath string) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling trees config: %w", err)
	}

	if err := os.WriteFile(TreesFilePath(basePath), data, 0600); err != nil {
		return fmt.Errorf("writing trees file: %w", err)
	}

	return nil
}

// Add adds a tree to the configuration.
func (t *TreesConfig) Add(name string, entry TreeEntry) {
	if t.Trees == nil {
		t.Trees = make(map[string]TreeEntry)
	}
	t.Trees[name] = entry
}

// Remove removes a tree from the configuration.
func (t *TreesConfig) Remove(name string) {
	if t.Trees != nil {
		delete(t.Trees, name)
	}
}

// Names returns the configured tree names, sorted.
func (t *TreesConfig) Names() []string {
	names := make([]string, 0, len(t.Trees))
	for name := range t.Trees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the configuration for a specific tree.
func (t *TreesConfig) Get(name string) (*TreeEntry, error) {
	if len(t.Trees) == 0 {
		return nil, errors.New("no trees configured")
	}

	entry, ok := t.Trees[name]
	if !ok {
		names := t.Names()
		if len(names) > 5 {
			names = append(names[:5], "...")
		}
		return nil, fmt.Errorf("tree %q not found (available: %s)", name, strings.Join(names, ", "))
	}

	return &entry, nil
}

// Has checks if a tree exists in the configuration.
func (t *TreesConfig) Has(name string) bool {
	_, ok := t.Trees[name]
	return ok
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeTreeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple lowercase",
			input:    "smith",
			expected: "smith",
		},
		{
			name:     "uppercase converted",
			input:    "Smith",
			expected: "smith",
		},
		{
			name:     "spaces to underscores",
			input:    "smith family",
			expected: "smith_family",
		},
		{
			name:     "special characters removed",
			input:    "o'brien!",
			expected: "obrien",
		},
		{
			name:     "consecutive underscores collapsed",
			input:    "smith--jones",
			expected: "smith_jones",
		},
		{
			name:     "leading trailing underscores trimmed",
			input:    "-smith-",
			expected: "smith",
		},
		{
			name:     "empty string returns default",
			input:    "",
			expected: "default",
		},
		{
			name:     "only special chars returns default",
			input:    "!!!",
			expected: "default",
		},
		{
			name:     "complex mixed input",
			input:    "Smith-Jones (Ohio 1850)",
			expected: "smith_jones_ohio_1850",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeTreeName(tt.input))
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Resolver.RepairEnabled())
	assert.Empty(t, cfg.SQLite.Path)
	assert.Empty(t, cfg.User)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/home/user/project/.lineage", ConfigDir("/home/user/project"))
	assert.Equal(t, "/home/user/project/.lineage/config.yaml", ConfigFilePath("/home/user/project"))
	assert.Equal(t, "/home/user/project/.lineage/trees.yaml", TreesFilePath("/home/user/project"))
	assert.Equal(t, "/p/.lineage/trees/smith_family/lineage.db", SQLitePathForTree("/p", "Smith Family"))
}

func TestDatabasePath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "/p/.lineage/trees/smith/lineage.db", cfg.DatabasePath("/p", "smith"))

	cfg.SQLite.Path = "/data/custom.db"
	assert.Equal(t, "/data/custom.db", cfg.DatabasePath("/p", "smith"))
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lineage init")
	})

	t.Run("default file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteDefault(dir))
		assert.True(t, Exists(dir))

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.True(t, cfg.Resolver.RepairEnabled())
	})

	t.Run("write default twice fails", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteDefault(dir))
		assert.Error(t, WriteDefault(dir))
	})

	t.Run("values override defaults", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, DefaultConfigDir), 0755))
		yml := "log:\n  level: debug\nresolver:\n  repair_on_read: false\nuser: alice\n"
		require.NoError(t, os.WriteFile(ConfigFilePath(dir), []byte(yml), 0644))

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Format)
		assert.False(t, cfg.Resolver.RepairEnabled())
		assert.Equal(t, "alice", cfg.User)
	})

	t.Run("env overrides", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteDefault(dir))
		t.Setenv(EnvUser, "bob")
		t.Setenv(EnvLogLevel, "warn")

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "bob", cfg.User)
		assert.Equal(t, "warn", cfg.Log.Level)
	})

	t.Run("round trip", func(t *testing.T) {
		dir := t.TempDir()
		off := false
		cfg := Default()
		cfg.User = "carol"
		cfg.Resolver.RepairOnRead = &off
		require.NoError(t, Write(dir, cfg))

		loaded, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "carol", loaded.User)
		assert.False(t, loaded.Resolver.RepairEnabled())
	})
}

func TestTrees(t *testing.T) {
	dir := t.TempDir()

	trees, err := LoadTrees(dir)
	require.NoError(t, err)
	assert.Empty(t, trees.Trees)

	_, err = trees.Get("smith")
	assert.EqualError(t, err, "no trees configured")

	trees.Add("smith", TreeEntry{Description: "Smith line"})
	trees.Add("jones", TreeEntry{})
	require.NoError(t, trees.Save(dir))

	loaded, err := LoadTrees(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"jones", "smith"}, loaded.Names())
	assert.True(t, loaded.Has("smith"))

	entry, err := loaded.Get("smith")
	require.NoError(t, err)
	assert.Equal(t, "Smith line", entry.Description)

	_, err = loaded.Get("brown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jones, smith")

	loaded.Remove("smith")
	assert.False(t, loaded.Has("smith"))
}

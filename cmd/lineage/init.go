package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage-core/internal/infrastructure/config"
	"github.com/ersonp/lineage-core/internal/infrastructure/relationaldb/sqlite"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new lineage database",
		Long:  "Creates a .lineage directory with default configuration and the schema of the default tree.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if config.Exists(cwd) {
		return fmt.Errorf("lineage already initialized in %s", cwd)
	}

	if err := config.WriteDefault(cwd); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", config.ConfigFilePath(cwd))

	trees, err := config.LoadTrees(cwd)
	if err != nil {
		return fmt.Errorf("loading trees: %w", err)
	}
	trees.Add(globalTree, config.TreeEntry{})
	if err := trees.Save(cwd); err != nil {
		return fmt.Errorf("saving trees: %w", err)
	}

	path, err := createTreeDatabase(cmd.Context(), cwd, globalTree)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created tree %q at %s\n", globalTree, path)
	fmt.Fprintln(out, "Lineage initialized successfully!")

	return nil
}

// createTreeDatabase creates the directory and schema of a tree and
// returns the database path.
func createTreeDatabase(ctx context.Context, basePath, name string) (string, error) {
	cfg, err := config.Load(basePath)
	if err != nil {
		return "", fmt.Errorf("loading config: %w", err)
	}

	if err := os.MkdirAll(config.TreeDir(basePath, name), 0750); err != nil {
		return "", fmt.Errorf("creating tree directory: %w", err)
	}

	path := cfg.DatabasePath(basePath, name)
	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: path})
	if err != nil {
		return "", fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		return "", fmt.Errorf("ensuring sqlite schema: %w", err)
	}
	return path, nil
}

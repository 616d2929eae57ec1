package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage-core/internal/infrastructure/config"
)

func newTreesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trees",
		Short: "Manage family trees",
		RunE:  runTreesList,
	}

	cmd.AddCommand(
		newTreesListCmd(),
		newTreesCreateCmd(),
		newTreesDeleteCmd(),
	)

	return cmd
}

func newTreesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all trees",
		RunE:  runTreesList,
	}
}

func runTreesList(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	trees, err := config.LoadTrees(cwd)
	if err != nil {
		return fmt.Errorf("loading trees: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(trees.Trees) == 0 {
		fmt.Fprintln(out, "No trees configured.")
		fmt.Fprintln(out, "Use 'lineage trees create NAME' to create a tree.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	fmt.Fprintln(w, "----\t-----------")
	for _, name := range trees.Names() {
		fmt.Fprintf(w, "%s\t%s\n", name, trees.Trees[name].Description)
	}

	return w.Flush()
}

func newTreesCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTreesCreate(cmd, args[0], description)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Tree description")

	return cmd
}

func runTreesCreate(cmd *cobra.Command, name string, description string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if !config.Exists(cwd) {
		return fmt.Errorf("lineage not initialized in %s (run 'lineage init')", cwd)
	}
	if config.SanitizeTreeName(name) == "" {
		return fmt.Errorf("invalid tree name %q", name)
	}

	trees, err := config.LoadTrees(cwd)
	if err != nil {
		return fmt.Errorf("loading trees: %w", err)
	}
	if trees.Has(name) {
		return fmt.Errorf("tree %q already exists", name)
	}

	path, err := createTreeDatabase(cmd.Context(), cwd, name)
	if err != nil {
		return err
	}

	trees.Add(name, config.TreeEntry{Description: description})
	if err := trees.Save(cwd); err != nil {
		return fmt.Errorf("saving trees: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created tree %q at %s\n", name, path)

	return nil
}

func newTreesDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTreesDelete(cmd, args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete the tree database as well")

	return cmd
}

func runTreesDelete(cmd *cobra.Command, name string, force bool) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	trees, err := config.LoadTrees(cwd)
	if err != nil {
		return fmt.Errorf("loading trees: %w", err)
	}
	if !trees.Has(name) {
		return fmt.Errorf("tree %q not found", name)
	}

	dir := config.TreeDir(cwd, name)
	if _, err := os.Stat(dir); err == nil {
		if !force {
			return fmt.Errorf("tree %q has a database at %s, use --force to delete", name, dir)
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing tree directory: %w", err)
		}
	}

	trees.Remove(name)
	if err := trees.Save(cwd); err != nil {
		return fmt.Errorf("saving trees: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted tree %q\n", name)

	return nil
}

// Package main provides the entry point for the lineage CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version     = "0.1.0-dev"
	globalTree  string
	globalUser  string
	showMetrics bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lineage",
		Short:         "A genealogy fact store with event and citation resolution",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalTree, "tree", "t", DefaultTreeName, "Family tree to operate on")
	rootCmd.PersistentFlags().StringVarP(&globalUser, "user", "u", "", "Editing identity (overrides config and LINEAGE_USER)")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "Print resolver metrics to stderr when done")

	rootCmd.AddCommand(
		newInitCmd(),
		newTreesCmd(),
		newTypesCmd(),
		newAddCmd(),
		newFactCmd(),
		newFactsCmd(),
		newEventsCmd(),
		newImportCmd(),
		newExportCmd(),
	)

	return rootCmd
}

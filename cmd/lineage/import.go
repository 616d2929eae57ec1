package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage-core/internal/application/handlers"
	"github.com/ersonp/lineage-core/internal/domain/services"
)

type importFlags struct {
	format string
	dryRun bool
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import facts from JSON or CSV",
		Long: `Sets and cites facts from a structured file, one fact per row.
Rows name owner_kind, owner_id and fact_type, and optionally subtype,
event_id, date, place, description, notes, source and detail.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	return withImportHandler(func(handler *handlers.ImportHandler, deps *Deps) error {
		opts := handlers.ImportOptions{
			Format: flags.format,
			DryRun: flags.dryRun,
		}

		fmt.Fprintf(out, "Importing %s...\n", filePath)

		result, err := handler.Handle(ctx, deps.User, filePath, opts)
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		if len(result.Errors) > 0 {
			fmt.Fprintf(out, "\nErrors (%d):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  %s\n", e.Error())
			}
		}

		fmt.Fprintln(out)
		if flags.dryRun {
			fmt.Fprintf(out, "Dry run: %d facts would be imported", result.Imported)
		} else {
			fmt.Fprintf(out, "Imported: %d facts", result.Imported)
		}

		if result.Cited > 0 {
			fmt.Fprintf(out, ", %d cited", result.Cited)
		}

		if len(result.Errors) > 0 {
			fmt.Fprintf(out, ", %d errors", len(result.Errors))
		}

		fmt.Fprintln(out)

		return nil
	})
}

// withImportHandler creates an ImportHandler and calls the provided function.
func withImportHandler(fn func(*handlers.ImportHandler, *Deps) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		importService := services.NewImportService(d.resolver, d.logger)
		handler := handlers.NewImportHandler(importService)
		return fn(handler, &d.Deps)
	})
}

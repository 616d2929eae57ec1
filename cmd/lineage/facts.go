package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

func newFactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facts KIND ID",
		Short: "Show every fact of a record with its footnotes",
		Long:  "Show every fact of a person, family, child, name or todo record, ordered by date, with one shared footnote section.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFacts(cmd, args[0], args[1])
		},
	}
}

func runFacts(cmd *cobra.Command, kindArg, idArg string) error {
	ctx := cmd.Context()

	kind, id, err := ownerArgs(kindArg, idArg)
	if err != nil {
		return err
	}

	return withDeps(func(deps *Deps) error {
		bio, err := deps.BiographyHandler.Handle(ctx, kind, id)
		if err != nil {
			return fmt.Errorf("rendering %s %d: %w", kind, id, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, bio.Title)
		if len(bio.Entries) == 0 {
			fmt.Fprintln(out, "No facts recorded.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, e := range bio.Entries {
			fmt.Fprintf(w, "%s\t%s\n", e.Label, entryText(e, nil))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		for _, e := range bio.Entries {
			writeWarnings(cmd.ErrOrStderr(), e)
		}
		writeFootnotes(out, bio.Footnotes)
		return nil
	})
}

// ownerArgs parses the KIND ID argument pair shared by record commands.
func ownerArgs(kindArg, idArg string) (entities.OwnerKind, int64, error) {
	kind, err := parseOwnerKind(kindArg)
	if err != nil {
		return "", 0, err
	}
	id, err := parseID(string(kind), idArg)
	if err != nil {
		return "", 0, err
	}
	return kind, id, nil
}

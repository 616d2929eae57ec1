package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage-core/internal/application/handlers"
	"github.com/ersonp/lineage-core/internal/domain/entities"
)

func newTypesCmd() *cobra.Command {
	var subtypes bool

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List fact types",
		Long:  "List the fact type codes, or with --subtypes the event subtypes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subtypes {
				return runSubtypesList(cmd)
			}
			return runTypesList(cmd)
		},
	}

	cmd.Flags().BoolVar(&subtypes, "subtypes", false, "List event subtypes instead")

	return cmd
}

func runTypesList(cmd *cobra.Command) error {
	handler := handlers.NewTaxonomyHandler()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tOWNER\tSTORAGE\tPARTS")
	for _, t := range handler.HandleList() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.Code, t.Name, t.Owner, t.Storage, strings.Join(partsOf(t), ","))
	}

	return w.Flush()
}

func runSubtypesList(cmd *cobra.Command) error {
	handler := handlers.NewTaxonomyHandler()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tLABEL")
	for _, s := range handler.HandleSubtypes() {
		fmt.Fprintf(w, "%d\t%s\n", s.Code, s.Label)
	}

	return w.Flush()
}

// partsOf lists the parts a fact type carries.
func partsOf(t handlers.FactTypeView) []string {
	if t.Storage == entities.StorageEvent {
		return []string{
			string(entities.PartDate), string(entities.PartPlace),
			string(entities.PartDescription), string(entities.PartNotes),
		}
	}
	var parts []string
	if t.Fields.Date != "" {
		parts = append(parts, string(entities.PartDate))
	}
	if t.Fields.Place != "" {
		parts = append(parts, string(entities.PartPlace))
	}
	if t.Fields.Description != "" {
		parts = append(parts, string(entities.PartDescription))
	}
	if t.Fields.Notes != "" {
		parts = append(parts, string(entities.PartNotes))
	}
	return parts
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage-core/internal/application/handlers"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage the standalone events of a record",
	}

	cmd.AddCommand(
		newEventsListCmd(),
		newEventsAddCmd(),
		newEventsDeleteCmd(),
		newEventsRepairCmd(),
	)

	return cmd
}

func newEventsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list KIND ID",
		Short: "List the events of a person or family",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventsList(cmd, args[0], args[1])
		},
	}
}

func runEventsList(cmd *cobra.Command, kindArg, idArg string) error {
	ctx := cmd.Context()

	kind, id, err := ownerArgs(kindArg, idArg)
	if err != nil {
		return err
	}

	return withDeps(func(deps *Deps) error {
		events, err := deps.EventsHandler.HandleList(ctx, kind, id)
		if err != nil {
			return fmt.Errorf("listing events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No events found.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tORDER\tSUBTYPE\tLABEL\tDATE\tPREFERRED")
		for _, ev := range events {
			preferred := ""
			if ev.Preferred {
				preferred = "yes"
			}
			fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\t%s\n", ev.ID, ev.Order, ev.Subtype, ev.Label, ev.Date, preferred)
		}

		return w.Flush()
	})
}

func newEventsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add KIND ID SUBTYPE",
		Short: "Add an event of the given subtype",
		Long:  "Add an event. The first event of a subtype becomes the preferred one.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventsAdd(cmd, args[0], args[1], args[2])
		},
	}
}

func runEventsAdd(cmd *cobra.Command, kindArg, idArg, subtypeArg string) error {
	ctx := cmd.Context()

	kind, id, err := ownerArgs(kindArg, idArg)
	if err != nil {
		return err
	}
	sub, err := parseSubtype(subtypeArg)
	if err != nil {
		return err
	}

	return withDeps(func(deps *Deps) error {
		ev, err := deps.EventsHandler.HandleAdd(ctx, deps.User, kind, id, sub)
		if err != nil {
			return fmt.Errorf("adding event: %w", err)
		}
		printEvent(cmd, "Added", ev)
		return nil
	})
}

func newEventsDeleteCmd() *cobra.Command {
	var reassign int64

	cmd := &cobra.Command{
		Use:   "delete EVENT",
		Short: "Delete an event",
		Long: `Delete an event. Citations move to the --reassign event when given;
otherwise an event with citations cannot be deleted. Deleting the
preferred event promotes the next one of its subtype.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventsDelete(cmd, args[0], reassign)
		},
	}

	cmd.Flags().Int64Var(&reassign, "reassign", 0, "Event ID that receives the citations")

	return cmd
}

func runEventsDelete(cmd *cobra.Command, eventArg string, reassign int64) error {
	ctx := cmd.Context()

	eventID, err := parseID("event", eventArg)
	if err != nil {
		return err
	}

	return withDeps(func(deps *Deps) error {
		if err := deps.EventsHandler.HandleDelete(ctx, deps.User, eventID, reassign); err != nil {
			return fmt.Errorf("deleting event: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %d\n", eventID)
		return nil
	})
}

func newEventsRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair KIND ID SUBTYPE",
		Short: "Leave exactly one preferred event of a subtype",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventsRepair(cmd, args[0], args[1], args[2])
		},
	}
}

func runEventsRepair(cmd *cobra.Command, kindArg, idArg, subtypeArg string) error {
	ctx := cmd.Context()

	kind, id, err := ownerArgs(kindArg, idArg)
	if err != nil {
		return err
	}
	sub, err := parseSubtype(subtypeArg)
	if err != nil {
		return err
	}

	return withDeps(func(deps *Deps) error {
		ev, err := deps.EventsHandler.HandleRepair(ctx, deps.User, kind, id, sub)
		if err != nil {
			return fmt.Errorf("repairing events: %w", err)
		}
		if ev == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "No %s events on %s %d\n", sub.Label(), kind, id)
			return nil
		}
		printEvent(cmd, "Preferred", ev)
		return nil
	})
}

func printEvent(cmd *cobra.Command, verb string, ev *handlers.EventView) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s event %d (%s)\n", verb, ev.ID, ev.Label)
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage-core/internal/application/handlers"
	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// factFlags select one fact in addition to its type and owner arguments.
type factFlags struct {
	subtype string
	eventID int64
	asJSON  bool
}

func (f *factFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.subtype, "subtype", "s", "", "Event subtype code or label (generic event types)")
	cmd.Flags().Int64VarP(&f.eventID, "event", "e", 0, "Specific event ID instead of the preferred one")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the rendered fact as JSON")
}

func (f *factFlags) request(typeArg, ownerArg string) (handlers.FactRequest, error) {
	code, err := parseFactType(typeArg)
	if err != nil {
		return handlers.FactRequest{}, err
	}
	ownerID, err := parseID("owner", ownerArg)
	if err != nil {
		return handlers.FactRequest{}, err
	}
	sub, err := parseSubtype(f.subtype)
	if err != nil {
		return handlers.FactRequest{}, err
	}
	return handlers.FactRequest{
		FactType: code,
		OwnerID:  ownerID,
		Subtype:  sub,
		EventID:  f.eventID,
	}, nil
}

func newFactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fact",
		Short: "Show, edit and cite single facts",
	}

	cmd.AddCommand(
		newFactShowCmd(),
		newFactSetCmd(),
		newFactCiteCmd(),
	)

	return cmd
}

func newFactShowCmd() *cobra.Command {
	var flags factFlags

	cmd := &cobra.Command{
		Use:   "show TYPE OWNER",
		Short: "Show one fact without changing anything",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFactShow(cmd, args[0], args[1], flags)
		},
	}

	flags.register(cmd)

	return cmd
}

func runFactShow(cmd *cobra.Command, typeArg, ownerArg string, flags factFlags) error {
	ctx := cmd.Context()

	req, err := flags.request(typeArg, ownerArg)
	if err != nil {
		return err
	}

	return withDeps(func(deps *Deps) error {
		result, err := deps.FactHandler.HandleShow(ctx, req)
		if err != nil {
			return fmt.Errorf("showing fact: %w", err)
		}
		return printFactResult(cmd, result, flags.asJSON)
	})
}

func newFactSetCmd() *cobra.Command {
	var (
		flags    factFlags
		creating bool
		values   struct {
			date, place, description, notes string
		}
	)

	cmd := &cobra.Command{
		Use:   "set TYPE OWNER",
		Short: "Set the parts of one fact",
		Long: `Set the date, place, description or notes of one fact. Only the given
flags are changed; an empty value clears the part. A missing event is
created on demand.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := &entities.Overrides{}
			if cmd.Flags().Changed("date") {
				overrides.Date = entities.Text(values.date)
			}
			if cmd.Flags().Changed("place") {
				overrides.Place = entities.Text(values.place)
			}
			if cmd.Flags().Changed("description") {
				overrides.Description = entities.Text(values.description)
			}
			if cmd.Flags().Changed("notes") {
				overrides.Notes = entities.Text(values.notes)
			}
			if overrides.IsZero() {
				return fmt.Errorf("nothing to set, use --date, --place, --description or --notes")
			}
			return runFactSet(cmd, args[0], args[1], flags, overrides, creating)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&values.date, "date", "", "Date text")
	cmd.Flags().StringVar(&values.place, "place", "", "Place name, created when unknown")
	cmd.Flags().StringVar(&values.description, "description", "", "Description")
	cmd.Flags().StringVar(&values.notes, "notes", "", "Notes")
	cmd.Flags().BoolVar(&creating, "create", false, "The owner record is being created")

	return cmd
}

func runFactSet(cmd *cobra.Command, typeArg, ownerArg string, flags factFlags, overrides *entities.Overrides, creating bool) error {
	ctx := cmd.Context()

	req, err := flags.request(typeArg, ownerArg)
	if err != nil {
		return err
	}

	return withDeps(func(deps *Deps) error {
		result, err := deps.FactHandler.HandleSet(ctx, deps.User, req, overrides, creating)
		if err != nil {
			return fmt.Errorf("setting fact: %w", err)
		}
		return printFactResult(cmd, result, flags.asJSON)
	})
}

func newFactCiteCmd() *cobra.Command {
	var (
		flags  factFlags
		source string
		detail string
	)

	cmd := &cobra.Command{
		Use:   "cite TYPE OWNER",
		Short: "Attach a source citation to one fact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFactCite(cmd, args[0], args[1], flags, source, detail)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&source, "source", "", "Source name, created when unknown")
	cmd.Flags().StringVar(&detail, "detail", "", "Page, entry or other citation detail")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func runFactCite(cmd *cobra.Command, typeArg, ownerArg string, flags factFlags, source, detail string) error {
	ctx := cmd.Context()

	req, err := flags.request(typeArg, ownerArg)
	if err != nil {
		return err
	}

	return withDeps(func(deps *Deps) error {
		citation, err := deps.FactHandler.HandleCite(ctx, deps.User, req, source, detail)
		if err != nil {
			return fmt.Errorf("citing fact: %w", err)
		}

		out := cmd.OutOrStdout()
		if flags.asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(citation)
		}
		fmt.Fprintf(out, "Added citation %d: %s\n", citation.ID, entities.SourceCitation{Citation: *citation}.Text())
		return nil
	})
}

func printFactResult(cmd *cobra.Command, result *handlers.FactResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	writeWarnings(cmd.ErrOrStderr(), result.Fact)
	fmt.Fprintf(out, "%s: %s\n", result.Fact.Label, entryText(result.Fact, nil))
	if result.Fact.ForWhom != "" {
		fmt.Fprintf(out, "for %s\n", result.Fact.ForWhom)
	}
	writeFootnotes(out, result.Footnotes)
	return nil
}

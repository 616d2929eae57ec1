package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage-core/internal/application/handlers"
	"github.com/ersonp/lineage-core/internal/domain/entities"
)

type exportFlags struct {
	format string
	output string
}

type exporter struct {
	format string
	output string
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export KIND ID",
		Short: "Export the facts of a record to file",
		Long:  "Exports the facts of a record with their footnotes to JSON, CSV, or markdown format.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "markdown", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, kindArg, idArg string, flags exportFlags) error {
	if !contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	kind, id, err := ownerArgs(kindArg, idArg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	return withDeps(func(deps *Deps) error {
		bio, err := deps.BiographyHandler.Handle(ctx, kind, id)
		if err != nil {
			return fmt.Errorf("rendering %s %d: %w", kind, id, err)
		}

		e := &exporter{
			format: flags.format,
			output: flags.output,
		}
		return e.export(cmd.OutOrStdout(), bio)
	})
}

func (e *exporter) export(stdout io.Writer, bio *handlers.Biography) (err error) {
	w := stdout
	var f *os.File

	if e.output != "" {
		f, err = os.OpenFile(e.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	}

	if err := e.formatBiography(w, bio); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if e.output != "" {
		fmt.Fprintf(stdout, "Exported %d facts to %s\n", len(bio.Entries), e.output)
	}

	return nil
}

func (e *exporter) formatBiography(w io.Writer, bio *handlers.Biography) error {
	switch e.format {
	case "json":
		return formatJSON(w, bio)
	case "csv":
		return formatCSV(w, bio)
	case "markdown":
		return formatMarkdown(w, bio)
	default:
		return fmt.Errorf("unknown format: %s", e.format)
	}
}

func formatJSON(w io.Writer, bio *handlers.Biography) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(bio)
}

func formatCSV(w io.Writer, bio *handlers.Biography) error {
	writer := csv.NewWriter(w)

	header := []string{"fact_type", "label", "event_id", "date", "place", "description", "notes", "preferred", "footnotes"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, e := range bio.Entries {
		place := ""
		if e.Place != nil {
			place = e.Place.Name
		}
		eventID := ""
		if e.EventID != 0 {
			eventID = strconv.FormatInt(e.EventID, 10)
		}
		numbers := make([]string, 0, len(e.Footnotes))
		for _, n := range e.Footnotes {
			numbers = append(numbers, strconv.Itoa(n))
		}
		row := []string{
			strconv.Itoa(int(e.FactType)),
			e.Label,
			eventID,
			e.Date,
			place,
			e.Description,
			e.Notes,
			strconv.FormatBool(e.Preferred),
			strings.Join(numbers, " "),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// formatMarkdown writes the biography as a markdown page. Each shown place
// carries its render anchor so links from the place list resolve.
func formatMarkdown(w io.Writer, bio *handlers.Biography) error {
	if _, err := fmt.Fprintf(w, "# %s\n\n", escapeMarkdown(bio.Title)); err != nil {
		return err
	}

	if len(bio.Entries) == 0 {
		_, err := fmt.Fprint(w, "No facts recorded.\n")
		return err
	}

	anchored := func(ref *entities.DisplayRef) string {
		if ref.AnchorID == "" {
			return escapeMarkdown(ref.Name)
		}
		return fmt.Sprintf(`<span id="%s">%s</span>`, ref.AnchorID, escapeMarkdown(ref.Name))
	}
	for _, e := range bio.Entries {
		if _, err := fmt.Fprintf(w, "- **%s** %s\n", escapeMarkdown(e.Label), entryText(e, anchored)); err != nil {
			return err
		}
	}

	if len(bio.Places) > 0 {
		if _, err := fmt.Fprint(w, "\n## Places\n\n"); err != nil {
			return err
		}
		for _, p := range bio.Places {
			if _, err := fmt.Fprintf(w, "- [%s](#%s)\n", escapeMarkdown(p.Name), p.AnchorID); err != nil {
				return err
			}
		}
	}

	if len(bio.Footnotes) > 0 {
		if _, err := fmt.Fprint(w, "\n## Sources\n\n"); err != nil {
			return err
		}
		for _, f := range bio.Footnotes {
			if _, err := fmt.Fprintf(w, "%d. %s\n", f.Number, escapeMarkdown(f.Text)); err != nil {
				return err
			}
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

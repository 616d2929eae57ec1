package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/domain/services"
	"github.com/ersonp/lineage-core/internal/infrastructure/parsers"
)

// ImportHandler reads fact rows from a file and feeds them to the
// import service.
type ImportHandler struct {
	service *services.ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{service: service}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format string // "json", "csv", or "auto"
	DryRun bool   // resolve every row without writing
}

// ImportResult reports what an import did.
type ImportResult struct {
	Imported int
	Cited    int
	Errors   []services.ImportError
}

// parserFor picks the parser named by format, or by the file extension
// when format is empty or "auto".
func parserFor(filePath, format string) (parsers.Parser, error) {
	if format == "" || format == "auto" {
		if p := parsers.ForFile(filePath); p != nil {
			return p, nil
		}
		return nil, fmt.Errorf("cannot detect format of %s from extension %q", filePath, filepath.Ext(filePath))
	}
	if p := parsers.ForFormat(format); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("unsupported import format %q", format)
}

// Handle imports the fact rows of filePath on behalf of user.
func (h *ImportHandler) Handle(ctx context.Context, user entities.UserContext, filePath string, opts ImportOptions) (*ImportResult, error) {
	parser, err := parserFor(filePath, opts.Format)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	rows, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(filePath), err)
	}
	if len(rows) == 0 {
		return &ImportResult{}, nil
	}

	res, err := h.service.Import(ctx, user, rows, services.ImportOptions{DryRun: opts.DryRun})
	if err != nil {
		return nil, err
	}
	return &ImportResult{Imported: res.Imported, Cited: res.Cited, Errors: res.Errors}, nil
}

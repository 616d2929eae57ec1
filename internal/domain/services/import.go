package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/lineage-core/internal/domain/entities"
	"github.com/ersonp/lineage-core/internal/infrastructure/parsers"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun bool // Resolve every row without saving
}

// ImportError represents an error for a specific fact during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Cited    int
	Errors   []ImportError
}

// ImportService sets and cites facts in bulk through the resolver.
type ImportService struct {
	resolver *ResolverService
	logger   *zap.Logger
}

// NewImportService creates a new import service.
func NewImportService(resolver *ResolverService, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		resolver: resolver,
		logger:   logger.Named("import"),
	}
}

// importRow is a validated row and the request that resolves it.
type importRow struct {
	raw  *parsers.RawFact
	line int
	req  ResolveRequest
}

// Import validates every row first, then sets and cites the valid ones in
// file order. A row that fails is reported and the rest still run; each
// row is saved on its own.
func (s *ImportService) Import(ctx context.Context, user entities.UserContext, rawFacts []parsers.RawFact, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	rows, validationErrors := s.validateFacts(rawFacts)
	result.Errors = validationErrors

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cited, err := s.importRow(ctx, user, row, opts.DryRun)
		if err != nil {
			s.logger.Warn("import row failed", zap.Int("line", row.line), zap.Error(err))
			result.Errors = append(result.Errors, ImportError{Line: row.line, Message: err.Error()})
			continue
		}
		result.Imported++
		if cited {
			result.Cited++
		}
	}

	s.logger.Info("import finished",
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("imported", result.Imported),
		zap.Int("cited", result.Cited),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (s *ImportService) importRow(ctx context.Context, user entities.UserContext, row importRow, dryRun bool) (bool, error) {
	req := row.req
	req.ReadOnly = dryRun

	h, err := s.resolver.ResolveWith(ctx, req)
	if err != nil {
		return false, err
	}
	if dryRun {
		return row.raw.Source != "", nil
	}

	if row.raw.HasValues() {
		if err := s.resolver.Save(ctx, user, h); err != nil {
			return false, fmt.Errorf("saving %s: %w", h.Label, err)
		}
	}
	if row.raw.Source == "" {
		return false, nil
	}
	if _, err := s.resolver.Cite(ctx, user, h, row.raw.Source, row.raw.Detail); err != nil {
		return false, err
	}
	return true, nil
}

// validateFacts validates raw facts and returns valid rows with any errors.
func (s *ImportService) validateFacts(rawFacts []parsers.RawFact) ([]importRow, []ImportError) {
	rows := make([]importRow, 0, len(rawFacts))
	var errors []ImportError

	for i := range rawFacts {
		raw := &rawFacts[i]
		lineNum := raw.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		req, err := validateRawFact(raw, lineNum)
		if err != nil {
			errors = append(errors, *err)
			continue
		}

		rows = append(rows, importRow{raw: raw, line: lineNum, req: req})
	}

	return rows, errors
}

// validateRawFact validates a single raw fact and builds its request.
func validateRawFact(raw *parsers.RawFact, lineNum int) (ResolveRequest, *ImportError) {
	kind, ok := entities.ParseOwnerKind(raw.OwnerKind)
	if !ok {
		return ResolveRequest{}, &ImportError{
			Line:    lineNum,
			Field:   "owner_kind",
			Value:   raw.OwnerKind,
			Message: fmt.Sprintf("invalid owner_kind %q (valid: %v)", raw.OwnerKind, entities.OwnerKinds),
		}
	}
	if raw.OwnerID <= 0 {
		return ResolveRequest{}, &ImportError{Line: lineNum, Field: "owner_id", Message: "missing required field: owner_id"}
	}

	code, err := entities.ParseFactType(raw.FactType)
	if err != nil {
		return ResolveRequest{}, &ImportError{Line: lineNum, Field: "fact_type", Value: raw.FactType, Message: err.Error()}
	}
	info, _ := entities.LookupFactType(code)
	if info.Owner != kind {
		return ResolveRequest{}, &ImportError{
			Line:    lineNum,
			Field:   "fact_type",
			Value:   raw.FactType,
			Message: fmt.Sprintf("%s is a fact of %s records, not %s", info.Name, info.Owner, kind),
		}
	}

	var sub entities.EventSubtype
	if raw.Subtype != "" {
		if sub, ok = entities.ParseEventSubtype(raw.Subtype); !ok {
			return ResolveRequest{}, &ImportError{
				Line:    lineNum,
				Field:   "subtype",
				Value:   raw.Subtype,
				Message: fmt.Sprintf("unknown event subtype %q", raw.Subtype),
			}
		}
	}

	if !raw.HasValues() && raw.Source == "" {
		return ResolveRequest{}, &ImportError{Line: lineNum, Message: "nothing to import: no date, place, description, notes or source"}
	}

	return ResolveRequest{
		FactType: code,
		OwnerID:  raw.OwnerID,
		Subtype:  sub,
		EventID:  raw.EventID,
		Overrides: &entities.Overrides{
			Date:        raw.Date,
			Place:       raw.Place,
			Description: raw.Description,
			Notes:       raw.Notes,
		},
	}, nil
}

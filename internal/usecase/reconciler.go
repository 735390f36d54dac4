package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

// ReconcilerService ingests the TSE dictamen dataset and reconciles each
// ruling onto its adhesion line by (sheet number, line position). Rows are
// processed independently; a bad row never aborts the batch.
type ReconcilerService struct {
	Sheets    SheetRepository
	Adhesions AdhesionRepository
	Authz     petition.Authorizer
	Log       *zap.Logger
}

func NewReconcilerService(sheets SheetRepository, adhesions AdhesionRepository, authz petition.Authorizer, log *zap.Logger) *ReconcilerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReconcilerService{Sheets: sheets, Adhesions: adhesions, Authz: authz, Log: log}
}

type dictamenRow struct {
	sheetNumber int
	line        int
	state       petition.AdhesionState
	cause       *petition.RejectionCause
}

// ImportDictamen parses the ruling dataset and applies each row. Columns:
// sheet number, line (1-5), outcome, optional rejection cause; separated by
// comma or tab, with an optional header row. Requires administrator or
// data-entry role.
func (s *ReconcilerService) ImportDictamen(ctx context.Context, principal petition.Principal, content string) ReconcileResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin, petition.RoleDataEntry); err != nil {
		return ReconcileResult{Error: err.Error(), InvalidRows: []string{}}
	}

	rows := parseDictamen(content)
	if len(rows) == 0 {
		return ReconcileResult{Error: "dictamen file is empty", InvalidRows: []string{}}
	}

	result := ReconcileResult{InvalidRows: []string{}}
	dataRows := make([]dictamenRow, 0, len(rows))

	start := 0
	if looksLikeHeader(rows[0]) {
		start = 1
	}
	for i := start; i < len(rows); i++ {
		cells := rows[i]
		sheetNumber, err := strconv.Atoi(cell(cells, 0))
		if err != nil || sheetNumber < 1 {
			result.InvalidRows = append(result.InvalidRows, fmt.Sprintf("row %d: invalid sheet number", i+1))
			continue
		}
		line, err := strconv.Atoi(cell(cells, 1))
		if err != nil || line < 1 || line > petition.LinesPerSheet {
			result.InvalidRows = append(result.InvalidRows, fmt.Sprintf("row %d: line must be 1-%d", i+1, petition.LinesPerSheet))
			continue
		}
		stateRaw := normalizeKeyword(cell(cells, 2))
		if !petition.ValidAdhesionState(petition.AdhesionState(stateRaw)) {
			result.InvalidRows = append(result.InvalidRows, fmt.Sprintf("row %d: invalid outcome %q", i+1, cell(cells, 2)))
			continue
		}
		row := dictamenRow{
			sheetNumber: sheetNumber,
			line:        line,
			state:       petition.AdhesionState(stateRaw),
		}
		// Unknown or missing cause is null, never a row failure.
		if causeRaw := normalizeKeyword(cell(cells, 3)); causeRaw != "" {
			if cause := petition.RejectionCause(causeRaw); petition.ValidRejectionCause(cause) {
				row.cause = &cause
			}
		}
		dataRows = append(dataRows, row)
	}

	for _, row := range dataRows {
		sheet, err := s.Sheets.GetByNumber(ctx, row.sheetNumber)
		if err != nil {
			if errors.Is(err, petition.ErrNotFound) {
				result.Skipped++
				continue
			}
			result.InvalidRows = append(result.InvalidRows, fmt.Sprintf("sheet %d line %d: %v", row.sheetNumber, row.line, err))
			continue
		}
		adhesion, err := s.Adhesions.GetBySheetAndLine(ctx, sheet.ID, row.line)
		if err != nil {
			if errors.Is(err, petition.ErrNotFound) {
				result.Skipped++
				continue
			}
			result.InvalidRows = append(result.InvalidRows, fmt.Sprintf("sheet %d line %d: %v", row.sheetNumber, row.line, err))
			continue
		}
		cause := row.cause
		if !petition.IsRejection(row.state) {
			cause = nil
		}
		if err := s.Adhesions.SetOutcome(ctx, adhesion.ID, row.state, cause); err != nil {
			result.InvalidRows = append(result.InvalidRows, fmt.Sprintf("sheet %d line %d: %v", row.sheetNumber, row.line, err))
			continue
		}
		result.Updated++
	}

	result.Success = len(result.InvalidRows) == 0
	s.Log.Info("dictamen import",
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("invalid_rows", len(result.InvalidRows)),
	)
	return result
}

// parseDictamen splits the blob into rows of trimmed cells. Commas and tabs
// both separate fields; quote state toggles on every double quote and
// separators inside quotes are literal. encoding/csv is deliberately not used:
// it cannot mix separators within one file nor reproduce this lenient quoting.
func parseDictamen(content string) [][]string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		var cells []string
		var current strings.Builder
		inQuotes := false
		for _, c := range line {
			switch {
			case c == '"':
				inQuotes = !inQuotes
			case (c == ',' || c == '\t') && !inQuotes:
				cells = append(cells, strings.TrimSpace(current.String()))
				current.Reset()
			default:
				current.WriteRune(c)
			}
		}
		cells = append(cells, strings.TrimSpace(current.String()))
		rows = append(rows, cells)
	}
	return rows
}

// looksLikeHeader detects an optional header row: a first cell containing a
// letter, or mentioning "hoja"/"numero". Data rows always start with a sheet
// number, so checking the first column never swallows a real row.
func looksLikeHeader(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, r := range cells[0] {
		if unicode.IsLetter(r) {
			return true
		}
	}
	first := strings.ToLower(cells[0])
	return strings.Contains(first, "hoja") || strings.Contains(first, "numero")
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return cells[i]
}

// normalizeKeyword uppercases a raw keyword and replaces every internal
// whitespace character with an underscore ("revision tse" -> "REVISION_TSE").
func normalizeKeyword(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	upper := strings.ToUpper(trimmed)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, upper)
}

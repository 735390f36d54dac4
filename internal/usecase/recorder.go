package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

// RecorderService validates and persists the five lines of a sheet, running
// cross-sheet duplicate detection on citizen DPIs.
//
// Two concurrent saves of the same DPI on different sheets can both pass the
// duplicate check and both persist as accepted; there is no lock around the
// check. Known limitation.
type RecorderService struct {
	Sheets    SheetRepository
	Adhesions AdhesionRepository
	Authz     petition.Authorizer
	Log       *zap.Logger
}

func NewRecorderService(sheets SheetRepository, adhesions AdhesionRepository, authz petition.Authorizer, log *zap.Logger) *RecorderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecorderService{Sheets: sheets, Adhesions: adhesions, Authz: authz, Log: log}
}

// LineInput is one signature slot as typed by the clerk. Empty DPI/name are
// stored as null; Cause is only kept for rejection outcomes.
type LineInput struct {
	Line        int                     `json:"line"`
	CitizenDPI  string                  `json:"citizenDpi"`
	CitizenName string                  `json:"citizenName"`
	State       petition.AdhesionState  `json:"state"`
	Cause       petition.RejectionCause `json:"cause,omitempty"`
}

// SaveLines persists exactly five lines for the sheet identified by its
// number. Line i must carry position i+1; any mismatch fails the whole call.
// Lines declared PENDIENTE or ACEPTADO with a DPI already active on another
// sheet are overridden to RECHAZADO_INTERNO and reported as alerts.
// Requires administrator or data-entry role.
func (s *RecorderService) SaveLines(ctx context.Context, principal petition.Principal, sheetNumber int, lines []LineInput) RecorderResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin, petition.RoleDataEntry); err != nil {
		return RecorderResult{Error: err.Error(), DuplicateAlerts: []string{}}
	}
	if len(lines) != petition.LinesPerSheet {
		return RecorderResult{
			Error:           fmt.Sprintf("exactly %d adhesion lines are required", petition.LinesPerSheet),
			DuplicateAlerts: []string{},
		}
	}
	for i, line := range lines {
		if line.Line != i+1 {
			return RecorderResult{
				Error:           fmt.Sprintf("line %d: position must be %d", i+1, i+1),
				DuplicateAlerts: []string{},
			}
		}
		if !petition.ValidAdhesionState(line.State) {
			return RecorderResult{
				Error:           fmt.Sprintf("line %d: invalid outcome %q", i+1, line.State),
				DuplicateAlerts: []string{},
			}
		}
		if line.Cause != "" && !petition.ValidRejectionCause(line.Cause) {
			return RecorderResult{
				Error:           fmt.Sprintf("line %d: invalid rejection cause %q", i+1, line.Cause),
				DuplicateAlerts: []string{},
			}
		}
	}

	sheet, err := s.Sheets.GetByNumber(ctx, sheetNumber)
	if err != nil {
		if errors.Is(err, petition.ErrNotFound) {
			return RecorderResult{Error: "sheet not found", DuplicateAlerts: []string{}}
		}
		return RecorderResult{Error: err.Error(), DuplicateAlerts: []string{}}
	}

	alerts := []string{}
	rows := make([]petition.AdhesionLine, 0, len(lines))
	for _, line := range lines {
		state := line.State
		dpi := strings.TrimSpace(line.CitizenDPI)
		name := strings.TrimSpace(line.CitizenName)

		if (state == petition.AdhesionPending || state == petition.AdhesionAccepted) && dpi != "" {
			dup, err := s.Adhesions.HasActiveDPIElsewhere(ctx, dpi, sheet.ID)
			if err != nil {
				return RecorderResult{
					Error:           fmt.Sprintf("line %d: %v", line.Line, err),
					DuplicateAlerts: alerts,
				}
			}
			if dup {
				state = petition.AdhesionInternalRejected
				alerts = append(alerts, fmt.Sprintf("line %d: possible duplicate (DPI %s)", line.Line, dpi))
			}
		}

		row := petition.AdhesionLine{
			SheetID: sheet.ID,
			Line:    line.Line,
			State:   state,
		}
		if dpi != "" {
			row.CitizenDPI = &dpi
		}
		if name != "" {
			row.CitizenName = &name
		}
		if petition.IsRejection(state) && line.Cause != "" {
			cause := line.Cause
			row.Cause = &cause
		}
		rows = append(rows, row)
	}

	if err := s.Adhesions.SaveLines(ctx, sheet.ID, rows); err != nil {
		return RecorderResult{Error: err.Error(), DuplicateAlerts: alerts}
	}
	s.Log.Info("adhesion lines saved",
		zap.Int("sheet_number", sheetNumber),
		zap.Int("duplicates", len(alerts)),
	)
	return RecorderResult{Success: true, DuplicateAlerts: alerts}
}

// SheetLinesResult is the read shape for a sheet's five lines.
type SheetLinesResult struct {
	SheetID string                  `json:"sheetId,omitempty"`
	Lines   []petition.AdhesionLine `json:"lines"`
	Error   string                  `json:"error,omitempty"`
}

// GetSheetLines fetches the five lines of a sheet by sheet number, ordered by
// position. Requires administrator or data-entry role.
func (s *RecorderService) GetSheetLines(ctx context.Context, principal petition.Principal, sheetNumber int) SheetLinesResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin, petition.RoleDataEntry); err != nil {
		return SheetLinesResult{Error: err.Error()}
	}
	sheet, err := s.Sheets.GetByNumber(ctx, sheetNumber)
	if err != nil {
		if errors.Is(err, petition.ErrNotFound) {
			return SheetLinesResult{Error: "sheet not found"}
		}
		return SheetLinesResult{Error: err.Error()}
	}
	lines, err := s.Adhesions.ListBySheet(ctx, sheet.ID)
	if err != nil {
		return SheetLinesResult{SheetID: sheet.ID, Error: err.Error()}
	}
	return SheetLinesResult{SheetID: sheet.ID, Lines: lines}
}

// ListLinesBySheetID lists a sheet's lines for the detail view. Auditors may
// read alongside administrators and clerks.
func (s *RecorderService) ListLinesBySheetID(ctx context.Context, principal petition.Principal, sheetID string) SheetLinesResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin, petition.RoleDataEntry, petition.RoleAuditor); err != nil {
		return SheetLinesResult{Error: err.Error()}
	}
	lines, err := s.Adhesions.ListBySheet(ctx, sheetID)
	if err != nil {
		return SheetLinesResult{Error: err.Error()}
	}
	return SheetLinesResult{SheetID: sheetID, Lines: lines}
}

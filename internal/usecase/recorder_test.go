package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

func newRecorder(store *fakeStore) *RecorderService {
	return NewRecorderService(store.sheetRepo(), store.adhesionRepo(), newAuthorizer(), nil)
}

func fiveLines() []LineInput {
	lines := make([]LineInput, petition.LinesPerSheet)
	for i := range lines {
		lines[i] = LineInput{Line: i + 1, State: petition.AdhesionPending}
	}
	return lines
}

func TestSaveLinesPersistsFive(t *testing.T) {
	store := newFakeStore()
	ana := store.addLeader("Ana", "100")
	sheet := store.addSheet(1, ana.ID, petition.SheetInCirculation)
	svc := newRecorder(store)

	lines := fiveLines()
	lines[0] = LineInput{Line: 1, CitizenDPI: "1111", CitizenName: "Carlos", State: petition.AdhesionAccepted}
	lines[1] = LineInput{Line: 2, CitizenDPI: "2222", CitizenName: "Diana", State: petition.AdhesionRejected, Cause: petition.CauseNotRegistered}

	result := svc.SaveLines(context.Background(), clerkPrincipal(), 1, lines)
	if !result.Success {
		t.Fatalf("save failed: %s", result.Error)
	}
	if len(result.DuplicateAlerts) != 0 {
		t.Fatalf("alerts = %v, want none", result.DuplicateAlerts)
	}

	saved := store.lines[sheet.ID]
	if len(saved) != petition.LinesPerSheet {
		t.Fatalf("stored %d lines, want %d", len(saved), petition.LinesPerSheet)
	}
	if saved[0].State != petition.AdhesionAccepted || saved[0].CitizenDPI == nil || *saved[0].CitizenDPI != "1111" {
		t.Fatalf("line 1 not persisted: %+v", saved[0])
	}
	if saved[1].Cause == nil || *saved[1].Cause != petition.CauseNotRegistered {
		t.Fatalf("line 2 cause not persisted: %+v", saved[1])
	}
}

func TestSaveLinesCauseOnlyKeptForRejections(t *testing.T) {
	store := newFakeStore()
	ana := store.addLeader("Ana", "100")
	sheet := store.addSheet(1, ana.ID, petition.SheetInCirculation)
	svc := newRecorder(store)

	lines := fiveLines()
	// A cause on an accepted line is dropped, not an error.
	lines[0] = LineInput{Line: 1, CitizenDPI: "1111", State: petition.AdhesionAccepted, Cause: petition.CauseDuplicate}

	result := svc.SaveLines(context.Background(), adminPrincipal(), 1, lines)
	if !result.Success {
		t.Fatalf("save failed: %s", result.Error)
	}
	if store.lines[sheet.ID][0].Cause != nil {
		t.Fatalf("cause persisted for accepted line: %v", *store.lines[sheet.ID][0].Cause)
	}
}

func TestSaveLinesDuplicateOverride(t *testing.T) {
	store := newFakeStore()
	ana := store.addLeader("Ana", "100")
	other := store.addSheet(1, ana.ID, petition.SheetInCirculation)
	store.setLine(other.ID, 1, "9999", petition.AdhesionAccepted, nil)
	target := store.addSheet(2, ana.ID, petition.SheetInCirculation)
	svc := newRecorder(store)

	lines := fiveLines()
	lines[2] = LineInput{Line: 3, CitizenDPI: "9999", CitizenName: "Eva", State: petition.AdhesionAccepted}

	result := svc.SaveLines(context.Background(), clerkPrincipal(), 2, lines)
	if !result.Success {
		t.Fatalf("save failed: %s", result.Error)
	}
	if len(result.DuplicateAlerts) != 1 || !strings.Contains(result.DuplicateAlerts[0], "DPI 9999") {
		t.Fatalf("alerts = %v, want one naming DPI 9999", result.DuplicateAlerts)
	}
	saved := store.lines[target.ID]
	if saved[2].State != petition.AdhesionInternalRejected {
		t.Fatalf("line 3 state = %s, want RECHAZADO_INTERNO", saved[2].State)
	}
}

func TestSaveLinesDuplicateIgnoresInactiveStates(t *testing.T) {
	store := newFakeStore()
	ana := store.addLeader("Ana", "100")
	other := store.addSheet(1, ana.ID, petition.SheetInCirculation)
	// A rejected record elsewhere does not block re-registration.
	cause := petition.CauseCaptureError
	store.setLine(other.ID, 1, "9999", petition.AdhesionRejected, &cause)
	target := store.addSheet(2, ana.ID, petition.SheetInCirculation)
	svc := newRecorder(store)

	lines := fiveLines()
	lines[0] = LineInput{Line: 1, CitizenDPI: "9999", State: petition.AdhesionAccepted}

	result := svc.SaveLines(context.Background(), clerkPrincipal(), 2, lines)
	if !result.Success || len(result.DuplicateAlerts) != 0 {
		t.Fatalf("success=%v alerts=%v, want clean save", result.Success, result.DuplicateAlerts)
	}
	if store.lines[target.ID][0].State != petition.AdhesionAccepted {
		t.Fatalf("state = %s, want ACEPTADO", store.lines[target.ID][0].State)
	}
}

func TestSaveLinesValidation(t *testing.T) {
	store := newFakeStore()
	ana := store.addLeader("Ana", "100")
	store.addSheet(1, ana.ID, petition.SheetInCirculation)
	svc := newRecorder(store)

	shuffled := fiveLines()
	shuffled[1].Line = 3

	badState := fiveLines()
	badState[4].State = "MAYBE"

	badCause := fiveLines()
	badCause[0].State = petition.AdhesionRejected
	badCause[0].Cause = "BAD_HANDWRITING"

	tests := []struct {
		name      string
		principal petition.Principal
		number    int
		lines     []LineInput
		wantErr   string
	}{
		{"too few", clerkPrincipal(), 1, fiveLines()[:4], "exactly 5 adhesion lines are required"},
		{"too many", clerkPrincipal(), 1, append(fiveLines(), LineInput{Line: 6}), "exactly 5 adhesion lines are required"},
		{"wrong position", clerkPrincipal(), 1, shuffled, "line 2: position must be 2"},
		{"invalid state", clerkPrincipal(), 1, badState, `line 5: invalid outcome "MAYBE"`},
		{"invalid cause", clerkPrincipal(), 1, badCause, `line 1: invalid rejection cause "BAD_HANDWRITING"`},
		{"missing sheet", clerkPrincipal(), 42, fiveLines(), "sheet not found"},
		{"auditor denied", auditorPrincipal(), 1, fiveLines(), "access denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := svc.SaveLines(context.Background(), tt.principal, tt.number, tt.lines)
			if result.Success {
				t.Fatal("expected failure")
			}
			if !strings.Contains(result.Error, tt.wantErr) {
				t.Fatalf("error = %q, want containing %q", result.Error, tt.wantErr)
			}
		})
	}
}

func TestGetSheetLines(t *testing.T) {
	store := newFakeStore()
	ana := store.addLeader("Ana", "100")
	sheet := store.addSheet(1, ana.ID, petition.SheetInCirculation)
	svc := newRecorder(store)

	result := svc.GetSheetLines(context.Background(), clerkPrincipal(), 1)
	if result.Error != "" {
		t.Fatalf("get failed: %s", result.Error)
	}
	if result.SheetID != sheet.ID || len(result.Lines) != petition.LinesPerSheet {
		t.Fatalf("sheetID=%s lines=%d", result.SheetID, len(result.Lines))
	}
	if denied := svc.GetSheetLines(context.Background(), auditorPrincipal(), 1); denied.Error == "" {
		t.Fatal("auditor should be denied on the entry view")
	}
	if byID := svc.ListLinesBySheetID(context.Background(), auditorPrincipal(), sheet.ID); byID.Error != "" {
		t.Fatalf("auditor detail view failed: %s", byID.Error)
	}
}

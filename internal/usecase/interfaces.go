package usecase

import (
	"context"
	"time"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

// LeaderRepository persists field leaders. Create returns
// petition.ErrConflict on a duplicate DPI. Listings exclude soft-deleted
// leaders; ListActive additionally filters State == activo.
type LeaderRepository interface {
	Create(ctx context.Context, leader petition.Leader) (petition.Leader, error)
	Get(ctx context.Context, id string) (petition.Leader, error)
	Update(ctx context.Context, leader petition.Leader) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, offset, limit int) ([]petition.Leader, int, error)
	ListAll(ctx context.Context) ([]petition.Leader, error)
	ListActive(ctx context.Context, offset, limit int) ([]petition.Leader, int, error)
	CountActive(ctx context.Context) (int, error)
}

// SheetRepository persists petition sheets. CreateWithLines creates the sheet
// and its five blank lines as one atomic unit.
type SheetRepository interface {
	Get(ctx context.Context, id string) (petition.Sheet, error)
	GetByNumber(ctx context.Context, number int) (petition.Sheet, error)
	CreateWithLines(ctx context.Context, sheet petition.Sheet) error
	SetState(ctx context.Context, id string, state petition.SheetState, receivedAt *time.Time) error
	Override(ctx context.Context, id string, state petition.SheetState, leaderID string, receivedAt *time.Time) error
	List(ctx context.Context, state petition.SheetState, offset, limit int) ([]petition.Sheet, int, error)
	CountByLeader(ctx context.Context, leaderID string) (assigned, received int, err error)
	CountAll(ctx context.Context) (assigned, received int, err error)
	CountByState(ctx context.Context) (map[string]int, error)
}

// AdhesionRepository persists the signature lines of a sheet. SaveLines
// upserts all five rows by (sheet, position) in one transaction; failures are
// wrapped with the offending position.
type AdhesionRepository interface {
	ListBySheet(ctx context.Context, sheetID string) ([]petition.AdhesionLine, error)
	GetBySheetAndLine(ctx context.Context, sheetID string, line int) (petition.AdhesionLine, error)
	SaveLines(ctx context.Context, sheetID string, lines []petition.AdhesionLine) error
	SetOutcome(ctx context.Context, id string, state petition.AdhesionState, cause *petition.RejectionCause) error
	HasActiveDPIElsewhere(ctx context.Context, dpi, excludeSheetID string) (bool, error)
	StateCountsByLeader(ctx context.Context, leaderID string) (map[petition.AdhesionState]int, error)
	RejectionCausesByLeader(ctx context.Context, leaderID string) (total, fraud int, err error)
	CountByState(ctx context.Context) (map[string]int, error)
}

// Result shapes returned by the engine operations. Operations never surface a
// Go error to their caller; failures land in the Error/Errors fields.

type AllocationResult struct {
	Success bool     `json:"success"`
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

type CustodyResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type RecorderResult struct {
	Success         bool     `json:"success"`
	Error           string   `json:"error,omitempty"`
	DuplicateAlerts []string `json:"duplicateAlerts"`
}

type ReconcileResult struct {
	Success     bool     `json:"success"`
	Error       string   `json:"error,omitempty"`
	Updated     int      `json:"updated"`
	Skipped     int      `json:"skipped"`
	InvalidRows []string `json:"invalidRows"`
}

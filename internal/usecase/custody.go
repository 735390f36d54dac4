package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

// CustodyService moves sheets through their physical lifecycle. The narrow
// transition is reception (CIRCULACION -> RECIBIDA); anything else goes
// through the administrative override.
type CustodyService struct {
	Sheets  SheetRepository
	Leaders LeaderRepository
	Authz   petition.Authorizer
	Clock   func() time.Time
	Log     *zap.Logger
}

func NewCustodyService(sheets SheetRepository, leaders LeaderRepository, authz petition.Authorizer, log *zap.Logger) *CustodyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CustodyService{Sheets: sheets, Leaders: leaders, Authz: authz, Clock: time.Now, Log: log}
}

// Receive marks a circulating sheet as physically received and stamps the
// reception time. Requires the administrator role.
func (s *CustodyService) Receive(ctx context.Context, principal petition.Principal, sheetNumber int) CustodyResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin); err != nil {
		return CustodyResult{Error: err.Error()}
	}
	sheet, err := s.Sheets.GetByNumber(ctx, sheetNumber)
	if err != nil {
		if errors.Is(err, petition.ErrNotFound) {
			return CustodyResult{Error: "sheet not found"}
		}
		return CustodyResult{Error: err.Error()}
	}
	if sheet.State != petition.SheetInCirculation {
		return CustodyResult{Error: fmt.Sprintf("sheet is not in circulation (current state: %s)", sheet.State)}
	}
	now := s.Clock()
	if err := s.Sheets.SetState(ctx, sheet.ID, petition.SheetReceived, &now); err != nil {
		return CustodyResult{Error: err.Error()}
	}
	s.Log.Info("sheet received", zap.Int("sheet_number", sheetNumber))
	return CustodyResult{Success: true}
}

type OverrideInput struct {
	SheetID  string
	State    petition.SheetState
	LeaderID string // empty keeps the current owner
}

// Override sets any custody state directly and may reassign the owning
// leader. Reception time is stamped when the target state is RECIBIDA.
// Requires the administrator role.
func (s *CustodyService) Override(ctx context.Context, principal petition.Principal, input OverrideInput) CustodyResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin); err != nil {
		return CustodyResult{Error: err.Error()}
	}
	if !petition.ValidSheetState(input.State) {
		return CustodyResult{Error: fmt.Sprintf("invalid sheet state %q", input.State)}
	}
	sheet, err := s.Sheets.Get(ctx, input.SheetID)
	if err != nil {
		if errors.Is(err, petition.ErrNotFound) {
			return CustodyResult{Error: "sheet not found"}
		}
		return CustodyResult{Error: err.Error()}
	}
	leaderID := sheet.LeaderID
	if input.LeaderID != "" && input.LeaderID != sheet.LeaderID {
		leader, err := s.Leaders.Get(ctx, input.LeaderID)
		if err != nil {
			if errors.Is(err, petition.ErrNotFound) {
				return CustodyResult{Error: "target leader not found"}
			}
			return CustodyResult{Error: err.Error()}
		}
		if leader.Deleted() {
			return CustodyResult{Error: "target leader is deleted"}
		}
		leaderID = leader.ID
	}
	receivedAt := sheet.ReceivedAt
	if input.State == petition.SheetReceived {
		now := s.Clock()
		receivedAt = &now
	}
	if err := s.Sheets.Override(ctx, sheet.ID, input.State, leaderID, receivedAt); err != nil {
		return CustodyResult{Error: err.Error()}
	}
	s.Log.Info("sheet override",
		zap.String("sheet_id", sheet.ID),
		zap.String("state", string(input.State)),
		zap.String("leader_id", leaderID),
	)
	return CustodyResult{Success: true}
}

// SheetListing is a sheet row joined with its owner's name for listings.
type SheetListing struct {
	petition.Sheet
	LeaderName string `json:"leaderName,omitempty"`
}

type ListSheetsResult struct {
	Data     []SheetListing `json:"data"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
	Error    string         `json:"error,omitempty"`
}

// ListSheets pages through sheets ordered by number, optionally filtered by
// custody state. Open to all roles.
func (s *CustodyService) ListSheets(ctx context.Context, principal petition.Principal, state petition.SheetState, page, pageSize int) ListSheetsResult {
	page, pageSize = normalizePage(page, pageSize)
	result := ListSheetsResult{Data: []SheetListing{}, Page: page, PageSize: pageSize}
	if err := s.Authz.Require(principal, petition.RoleAdmin, petition.RoleDataEntry, petition.RoleAuditor); err != nil {
		result.Error = err.Error()
		return result
	}
	if state != "" && !petition.ValidSheetState(state) {
		result.Error = fmt.Sprintf("invalid sheet state %q", state)
		return result
	}
	sheets, total, err := s.Sheets.List(ctx, state, (page-1)*pageSize, pageSize)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	// Deleted leaders still own their old sheets, so names resolve through
	// the unfiltered lookup. A failed lookup leaves the name blank rather
	// than failing the page.
	names := make(map[string]string, len(sheets))
	for _, sheet := range sheets {
		if _, ok := names[sheet.LeaderID]; ok {
			continue
		}
		leader, err := s.Leaders.Get(ctx, sheet.LeaderID)
		if err != nil {
			names[sheet.LeaderID] = ""
			continue
		}
		names[sheet.LeaderID] = leader.Name
	}
	result.Data = make([]SheetListing, len(sheets))
	for i, sheet := range sheets {
		result.Data[i] = SheetListing{Sheet: sheet, LeaderName: names[sheet.LeaderID]}
	}
	result.Total = total
	return result
}

type SheetResult struct {
	Data  *petition.Sheet `json:"data"`
	Error string          `json:"error,omitempty"`
}

// GetSheet fetches one sheet by business number. Open to all roles.
func (s *CustodyService) GetSheet(ctx context.Context, principal petition.Principal, sheetNumber int) SheetResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin, petition.RoleDataEntry, petition.RoleAuditor); err != nil {
		return SheetResult{Error: err.Error()}
	}
	sheet, err := s.Sheets.GetByNumber(ctx, sheetNumber)
	if err != nil {
		if errors.Is(err, petition.ErrNotFound) {
			return SheetResult{Error: "sheet not found"}
		}
		return SheetResult{Error: err.Error()}
	}
	return SheetResult{Data: &sheet}
}

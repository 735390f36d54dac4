package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jrodas4044/signature-register/internal/domain/petition"

	"github.com/jrodas4044/signature-register/internal/infra/authz"
)

// fakeStore is an in-memory implementation of the three repositories, good
// enough to drive the services without a database.
type fakeStore struct {
	leaders map[string]petition.Leader
	sheets  map[string]petition.Sheet
	lines   map[string][]petition.AdhesionLine // keyed by sheet ID
	nextID  int

	failCreateSheet map[int]error // sheet number -> forced error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leaders:         map[string]petition.Leader{},
		sheets:          map[string]petition.Sheet{},
		lines:           map[string][]petition.AdhesionLine{},
		failCreateSheet: map[int]error{},
	}
}

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeStore) addLeader(name, dpi string) petition.Leader {
	leader := petition.Leader{
		ID:    f.id(),
		Name:  name,
		DPI:   dpi,
		State: petition.LeaderActive,
	}
	f.leaders[leader.ID] = leader
	return leader
}

func (f *fakeStore) addSheet(number int, leaderID string, state petition.SheetState) petition.Sheet {
	sheet := petition.Sheet{
		ID:       f.id(),
		Number:   number,
		LeaderID: leaderID,
		State:    state,
	}
	f.sheets[sheet.ID] = sheet
	blank := make([]petition.AdhesionLine, 0, petition.LinesPerSheet)
	for i := 1; i <= petition.LinesPerSheet; i++ {
		blank = append(blank, petition.AdhesionLine{
			ID:      f.id(),
			SheetID: sheet.ID,
			Line:    i,
			State:   petition.AdhesionPending,
		})
	}
	f.lines[sheet.ID] = blank
	return sheet
}

func (f *fakeStore) setLine(sheetID string, pos int, dpi string, state petition.AdhesionState, cause *petition.RejectionCause) {
	rows := f.lines[sheetID]
	for i := range rows {
		if rows[i].Line == pos {
			if dpi != "" {
				d := dpi
				rows[i].CitizenDPI = &d
			}
			rows[i].State = state
			rows[i].Cause = cause
		}
	}
	f.lines[sheetID] = rows
}

// LeaderRepository

func (f *fakeStore) Create(_ context.Context, leader petition.Leader) (petition.Leader, error) {
	for _, existing := range f.leaders {
		if existing.DPI == leader.DPI {
			return petition.Leader{}, petition.ErrConflict
		}
	}
	leader.ID = f.id()
	f.leaders[leader.ID] = leader
	return leader, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (petition.Leader, error) {
	leader, ok := f.leaders[id]
	if !ok {
		return petition.Leader{}, petition.ErrNotFound
	}
	return leader, nil
}

func (f *fakeStore) Update(_ context.Context, leader petition.Leader) error {
	if _, ok := f.leaders[leader.ID]; !ok {
		return petition.ErrNotFound
	}
	f.leaders[leader.ID] = leader
	return nil
}

func (f *fakeStore) SoftDelete(_ context.Context, id string, at time.Time) error {
	leader, ok := f.leaders[id]
	if !ok {
		return petition.ErrNotFound
	}
	leader.DeletedAt = &at
	f.leaders[id] = leader
	return nil
}

func (f *fakeStore) sortedLeaders(includeInactive bool) []petition.Leader {
	out := []petition.Leader{}
	for _, leader := range f.leaders {
		if leader.Deleted() {
			continue
		}
		if !includeInactive && leader.State != petition.LeaderActive {
			continue
		}
		out = append(out, leader)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func paginateLeaders(leaders []petition.Leader, offset, limit int) []petition.Leader {
	if offset >= len(leaders) {
		return []petition.Leader{}
	}
	end := offset + limit
	if end > len(leaders) {
		end = len(leaders)
	}
	return leaders[offset:end]
}

func (f *fakeStore) List(_ context.Context, offset, limit int) ([]petition.Leader, int, error) {
	all := f.sortedLeaders(true)
	return paginateLeaders(all, offset, limit), len(all), nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]petition.Leader, error) {
	return f.sortedLeaders(true), nil
}

func (f *fakeStore) ListActive(_ context.Context, offset, limit int) ([]petition.Leader, int, error) {
	all := f.sortedLeaders(false)
	return paginateLeaders(all, offset, limit), len(all), nil
}

func (f *fakeStore) CountActive(_ context.Context) (int, error) {
	return len(f.sortedLeaders(false)), nil
}

// SheetRepository

func (f *fakeStore) GetSheet(_ context.Context, id string) (petition.Sheet, error) {
	sheet, ok := f.sheets[id]
	if !ok {
		return petition.Sheet{}, petition.ErrNotFound
	}
	return sheet, nil
}

func (f *fakeStore) GetByNumber(_ context.Context, number int) (petition.Sheet, error) {
	for _, sheet := range f.sheets {
		if sheet.Number == number {
			return sheet, nil
		}
	}
	return petition.Sheet{}, petition.ErrNotFound
}

func (f *fakeStore) CreateWithLines(_ context.Context, sheet petition.Sheet) error {
	if err := f.failCreateSheet[sheet.Number]; err != nil {
		return err
	}
	f.addSheet(sheet.Number, sheet.LeaderID, sheet.State)
	return nil
}

func (f *fakeStore) SetState(_ context.Context, id string, state petition.SheetState, receivedAt *time.Time) error {
	sheet, ok := f.sheets[id]
	if !ok {
		return petition.ErrNotFound
	}
	sheet.State = state
	sheet.ReceivedAt = receivedAt
	f.sheets[id] = sheet
	return nil
}

func (f *fakeStore) Override(_ context.Context, id string, state petition.SheetState, leaderID string, receivedAt *time.Time) error {
	sheet, ok := f.sheets[id]
	if !ok {
		return petition.ErrNotFound
	}
	sheet.State = state
	sheet.LeaderID = leaderID
	sheet.ReceivedAt = receivedAt
	f.sheets[id] = sheet
	return nil
}

func (f *fakeStore) ListSheets(_ context.Context, state petition.SheetState, offset, limit int) ([]petition.Sheet, int, error) {
	all := []petition.Sheet{}
	for _, sheet := range f.sheets {
		if state != "" && sheet.State != state {
			continue
		}
		all = append(all, sheet)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Number < all[j].Number })
	if offset >= len(all) {
		return []petition.Sheet{}, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (f *fakeStore) CountByLeader(_ context.Context, leaderID string) (int, int, error) {
	assigned, received := 0, 0
	for _, sheet := range f.sheets {
		if sheet.LeaderID != leaderID {
			continue
		}
		assigned++
		if sheet.State == petition.SheetReceived {
			received++
		}
	}
	return assigned, received, nil
}

func (f *fakeStore) CountAll(_ context.Context) (int, int, error) {
	assigned, received := 0, 0
	for _, sheet := range f.sheets {
		assigned++
		if sheet.State == petition.SheetReceived {
			received++
		}
	}
	return assigned, received, nil
}

func (f *fakeStore) CountByState(_ context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, sheet := range f.sheets {
		counts[string(sheet.State)]++
	}
	return counts, nil
}

// AdhesionRepository

func (f *fakeStore) ListBySheet(_ context.Context, sheetID string) ([]petition.AdhesionLine, error) {
	rows := append([]petition.AdhesionLine{}, f.lines[sheetID]...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Line < rows[j].Line })
	return rows, nil
}

func (f *fakeStore) GetBySheetAndLine(_ context.Context, sheetID string, line int) (petition.AdhesionLine, error) {
	for _, row := range f.lines[sheetID] {
		if row.Line == line {
			return row, nil
		}
	}
	return petition.AdhesionLine{}, petition.ErrNotFound
}

func (f *fakeStore) SaveLines(_ context.Context, sheetID string, lines []petition.AdhesionLine) error {
	existing := f.lines[sheetID]
	for _, line := range lines {
		found := false
		for i := range existing {
			if existing[i].Line == line.Line {
				existing[i].CitizenDPI = line.CitizenDPI
				existing[i].CitizenName = line.CitizenName
				existing[i].State = line.State
				existing[i].Cause = line.Cause
				found = true
				break
			}
		}
		if !found {
			line.ID = f.id()
			line.SheetID = sheetID
			existing = append(existing, line)
		}
	}
	f.lines[sheetID] = existing
	return nil
}

func (f *fakeStore) SetOutcome(_ context.Context, id string, state petition.AdhesionState, cause *petition.RejectionCause) error {
	for sheetID, rows := range f.lines {
		for i := range rows {
			if rows[i].ID == id {
				rows[i].State = state
				rows[i].Cause = cause
				f.lines[sheetID] = rows
				return nil
			}
		}
	}
	return petition.ErrNotFound
}

func (f *fakeStore) HasActiveDPIElsewhere(_ context.Context, dpi, excludeSheetID string) (bool, error) {
	for sheetID, rows := range f.lines {
		if sheetID == excludeSheetID {
			continue
		}
		for _, row := range rows {
			if row.CitizenDPI == nil || *row.CitizenDPI != dpi {
				continue
			}
			if row.State == petition.AdhesionAccepted || row.State == petition.AdhesionPending {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeStore) StateCountsByLeader(_ context.Context, leaderID string) (map[petition.AdhesionState]int, error) {
	counts := map[petition.AdhesionState]int{}
	for sheetID, rows := range f.lines {
		sheet, ok := f.sheets[sheetID]
		if !ok || sheet.LeaderID != leaderID {
			continue
		}
		for _, row := range rows {
			counts[row.State]++
		}
	}
	return counts, nil
}

func (f *fakeStore) RejectionCausesByLeader(_ context.Context, leaderID string) (int, int, error) {
	total, fraud := 0, 0
	for sheetID, rows := range f.lines {
		sheet, ok := f.sheets[sheetID]
		if !ok || sheet.LeaderID != leaderID {
			continue
		}
		for _, row := range rows {
			if !petition.IsRejection(row.State) {
				continue
			}
			total++
			if row.Cause != nil && petition.FraudCauses[*row.Cause] {
				fraud++
			}
		}
	}
	return total, fraud, nil
}

func (f *fakeStore) CountAdhesionsByState(_ context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, rows := range f.lines {
		for _, row := range rows {
			counts[string(row.State)]++
		}
	}
	return counts, nil
}

// Method-name collisions between the three interfaces are resolved by thin
// views over the shared store.

type fakeSheets struct{ *fakeStore }

func (f fakeSheets) Get(ctx context.Context, id string) (petition.Sheet, error) {
	return f.GetSheet(ctx, id)
}

func (f fakeSheets) List(ctx context.Context, state petition.SheetState, offset, limit int) ([]petition.Sheet, int, error) {
	return f.ListSheets(ctx, state, offset, limit)
}

type fakeAdhesions struct{ *fakeStore }

func (f fakeAdhesions) CountByState(ctx context.Context) (map[string]int, error) {
	return f.CountAdhesionsByState(ctx)
}

func (f *fakeStore) sheetRepo() SheetRepository       { return fakeSheets{f} }
func (f *fakeStore) adhesionRepo() AdhesionRepository { return fakeAdhesions{f} }
func (f *fakeStore) leaderRepo() LeaderRepository     { return f }

var testClock = func() time.Time {
	return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
}

func adminPrincipal() petition.Principal {
	return petition.Principal{Subject: "admin-1", Role: petition.RoleAdmin}
}

func clerkPrincipal() petition.Principal {
	return petition.Principal{Subject: "clerk-1", Role: petition.RoleDataEntry}
}

func auditorPrincipal() petition.Principal {
	return petition.Principal{Subject: "auditor-1", Role: petition.RoleAuditor}
}

func newAuthorizer() petition.Authorizer {
	return authz.New()
}

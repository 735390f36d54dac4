package usecase

import (
	"context"
	"math"
	"sort"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

// DefaultFraudThreshold is the fraud-cause percentage at which a leader
// enters the alert list, unless the caller overrides it.
const DefaultFraudThreshold = 15.0

// AnalyticsService computes per-leader KPIs and global dashboard figures.
// All operations are read-only and open to administrators, data-entry clerks
// and auditors.
type AnalyticsService struct {
	Leaders   LeaderRepository
	Sheets    SheetRepository
	Adhesions AdhesionRepository
	Authz     petition.Authorizer
}

func NewAnalyticsService(leaders LeaderRepository, sheets SheetRepository, adhesions AdhesionRepository, authz petition.Authorizer) *AnalyticsService {
	return &AnalyticsService{Leaders: leaders, Sheets: sheets, Adhesions: adhesions, Authz: authz}
}

// roundPercent rounds to two decimals by scaling to 10000 and dividing by
// 100, matching the reference arithmetic exactly.
func roundPercent(x float64) float64 {
	return math.Round(x*10000) / 100
}

type TopPerformerRow struct {
	LeaderID       string  `json:"leaderId"`
	Name           string  `json:"name"`
	Zone           *string `json:"zone"`
	Accepted       int     `json:"accepted"`
	Rejected       int     `json:"rejected"`
	TSEReview      int     `json:"tseReview"`
	Effectiveness  float64 `json:"effectiveness"`
	SheetsAssigned int     `json:"sheetsAssigned"`
	SheetsReceived int     `json:"sheetsReceived"`
	Compliance     float64 `json:"compliance"`
}

type LeaderboardResult struct {
	Data     []TopPerformerRow `json:"data"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Error    string            `json:"error,omitempty"`
}

// TopPerformers pages through active leaders ordered by name and ranks the
// page by effectiveness, descending. Ties keep the name order (stable sort).
func (s *AnalyticsService) TopPerformers(ctx context.Context, principal petition.Principal, page, pageSize int) LeaderboardResult {
	page, pageSize = normalizePage(page, pageSize)
	result := LeaderboardResult{Data: []TopPerformerRow{}, Page: page, PageSize: pageSize}
	if err := s.Authz.Require(principal, petition.RoleAdmin, petition.RoleDataEntry, petition.RoleAuditor); err != nil {
		result.Error = err.Error()
		return result
	}
	leaders, total, err := s.Leaders.ListActive(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Total = total
	for _, leader := range leaders {
		kpis, err := s.leaderKPIs(ctx, leader.ID)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		result.Data = append(result.Data, TopPerformerRow{
			LeaderID:       leader.ID,
			Name:           leader.Name,
			Zone:           leader.Zone,
			Accepted:       kpis.Accepted,
			Rejected:       kpis.Rejected,
			TSEReview:      kpis.TSEReview,
			Effectiveness:  kpis.Effectiveness,
			SheetsAssigned: kpis.SheetsAssigned,
			SheetsReceived: kpis.SheetsReceived,
			Compliance:     kpis.Compliance,
		})
	}
	sort.SliceStable(result.Data, func(i, j int) bool {
		return result.Data[i].Effectiveness > result.Data[j].Effectiveness
	})
	return result
}

type LeaderKPIs struct {
	SheetsAssigned int     `json:"sheetsAssigned"`
	SheetsReceived int     `json:"sheetsReceived"`
	Accepted       int     `json:"accepted"`
	Rejected       int     `json:"rejected"`
	TSEReview      int     `json:"tseReview"`
	Effectiveness  float64 `json:"effectiveness"`
	Compliance     float64 `json:"compliance"`
}

type LeaderKPIsResult struct {
	Data  *LeaderKPIs `json:"data"`
	Error string      `json:"error,omitempty"`
}

// KPIs computes effectiveness and compliance for one leader.
func (s *AnalyticsService) KPIs(ctx context.Context, principal petition.Principal, leaderID string) LeaderKPIsResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin, petition.RoleDataEntry, petition.RoleAuditor); err != nil {
		return LeaderKPIsResult{Error: err.Error()}
	}
	kpis, err := s.leaderKPIs(ctx, leaderID)
	if err != nil {
		return LeaderKPIsResult{Error: err.Error()}
	}
	return LeaderKPIsResult{Data: &kpis}
}

func (s *AnalyticsService) leaderKPIs(ctx context.Context, leaderID string) (LeaderKPIs, error) {
	assigned, received, err := s.Sheets.CountByLeader(ctx, leaderID)
	if err != nil {
		return LeaderKPIs{}, err
	}
	counts, err := s.Adhesions.StateCountsByLeader(ctx, leaderID)
	if err != nil {
		return LeaderKPIs{}, err
	}
	kpis := LeaderKPIs{
		SheetsAssigned: assigned,
		SheetsReceived: received,
		Accepted:       counts[petition.AdhesionAccepted],
		Rejected:       counts[petition.AdhesionRejected] + counts[petition.AdhesionInternalRejected],
		TSEReview:      counts[petition.AdhesionTSEReview],
	}
	if denom := kpis.Accepted + kpis.Rejected + kpis.TSEReview; denom > 0 {
		kpis.Effectiveness = roundPercent(float64(kpis.Accepted) / float64(denom))
	}
	if assigned > 0 {
		kpis.Compliance = roundPercent(float64(received) / float64(assigned))
	}
	return kpis, nil
}

type FraudAlertRow struct {
	LeaderID        string  `json:"leaderId"`
	Name            string  `json:"name"`
	Zone            *string `json:"zone"`
	TotalRejected   int     `json:"totalRejected"`
	FraudRejections int     `json:"fraudRejections"`
	FraudPercentage float64 `json:"fraudPercentage"`
}

type FraudAlertsResult struct {
	Data      []FraudAlertRow `json:"data"`
	Total     int             `json:"total"`
	Page      int             `json:"page"`
	PageSize  int             `json:"pageSize"`
	Threshold float64         `json:"threshold"`
	Error     string          `json:"error,omitempty"`
}

// FraudAlerts lists active leaders whose share of fraud-indicator rejection
// causes (fingerprint impression, blank form, signature mismatch) reaches the
// threshold. Threshold <= 0 selects the default of 15 percent.
func (s *AnalyticsService) FraudAlerts(ctx context.Context, principal petition.Principal, threshold float64, page, pageSize int) FraudAlertsResult {
	page, pageSize = normalizePage(page, pageSize)
	if threshold <= 0 {
		threshold = DefaultFraudThreshold
	}
	result := FraudAlertsResult{Data: []FraudAlertRow{}, Page: page, PageSize: pageSize, Threshold: threshold}
	if err := s.Authz.Require(principal, petition.RoleAdmin, petition.RoleDataEntry, petition.RoleAuditor); err != nil {
		result.Error = err.Error()
		return result
	}
	leaders, total, err := s.Leaders.ListActive(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Total = total
	for _, leader := range leaders {
		rejected, fraud, err := s.Adhesions.RejectionCausesByLeader(ctx, leader.ID)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		if rejected == 0 {
			continue
		}
		pct := roundPercent(float64(fraud) / float64(rejected))
		if pct < threshold {
			continue
		}
		result.Data = append(result.Data, FraudAlertRow{
			LeaderID:        leader.ID,
			Name:            leader.Name,
			Zone:            leader.Zone,
			TotalRejected:   rejected,
			FraudRejections: fraud,
			FraudPercentage: pct,
		})
	}
	sort.SliceStable(result.Data, func(i, j int) bool {
		return result.Data[i].FraudPercentage > result.Data[j].FraudPercentage
	})
	return result
}

type StateCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

type DashboardKPIs struct {
	ActiveLeaders       int     `json:"activeLeaders"`
	SheetsAssigned      int     `json:"sheetsAssigned"`
	SheetsReceived      int     `json:"sheetsReceived"`
	TotalAdhesions      int     `json:"totalAdhesions"`
	AdhesionsAccepted   int     `json:"adhesionsAccepted"`
	AdhesionsRejected   int     `json:"adhesionsRejected"`
	AdhesionsPending    int     `json:"adhesionsPending"`
	GlobalEffectiveness float64 `json:"globalEffectiveness"`
}

type DashboardSummary struct {
	KPIs             DashboardKPIs `json:"kpis"`
	AdhesionsByState []StateCount  `json:"adhesionsByState"`
	SheetsByState    []StateCount  `json:"sheetsByState"`
}

type DashboardResult struct {
	Data  *DashboardSummary `json:"data"`
	Error string            `json:"error,omitempty"`
}

// Dashboard computes the global summary. State histograms bucket by the raw
// enum key; unrecognized values are still counted under their literal key.
func (s *AnalyticsService) Dashboard(ctx context.Context, principal petition.Principal) DashboardResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin, petition.RoleDataEntry, petition.RoleAuditor); err != nil {
		return DashboardResult{Error: err.Error()}
	}
	activeLeaders, err := s.Leaders.CountActive(ctx)
	if err != nil {
		return DashboardResult{Error: err.Error()}
	}
	assigned, received, err := s.Sheets.CountAll(ctx)
	if err != nil {
		return DashboardResult{Error: err.Error()}
	}
	adhesionCounts, err := s.Adhesions.CountByState(ctx)
	if err != nil {
		return DashboardResult{Error: err.Error()}
	}
	sheetCounts, err := s.Sheets.CountByState(ctx)
	if err != nil {
		return DashboardResult{Error: err.Error()}
	}

	summary := DashboardSummary{
		KPIs: DashboardKPIs{
			ActiveLeaders:  activeLeaders,
			SheetsAssigned: assigned,
			SheetsReceived: received,
		},
		AdhesionsByState: toStateCounts(adhesionCounts),
		SheetsByState:    toStateCounts(sheetCounts),
	}
	for state, count := range adhesionCounts {
		summary.KPIs.TotalAdhesions += count
		switch petition.AdhesionState(state) {
		case petition.AdhesionAccepted:
			summary.KPIs.AdhesionsAccepted += count
		case petition.AdhesionRejected, petition.AdhesionInternalRejected:
			summary.KPIs.AdhesionsRejected += count
		case petition.AdhesionPending:
			summary.KPIs.AdhesionsPending += count
		}
	}
	if denom := summary.KPIs.AdhesionsAccepted + summary.KPIs.AdhesionsRejected; denom > 0 {
		summary.KPIs.GlobalEffectiveness = roundPercent(float64(summary.KPIs.AdhesionsAccepted) / float64(denom))
	}
	return DashboardResult{Data: &summary}
}

func toStateCounts(counts map[string]int) []StateCount {
	out := make([]StateCount, 0, len(counts))
	for state, count := range counts {
		out = append(out, StateCount{State: state, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return page, pageSize
}

package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

func newAnalytics(store *fakeStore) *AnalyticsService {
	return NewAnalyticsService(store.leaderRepo(), store.sheetRepo(), store.adhesionRepo(), newAuthorizer())
}

func TestRoundPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.0 / 3.0, 33.33},
		{2.0 / 3.0, 66.67},
		{0.5, 50},
		{1, 100},
		{0, 0},
		{0.15, 15},
	}
	for _, tt := range tests {
		if got := roundPercent(tt.in); got != tt.want {
			t.Fatalf("roundPercent(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// Builds a leader with 2 sheets (1 received), whose lines are 1 accepted,
// 1 rejected and 1 in TSE review. Effectiveness 1/3, compliance 1/2.
func seedLeaderWithActivity(store *fakeStore, name, dpi string) petition.Leader {
	leader := store.addLeader(name, dpi)
	received := store.addSheet(store.nextID+100, leader.ID, petition.SheetReceived)
	store.addSheet(store.nextID+100, leader.ID, petition.SheetInCirculation)
	store.setLine(received.ID, 1, dpi+"-a", petition.AdhesionAccepted, nil)
	cause := petition.CauseNotRegistered
	store.setLine(received.ID, 2, dpi+"-b", petition.AdhesionRejected, &cause)
	store.setLine(received.ID, 3, dpi+"-c", petition.AdhesionTSEReview, nil)
	return leader
}

func TestLeaderKPIs(t *testing.T) {
	store := newFakeStore()
	leader := seedLeaderWithActivity(store, "Ana", "100")
	svc := newAnalytics(store)

	result := svc.KPIs(context.Background(), auditorPrincipal(), leader.ID)
	if result.Error != "" || result.Data == nil {
		t.Fatalf("kpis failed: %s", result.Error)
	}
	kpis := *result.Data
	if kpis.SheetsAssigned != 2 || kpis.SheetsReceived != 1 {
		t.Fatalf("sheets = %d/%d, want 2/1", kpis.SheetsAssigned, kpis.SheetsReceived)
	}
	if kpis.Accepted != 1 || kpis.Rejected != 1 || kpis.TSEReview != 1 {
		t.Fatalf("counts = %d/%d/%d, want 1/1/1", kpis.Accepted, kpis.Rejected, kpis.TSEReview)
	}
	if kpis.Effectiveness != 33.33 {
		t.Fatalf("effectiveness = %v, want 33.33", kpis.Effectiveness)
	}
	if kpis.Compliance != 50 {
		t.Fatalf("compliance = %v, want 50", kpis.Compliance)
	}
}

func TestLeaderKPIsInternalRejectionsCount(t *testing.T) {
	store := newFakeStore()
	leader := store.addLeader("Ana", "100")
	sheet := store.addSheet(1, leader.ID, petition.SheetReceived)
	store.setLine(sheet.ID, 1, "a", petition.AdhesionAccepted, nil)
	store.setLine(sheet.ID, 2, "b", petition.AdhesionInternalRejected, nil)
	svc := newAnalytics(store)

	result := svc.KPIs(context.Background(), adminPrincipal(), leader.ID)
	if result.Data.Rejected != 1 {
		t.Fatalf("rejected = %d, want internal rejection counted", result.Data.Rejected)
	}
	if result.Data.Effectiveness != 50 {
		t.Fatalf("effectiveness = %v, want 50", result.Data.Effectiveness)
	}
}

func TestLeaderKPIsZeroDenominators(t *testing.T) {
	store := newFakeStore()
	leader := store.addLeader("Ana", "100")
	svc := newAnalytics(store)

	result := svc.KPIs(context.Background(), adminPrincipal(), leader.ID)
	if result.Error != "" {
		t.Fatalf("kpis failed: %s", result.Error)
	}
	if result.Data.Effectiveness != 0 || result.Data.Compliance != 0 {
		t.Fatalf("zero activity must yield 0/0, got %v/%v",
			result.Data.Effectiveness, result.Data.Compliance)
	}
}

func TestTopPerformersRanking(t *testing.T) {
	store := newFakeStore()

	weak := store.addLeader("Ana", "100")
	sheetW := store.addSheet(1, weak.ID, petition.SheetReceived)
	store.setLine(sheetW.ID, 1, "w1", petition.AdhesionAccepted, nil)
	cause := petition.CauseNotRegistered
	store.setLine(sheetW.ID, 2, "w2", petition.AdhesionRejected, &cause)

	strong := store.addLeader("Beto", "200")
	sheetS := store.addSheet(2, strong.ID, petition.SheetReceived)
	store.setLine(sheetS.ID, 1, "s1", petition.AdhesionAccepted, nil)
	store.setLine(sheetS.ID, 2, "s2", petition.AdhesionAccepted, nil)

	svc := newAnalytics(store)
	result := svc.TopPerformers(context.Background(), auditorPrincipal(), 1, 10)
	if result.Error != "" {
		t.Fatalf("leaderboard failed: %s", result.Error)
	}
	if result.Total != 2 || len(result.Data) != 2 {
		t.Fatalf("total=%d len=%d, want 2/2", result.Total, len(result.Data))
	}
	if result.Data[0].Name != "Beto" || result.Data[0].Effectiveness != 100 {
		t.Fatalf("first = %s (%v), want Beto at 100", result.Data[0].Name, result.Data[0].Effectiveness)
	}
	if result.Data[1].Name != "Ana" || result.Data[1].Effectiveness != 50 {
		t.Fatalf("second = %s (%v), want Ana at 50", result.Data[1].Name, result.Data[1].Effectiveness)
	}
}

func TestTopPerformersTiesKeepNameOrder(t *testing.T) {
	store := newFakeStore()
	store.addLeader("Zoe", "300")
	store.addLeader("Ana", "100")
	svc := newAnalytics(store)

	result := svc.TopPerformers(context.Background(), adminPrincipal(), 1, 10)
	if result.Error != "" {
		t.Fatalf("leaderboard failed: %s", result.Error)
	}
	if result.Data[0].Name != "Ana" || result.Data[1].Name != "Zoe" {
		t.Fatalf("tie order = %s,%s; want Ana,Zoe", result.Data[0].Name, result.Data[1].Name)
	}
}

func seedFraudLeader(store *fakeStore, name, dpi string, fraud, other int) petition.Leader {
	leader := store.addLeader(name, dpi)
	pos := 1
	sheet := store.addSheet(store.nextID+100, leader.ID, petition.SheetReceived)
	add := func(cause petition.RejectionCause, n int) {
		for i := 0; i < n; i++ {
			if pos > petition.LinesPerSheet {
				sheet = store.addSheet(store.nextID+100, leader.ID, petition.SheetReceived)
				pos = 1
			}
			c := cause
			store.setLine(sheet.ID, pos, "", petition.AdhesionRejected, &c)
			pos++
		}
	}
	add(petition.CauseFingerprint, fraud)
	add(petition.CauseNotRegistered, other)
	return leader
}

func TestFraudAlertsThreshold(t *testing.T) {
	store := newFakeStore()
	// Ana: 1 fraud of 5 rejections = 20%. Beto: 0 of 4 = 0%.
	seedFraudLeader(store, "Ana", "100", 1, 4)
	seedFraudLeader(store, "Beto", "200", 0, 4)
	// Carla has no rejections at all and must not appear.
	store.addLeader("Carla", "300")
	svc := newAnalytics(store)

	result := svc.FraudAlerts(context.Background(), auditorPrincipal(), 0, 1, 10)
	if result.Error != "" {
		t.Fatalf("alerts failed: %s", result.Error)
	}
	if result.Threshold != DefaultFraudThreshold {
		t.Fatalf("threshold = %v, want default %v", result.Threshold, DefaultFraudThreshold)
	}
	if len(result.Data) != 1 || result.Data[0].Name != "Ana" {
		t.Fatalf("alerts = %+v, want only Ana", result.Data)
	}
	alert := result.Data[0]
	if alert.TotalRejected != 5 || alert.FraudRejections != 1 || alert.FraudPercentage != 20 {
		t.Fatalf("alert = %+v, want 5/1/20", alert)
	}

	// Raising the threshold above 20 empties the list.
	strict := svc.FraudAlerts(context.Background(), auditorPrincipal(), 25, 1, 10)
	if len(strict.Data) != 0 {
		t.Fatalf("alerts at 25%% = %+v, want none", strict.Data)
	}

	// A percentage exactly at the threshold still alerts.
	exact := svc.FraudAlerts(context.Background(), auditorPrincipal(), 20, 1, 10)
	if len(exact.Data) != 1 {
		t.Fatalf("alerts at exactly 20%% = %+v, want Ana", exact.Data)
	}
}

func TestFraudAlertsSortedByPercentage(t *testing.T) {
	store := newFakeStore()
	seedFraudLeader(store, "Ana", "100", 1, 4)  // 20%
	seedFraudLeader(store, "Beto", "200", 3, 1) // 75%
	svc := newAnalytics(store)

	result := svc.FraudAlerts(context.Background(), adminPrincipal(), 10, 1, 10)
	if len(result.Data) != 2 {
		t.Fatalf("alerts = %+v, want 2", result.Data)
	}
	if result.Data[0].Name != "Beto" || result.Data[1].Name != "Ana" {
		t.Fatalf("order = %s,%s; want Beto,Ana", result.Data[0].Name, result.Data[1].Name)
	}
}

func TestDashboardSummary(t *testing.T) {
	store := newFakeStore()
	ana := store.addLeader("Ana", "100")
	inactive := store.addLeader("Beto", "200")
	inactive.State = petition.LeaderInactive
	store.leaders[inactive.ID] = inactive

	received := store.addSheet(1, ana.ID, petition.SheetReceived)
	store.addSheet(2, ana.ID, petition.SheetInCirculation)
	store.setLine(received.ID, 1, "a", petition.AdhesionAccepted, nil)
	store.setLine(received.ID, 2, "b", petition.AdhesionAccepted, nil)
	cause := petition.CauseBlankForm
	store.setLine(received.ID, 3, "c", petition.AdhesionInternalRejected, &cause)

	svc := newAnalytics(store)
	result := svc.Dashboard(context.Background(), auditorPrincipal())
	if result.Error != "" || result.Data == nil {
		t.Fatalf("dashboard failed: %s", result.Error)
	}
	kpis := result.Data.KPIs
	if kpis.ActiveLeaders != 1 {
		t.Fatalf("activeLeaders = %d, want 1 (inactive excluded)", kpis.ActiveLeaders)
	}
	if kpis.SheetsAssigned != 2 || kpis.SheetsReceived != 1 {
		t.Fatalf("sheets = %d/%d, want 2/1", kpis.SheetsAssigned, kpis.SheetsReceived)
	}
	if kpis.TotalAdhesions != 10 {
		t.Fatalf("totalAdhesions = %d, want 10 (two sheets of five)", kpis.TotalAdhesions)
	}
	if kpis.AdhesionsAccepted != 2 || kpis.AdhesionsRejected != 1 || kpis.AdhesionsPending != 7 {
		t.Fatalf("adhesions = %d/%d/%d, want 2/1/7",
			kpis.AdhesionsAccepted, kpis.AdhesionsRejected, kpis.AdhesionsPending)
	}
	if kpis.GlobalEffectiveness != 66.67 {
		t.Fatalf("globalEffectiveness = %v, want 66.67", kpis.GlobalEffectiveness)
	}

	// Histograms bucket by raw enum key, sorted by key.
	wantAdhesions := []StateCount{
		{State: "ACEPTADO", Count: 2},
		{State: "PENDIENTE", Count: 7},
		{State: "RECHAZADO_INTERNO", Count: 1},
	}
	if len(result.Data.AdhesionsByState) != len(wantAdhesions) {
		t.Fatalf("adhesionsByState = %+v", result.Data.AdhesionsByState)
	}
	for i, want := range wantAdhesions {
		if result.Data.AdhesionsByState[i] != want {
			t.Fatalf("adhesionsByState[%d] = %+v, want %+v", i, result.Data.AdhesionsByState[i], want)
		}
	}
	wantSheets := []StateCount{
		{State: "CIRCULACION", Count: 1},
		{State: "RECIBIDA", Count: 1},
	}
	for i, want := range wantSheets {
		if result.Data.SheetsByState[i] != want {
			t.Fatalf("sheetsByState[%d] = %+v, want %+v", i, result.Data.SheetsByState[i], want)
		}
	}
}

func TestAnalyticsRequireRole(t *testing.T) {
	store := newFakeStore()
	svc := newAnalytics(store)
	anonymous := petition.Principal{}

	if result := svc.TopPerformers(context.Background(), anonymous, 1, 10); !strings.Contains(result.Error, "not authenticated") {
		t.Fatalf("top performers: %q", result.Error)
	}
	if result := svc.FraudAlerts(context.Background(), anonymous, 0, 1, 10); !strings.Contains(result.Error, "not authenticated") {
		t.Fatalf("fraud alerts: %q", result.Error)
	}
	if result := svc.Dashboard(context.Background(), anonymous); !strings.Contains(result.Error, "not authenticated") {
		t.Fatalf("dashboard: %q", result.Error)
	}
}

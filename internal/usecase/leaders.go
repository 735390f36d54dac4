package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

// LeaderService manages field leaders. Leaders are never hard-deleted; the
// soft-delete timestamp removes them from listings and freezes further edits.
type LeaderService struct {
	Leaders LeaderRepository
	Authz   petition.Authorizer
	Clock   func() time.Time
	Log     *zap.Logger
}

func NewLeaderService(leaders LeaderRepository, authz petition.Authorizer, log *zap.Logger) *LeaderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeaderService{Leaders: leaders, Authz: authz, Clock: time.Now, Log: log}
}

type MutationResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type CreateLeaderInput struct {
	Name string `json:"name"`
	Zone string `json:"zone"`
	DPI  string `json:"dpi"`
}

// Create registers a new active leader. Requires the administrator role.
func (s *LeaderService) Create(ctx context.Context, principal petition.Principal, input CreateLeaderInput) MutationResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin); err != nil {
		return MutationResult{Error: err.Error()}
	}
	name := strings.TrimSpace(input.Name)
	dpi := strings.TrimSpace(input.DPI)
	if name == "" || dpi == "" {
		return MutationResult{Error: "name and DPI are required"}
	}
	leader := petition.Leader{
		Name:  name,
		DPI:   dpi,
		State: petition.LeaderActive,
	}
	if zone := strings.TrimSpace(input.Zone); zone != "" {
		leader.Zone = &zone
	}
	if _, err := s.Leaders.Create(ctx, leader); err != nil {
		if errors.Is(err, petition.ErrConflict) {
			return MutationResult{Error: "a leader with that DPI already exists"}
		}
		return MutationResult{Error: err.Error()}
	}
	s.Log.Info("leader created", zap.String("dpi", dpi))
	return MutationResult{Success: true}
}

type UpdateLeaderInput struct {
	Name  string               `json:"name"`
	Zone  string               `json:"zone"`
	DPI   string               `json:"dpi"`
	State petition.LeaderState `json:"state"`
}

// Update edits a leader's fields. Soft-deleted leaders are read-only.
// Requires the administrator role.
func (s *LeaderService) Update(ctx context.Context, principal petition.Principal, leaderID string, input UpdateLeaderInput) MutationResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin); err != nil {
		return MutationResult{Error: err.Error()}
	}
	leader, err := s.Leaders.Get(ctx, leaderID)
	if err != nil {
		if errors.Is(err, petition.ErrNotFound) {
			return MutationResult{Error: "leader not found"}
		}
		return MutationResult{Error: err.Error()}
	}
	if leader.Deleted() {
		return MutationResult{Error: "leader is deleted"}
	}
	if input.State != petition.LeaderActive && input.State != petition.LeaderInactive {
		return MutationResult{Error: "state must be activo or inactivo"}
	}
	name := strings.TrimSpace(input.Name)
	dpi := strings.TrimSpace(input.DPI)
	if name == "" || dpi == "" {
		return MutationResult{Error: "name and DPI are required"}
	}
	leader.Name = name
	leader.DPI = dpi
	leader.State = input.State
	leader.Zone = nil
	if zone := strings.TrimSpace(input.Zone); zone != "" {
		leader.Zone = &zone
	}
	if err := s.Leaders.Update(ctx, leader); err != nil {
		if errors.Is(err, petition.ErrConflict) {
			return MutationResult{Error: "a leader with that DPI already exists"}
		}
		return MutationResult{Error: err.Error()}
	}
	return MutationResult{Success: true}
}

// Delete soft-deletes a leader. Requires the administrator role.
func (s *LeaderService) Delete(ctx context.Context, principal petition.Principal, leaderID string) MutationResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin); err != nil {
		return MutationResult{Error: err.Error()}
	}
	leader, err := s.Leaders.Get(ctx, leaderID)
	if err != nil {
		if errors.Is(err, petition.ErrNotFound) {
			return MutationResult{Error: "leader not found"}
		}
		return MutationResult{Error: err.Error()}
	}
	if leader.Deleted() {
		return MutationResult{Error: "leader is already deleted"}
	}
	if err := s.Leaders.SoftDelete(ctx, leader.ID, s.Clock()); err != nil {
		return MutationResult{Error: err.Error()}
	}
	s.Log.Info("leader deleted", zap.String("leader_id", leaderID))
	return MutationResult{Success: true}
}

type ListLeadersResult struct {
	Data     []petition.Leader `json:"data"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Error    string            `json:"error,omitempty"`
}

// List pages through non-deleted leaders ordered by name. Open to all roles.
func (s *LeaderService) List(ctx context.Context, principal petition.Principal, page, pageSize int) ListLeadersResult {
	page, pageSize = normalizePage(page, pageSize)
	result := ListLeadersResult{Data: []petition.Leader{}, Page: page, PageSize: pageSize}
	if err := s.Authz.Require(principal, petition.RoleAdmin, petition.RoleDataEntry, petition.RoleAuditor); err != nil {
		result.Error = err.Error()
		return result
	}
	leaders, total, err := s.Leaders.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Data = leaders
	result.Total = total
	return result
}

type LeadersResult struct {
	Data  []petition.Leader `json:"data"`
	Error string            `json:"error,omitempty"`
}

// ListAll returns every non-deleted leader, for dropdown-style consumers.
func (s *LeaderService) ListAll(ctx context.Context, principal petition.Principal) LeadersResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin, petition.RoleDataEntry, petition.RoleAuditor); err != nil {
		return LeadersResult{Error: err.Error()}
	}
	leaders, err := s.Leaders.ListAll(ctx)
	if err != nil {
		return LeadersResult{Error: err.Error()}
	}
	return LeadersResult{Data: leaders}
}

type LeaderResult struct {
	Data  *petition.Leader `json:"data"`
	Error string           `json:"error,omitempty"`
}

// Get fetches one leader, soft-deleted included (detail view).
func (s *LeaderService) Get(ctx context.Context, principal petition.Principal, leaderID string) LeaderResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin, petition.RoleDataEntry, petition.RoleAuditor); err != nil {
		return LeaderResult{Error: err.Error()}
	}
	leader, err := s.Leaders.Get(ctx, leaderID)
	if err != nil {
		if errors.Is(err, petition.ErrNotFound) {
			return LeaderResult{Error: "leader not found"}
		}
		return LeaderResult{Error: err.Error()}
	}
	return LeaderResult{Data: &leader}
}

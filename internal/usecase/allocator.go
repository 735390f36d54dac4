package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

// AllocatorService assigns contiguous blocks of sheets to a leader. Each
// sheet is created together with its five blank lines; a failure on one
// number never aborts the rest of the range.
type AllocatorService struct {
	Sheets  SheetRepository
	Leaders LeaderRepository
	Authz   petition.Authorizer
	Clock   func() time.Time
	Log     *zap.Logger
}

func NewAllocatorService(sheets SheetRepository, leaders LeaderRepository, authz petition.Authorizer, log *zap.Logger) *AllocatorService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AllocatorService{Sheets: sheets, Leaders: leaders, Authz: authz, Clock: time.Now, Log: log}
}

// AssignBulk creates sheets numbered [from, to] for the leader. Existing
// numbers are skipped. Requires the administrator role.
func (s *AllocatorService) AssignBulk(ctx context.Context, principal petition.Principal, leaderID string, from, to int) AllocationResult {
	if err := s.Authz.Require(principal, petition.RoleAdmin); err != nil {
		return AllocationResult{Errors: []string{err.Error()}}
	}
	if from > to {
		return AllocationResult{Errors: []string{"range start cannot be greater than range end"}}
	}
	if from < 1 {
		return AllocationResult{Errors: []string{"sheet numbers start at 1"}}
	}

	leader, err := s.Leaders.Get(ctx, leaderID)
	if err != nil {
		if errors.Is(err, petition.ErrNotFound) {
			return AllocationResult{Errors: []string{"leader not found"}}
		}
		return AllocationResult{Errors: []string{err.Error()}}
	}
	if leader.Deleted() {
		return AllocationResult{Errors: []string{"leader is deleted"}}
	}

	result := AllocationResult{Errors: []string{}}
	now := s.Clock()
	for num := from; num <= to; num++ {
		_, err := s.Sheets.GetByNumber(ctx, num)
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, petition.ErrNotFound) {
			result.Errors = append(result.Errors, fmt.Sprintf("sheet %d: %v", num, err))
			continue
		}
		sheet := petition.Sheet{
			Number:     num,
			LeaderID:   leader.ID,
			State:      petition.SheetPendingDelivery,
			AssignedAt: now,
		}
		if err := s.Sheets.CreateWithLines(ctx, sheet); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("sheet %d: %v", num, err))
			continue
		}
		result.Created++
	}
	result.Success = len(result.Errors) == 0
	s.Log.Info("bulk sheet assignment",
		zap.String("leader_id", leaderID),
		zap.Int("from", from),
		zap.Int("to", to),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result
}

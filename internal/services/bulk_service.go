package services

import (
	"context"
	"log/slog"

	"github.com/hctools/hc-bulk/internal/executor"
	"github.com/hctools/hc-bulk/internal/filter"
	"github.com/hctools/hc-bulk/internal/models"
	"github.com/hctools/hc-bulk/internal/plan"
	"github.com/hctools/hc-bulk/internal/utils"
)

// CheckClient defines the remote operations the bulk service consumes.
type CheckClient interface {
	ListChecks(ctx context.Context, tags []string) ([]models.Check, error)
	UpdateCheck(ctx context.Context, uuid string, upd models.CheckUpdate) (*models.Check, error)
	PauseCheck(ctx context.Context, uuid string) (*models.Check, error)
}

// BulkService sequences fetch, filter, plan, and execute for one run. It
// holds no state between runs; every invocation re-fetches the collection
// and recomputes the plan from scratch.
type BulkService struct {
	logger *slog.Logger
	client CheckClient
	exec   *executor.Executor
}

// NewBulkService constructs the bulk-editing facade.
func NewBulkService(logger *slog.Logger, client CheckClient, exec *executor.Executor) *BulkService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BulkService{
		logger: logger,
		client: client,
		exec:   exec,
	}
}

// ListMatching fetches the check collection, narrowed server-side by
// tags (ANDed), then applies the client-side criteria. A fetch failure
// aborts the run; nothing has been planned yet at that point.
func (s *BulkService) ListMatching(ctx context.Context, tags []string, crit filter.Criteria) ([]models.Check, error) {
	checks, err := s.client.ListChecks(ctx, tags)
	if err != nil {
		return nil, utils.NewAppError("list checks", "fetching check collection failed", err)
	}
	s.logger.Debug("fetched checks", slog.Int("total", len(checks)))
	return filter.Select(checks, crit), nil
}

// BuildPlan computes the ordered per-check actions for the selection.
func (s *BulkService) BuildPlan(checks []models.Check, changes plan.FieldChanges, pause bool) plan.Plan {
	return plan.Build(checks, changes, pause)
}

// Apply executes the plan in order. Per-item failures are logged and
// counted inside the executor; the returned result carries them all.
func (s *BulkService) Apply(ctx context.Context, p plan.Plan, tick func()) executor.Result {
	return s.exec.Run(ctx, s.client, p, tick)
}

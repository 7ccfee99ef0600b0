package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/harborhq/harbor-backend/internal/repos"
  "github.com/harborhq/harbor-backend/internal/requestdata"
  "github.com/harborhq/harbor-backend/internal/types"
)

// ModuleStatuses is what the dashboard poller renders: one status string per
// dashboard module, each "pending", "running", or "done".
type ModuleStatuses struct {
  Shopping      string `json:"shopping"`
  Brand         string `json:"brand"`
  Conversations string `json:"conversations"`
  Website       string `json:"website"`
}

type ScanStatus struct {
  RunID    uuid.UUID      `json:"run_id"`
  StoreID  uuid.UUID      `json:"store_id"`
  Status   string         `json:"status"` // queued|running|done|failed
  Progress int            `json:"progress"`
  Modules  ModuleStatuses `json:"modules"`
  Error    string         `json:"error,omitempty"`
}

type ScanStatusService interface {
  GetLatestForStore(ctx context.Context, tx *gorm.DB) (*ScanStatus, error)
  GetByRunID(ctx context.Context, tx *gorm.DB, runID uuid.UUID) (*ScanStatus, error)
}

type scanStatusService struct {
  db      *gorm.DB
  runRepo repos.ScanRunRepo
}

func NewScanStatusService(db *gorm.DB, runRepo repos.ScanRunRepo) ScanStatusService {
  return &scanStatusService{
    db:      db,
    runRepo: runRepo,
  }
}

func (s *scanStatusService) GetLatestForStore(ctx context.Context, tx *gorm.DB) (*ScanStatus, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.StoreID == uuid.Nil {
    return nil, fmt.Errorf("not authenticated")
  }

  transaction := tx
  if transaction == nil {
    transaction = s.db
  }

  run, err := s.runRepo.GetLatestByStoreID(ctx, transaction, rd.StoreID)
  if err != nil {
    return nil, err
  }
  if run == nil {
    return nil, fmt.Errorf("no scan runs for store")
  }
  return BuildScanStatus(run), nil
}

func (s *scanStatusService) GetByRunID(ctx context.Context, tx *gorm.DB, runID uuid.UUID) (*ScanStatus, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.StoreID == uuid.Nil {
    return nil, fmt.Errorf("not authenticated")
  }
  if runID == uuid.Nil {
    return nil, fmt.Errorf("missing run id")
  }

  transaction := tx
  if transaction == nil {
    transaction = s.db
  }

  runs, err := s.runRepo.GetByIDs(ctx, transaction, []uuid.UUID{runID})
  if err != nil {
    return nil, err
  }
  if len(runs) == 0 || runs[0] == nil {
    return nil, fmt.Errorf("run not found")
  }
  if runs[0].StoreID != rd.StoreID {
    return nil, fmt.Errorf("run not found")
  }
  return BuildScanStatus(runs[0]), nil
}

// BuildScanStatus maps a pipeline run onto the dashboard module model. Stage
// order is group, prompts, dispatch, aggregate, persist, done; each dashboard
// module flips from pending to running when the pipeline enters its stage and
// to done once the pipeline has moved past it.
func BuildScanStatus(run *types.ScanRun) *ScanStatus {
  status := run.Status
  if status == "succeeded" {
    status = "done"
  }

  stageRank := map[string]int{
    "group":     0,
    "prompts":   1,
    "dispatch":  1,
    "aggregate": 2,
    "persist":   3,
    "done":      4,
  }
  rank, ok := stageRank[run.Stage]
  if !ok {
    rank = 0
  }
  if status == "done" {
    rank = 4
  }

  moduleAt := func(moduleRank int) string {
    switch {
    case rank > moduleRank:
      return "done"
    case rank == moduleRank && status == "failed":
      return "failed"
    case rank == moduleRank && (status == "running" || status == "queued"):
      return "running"
    default:
      return "pending"
    }
  }

  return &ScanStatus{
    RunID:    run.ID,
    StoreID:  run.StoreID,
    Status:   status,
    Progress: run.Progress,
    Modules: ModuleStatuses{
      Shopping:      moduleAt(0),
      Conversations: moduleAt(1),
      Brand:         moduleAt(2),
      Website:       moduleAt(3),
    },
    Error: run.Error,
  }
}

package scheduler

import (
  "context"
  "time"

  "github.com/robfig/cron/v3"

  "github.com/harborhq/harbor-backend/internal/logger"
  "github.com/harborhq/harbor-backend/internal/repos"
  "github.com/harborhq/harbor-backend/internal/services"
)

// Scheduler enqueues scans for stores whose next_scan_at has come due. It is
// a thin cron wrapper; the scan worker does the actual processing and the
// single-flight check in EnqueueScan keeps a due store from piling up runs.
type Scheduler struct {
  log         *logger.Logger
  cron        *cron.Cron
  storeRepo   repos.StoreRepo
  scanService services.ScanService
  batchLimit  int
}

func NewScheduler(log *logger.Logger, storeRepo repos.StoreRepo, scanService services.ScanService, batchLimit int) *Scheduler {
  if batchLimit <= 0 {
    batchLimit = 50
  }
  return &Scheduler{
    log:         log.With("component", "Scheduler"),
    cron:        cron.New(),
    storeRepo:   storeRepo,
    scanService: scanService,
    batchLimit:  batchLimit,
  }
}

// Start runs one sweep immediately, then registers the sweep on the given
// cron spec (e.g. "@every 1m") and starts the cron runner.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
  if spec == "" {
    spec = "@every 1m"
  }
  _, err := s.cron.AddFunc(spec, func() {
    s.sweep(ctx)
  })
  if err != nil {
    return err
  }
  go s.sweep(ctx)
  s.cron.Start()
  s.log.Info("scan scheduler started", "spec", spec)
  return nil
}

func (s *Scheduler) Stop() {
  stopCtx := s.cron.Stop()
  <-stopCtx.Done()
  s.log.Info("scan scheduler stopped")
}

func (s *Scheduler) sweep(ctx context.Context) {
  sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
  defer cancel()

  due, err := s.storeRepo.GetDue(sweepCtx, nil, time.Now(), s.batchLimit)
  if err != nil {
    s.log.Warn("failed to list due stores", "error", err)
    return
  }
  if len(due) == 0 {
    return
  }

  enqueued := 0
  for _, store := range due {
    if store == nil {
      continue
    }
    if _, err := s.scanService.EnqueueScan(sweepCtx, store.ID); err != nil {
      // Already-active stores land here too; that is expected.
      s.log.Debug("skipping due store", "store_id", store.ID, "reason", err)
      continue
    }
    enqueued++
  }
  s.log.Info("scheduler sweep completed", "due", len(due), "enqueued", enqueued)
}

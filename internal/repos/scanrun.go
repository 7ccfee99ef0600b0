package repos

import (
  "context"
  "errors"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"

  "github.com/harborhq/harbor-backend/internal/logger"
  "github.com/harborhq/harbor-backend/internal/types"
)

type ScanRunRepo interface {
  Create(ctx context.Context, tx *gorm.DB, runs []*types.ScanRun) ([]*types.ScanRun, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ScanRun, error)

  // Latest run for a store (used by GET /api/stores/:id/scan).
  GetLatestByStoreID(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) (*types.ScanRun, error)

  // True when a queued or running run already exists for the store; keeps
  // enqueue single-flight per store.
  HasActiveForStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) (bool, error)

  // Claims the next run that is runnable:
  // - status=queued
  // - OR status=failed and attempts < maxAttempts and last_error_at older than retryDelay (or NULL)
  // - OR status=running but heartbeat is stale (crash recovery)
  ClaimNextRunnable(ctx context.Context, tx *gorm.DB, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.ScanRun, error)

  UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
  Heartbeat(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type scanRunRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewScanRunRepo(db *gorm.DB, baseLog *logger.Logger) ScanRunRepo {
  repoLog := baseLog.With("repo", "ScanRunRepo")
  return &scanRunRepo{db: db, log: repoLog}
}

func (r *scanRunRepo) Create(ctx context.Context, tx *gorm.DB, runs []*types.ScanRun) ([]*types.ScanRun, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(runs) == 0 {
    return []*types.ScanRun{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&runs).Error; err != nil {
    return nil, err
  }
  return runs, nil
}

func (r *scanRunRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ScanRun, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.ScanRun
  if len(ids) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *scanRunRepo) GetLatestByStoreID(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) (*types.ScanRun, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if storeID == uuid.Nil {
    return nil, nil
  }

  var run types.ScanRun
  err := transaction.WithContext(ctx).
    Where("store_id = ?", storeID).
    Order("created_at DESC").
    Limit(1).
    Find(&run).Error
  if err != nil {
    return nil, err
  }
  if run.ID == uuid.Nil {
    return nil, nil
  }
  return &run, nil
}

func (r *scanRunRepo) HasActiveForStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if storeID == uuid.Nil {
    return false, nil
  }
  var count int64
  err := transaction.WithContext(ctx).
    Model(&types.ScanRun{}).
    Where("store_id = ? AND status IN ?", storeID, []string{"queued", "running"}).
    Count(&count).Error
  if err != nil {
    return false, err
  }
  return count > 0, nil
}

func (r *scanRunRepo) ClaimNextRunnable(
  ctx context.Context,
  tx *gorm.DB,
  maxAttempts int,
  retryDelay time.Duration,
  staleRunning time.Duration,
) (*types.ScanRun, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  now := time.Now()
  retryCutoff := now.Add(-retryDelay)
  staleCutoff := now.Add(-staleRunning)

  var claimed *types.ScanRun

  err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
    var run types.ScanRun

    q := txx.
      Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
      Where(`
        (
          status = ?
          OR (
            status = ?
            AND attempts < ?
            AND (last_error_at IS NULL OR last_error_at < ?)
          )
          OR (
            status = ?
            AND heartbeat_at IS NOT NULL
            AND heartbeat_at < ?
          )
        )
      `, "queued", "failed", maxAttempts, retryCutoff, "running", staleCutoff).
      Order("created_at ASC")

    qErr := q.First(&run).Error
    if errors.Is(qErr, gorm.ErrRecordNotFound) {
      return nil
    }
    if qErr != nil {
      return qErr
    }

    // Claim it: mark running, increment attempts, set lock/heartbeat.
    uErr := txx.Model(&types.ScanRun{}).
      Where("id = ?", run.ID).
      Updates(map[string]interface{}{
        "status":       "running",
        "attempts":     gorm.Expr("attempts + 1"),
        "locked_at":    now,
        "heartbeat_at": now,
        "updated_at":   now,
      }).Error
    if uErr != nil {
      return uErr
    }

    claimed = &run
    return nil
  })

  if err != nil {
    return nil, err
  }
  return claimed, nil
}

func (r *scanRunRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil
  }
  if updates == nil {
    updates = map[string]interface{}{}
  }
  if _, ok := updates["updated_at"]; !ok {
    updates["updated_at"] = time.Now()
  }
  return transaction.WithContext(ctx).
    Model(&types.ScanRun{}).
    Where("id = ?", id).
    Updates(updates).Error
}

func (r *scanRunRepo) Heartbeat(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil
  }
  now := time.Now()
  return transaction.WithContext(ctx).
    Model(&types.ScanRun{}).
    Where("id = ? AND status = ?", id, "running").
    Updates(map[string]interface{}{
      "heartbeat_at": now,
      "updated_at":   now,
    }).Error
}

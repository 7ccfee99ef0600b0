package repos

import (
  "context"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/harborhq/harbor-backend/internal/logger"
  "github.com/harborhq/harbor-backend/internal/types"
)

type StoreRepo interface {
  Create(ctx context.Context, tx *gorm.DB, stores []*types.Store) ([]*types.Store, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Store, error)

  // Stores whose next_scan_at is due (or never scanned), used by the scheduler.
  GetDue(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]*types.Store, error)

  UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type storeRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewStoreRepo(db *gorm.DB, baseLog *logger.Logger) StoreRepo {
  repoLog := baseLog.With("repo", "StoreRepo")
  return &storeRepo{db: db, log: repoLog}
}

func (r *storeRepo) Create(ctx context.Context, tx *gorm.DB, stores []*types.Store) ([]*types.Store, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(stores) == 0 {
    return []*types.Store{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&stores).Error; err != nil {
    return nil, err
  }
  return stores, nil
}

func (r *storeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Store, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Store
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

func (r *storeRepo) GetDue(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]*types.Store, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if limit <= 0 {
    limit = 50
  }
  var results []*types.Store
  if err := transaction.WithContext(ctx).
    Where("next_scan_at IS NULL OR next_scan_at <= ?", now).
    Order("next_scan_at ASC NULLS FIRST").
    Limit(limit).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *storeRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
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
    Model(&types.Store{}).
    Where("id = ?", id).
    Updates(updates).Error
}

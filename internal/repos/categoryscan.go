package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/harborhq/harbor-backend/internal/logger"
  "github.com/harborhq/harbor-backend/internal/types"
)

type CategoryScanRepo interface {
  Create(ctx context.Context, tx *gorm.DB, scans []*types.CategoryScan) ([]*types.CategoryScan, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CategoryScan, error)
  GetByRunID(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*types.CategoryScan, error)
  GetByStoreID(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, limit int) ([]*types.CategoryScan, error)
}

type categoryScanRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCategoryScanRepo(db *gorm.DB, baseLog *logger.Logger) CategoryScanRepo {
  repoLog := baseLog.With("repo", "CategoryScanRepo")
  return &categoryScanRepo{db: db, log: repoLog}
}

func (r *categoryScanRepo) Create(ctx context.Context, tx *gorm.DB, scans []*types.CategoryScan) ([]*types.CategoryScan, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(scans) == 0 {
    return []*types.CategoryScan{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&scans).Error; err != nil {
    return nil, err
  }
  return scans, nil
}

func (r *categoryScanRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CategoryScan, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.CategoryScan
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

func (r *categoryScanRepo) GetByRunID(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*types.CategoryScan, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.CategoryScan
  if runID == uuid.Nil {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("run_id = ?", runID).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *categoryScanRepo) GetByStoreID(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, limit int) ([]*types.CategoryScan, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.CategoryScan
  if storeID == uuid.Nil {
    return results, nil
  }
  if limit <= 0 {
    limit = 100
  }
  if err := transaction.WithContext(ctx).
    Where("store_id = ?", storeID).
    Order("created_at DESC").
    Limit(limit).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

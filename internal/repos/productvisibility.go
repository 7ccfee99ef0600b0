package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/harborhq/harbor-backend/internal/logger"
  "github.com/harborhq/harbor-backend/internal/types"
)

type ProductVisibilityRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.ProductVisibility) ([]*types.ProductVisibility, error)
  GetByScanIDs(ctx context.Context, tx *gorm.DB, scanIDs []uuid.UUID) ([]*types.ProductVisibility, error)
}

type productVisibilityRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewProductVisibilityRepo(db *gorm.DB, baseLog *logger.Logger) ProductVisibilityRepo {
  repoLog := baseLog.With("repo", "ProductVisibilityRepo")
  return &productVisibilityRepo{db: db, log: repoLog}
}

func (r *productVisibilityRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ProductVisibility) ([]*types.ProductVisibility, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(rows) == 0 {
    return []*types.ProductVisibility{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *productVisibilityRepo) GetByScanIDs(ctx context.Context, tx *gorm.DB, scanIDs []uuid.UUID) ([]*types.ProductVisibility, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.ProductVisibility
  if len(scanIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("scan_id IN ?", scanIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/harborhq/harbor-backend/internal/logger"
  "github.com/harborhq/harbor-backend/internal/types"
)

type ProductRepo interface {
  Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error)
  GetByStoreID(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]*types.Product, error)
}

type productRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
  repoLog := baseLog.With("repo", "ProductRepo")
  return &productRepo{db: db, log: repoLog}
}

func (r *productRepo) Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(products) == 0 {
    return []*types.Product{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&products).Error; err != nil {
    return nil, err
  }
  return products, nil
}

func (r *productRepo) GetByStoreID(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]*types.Product, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Product
  if storeID == uuid.Nil {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("store_id = ?", storeID).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

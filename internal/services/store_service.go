package services

import (
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/harborhq/harbor-backend/internal/db"
  "github.com/harborhq/harbor-backend/internal/logger"
  "github.com/harborhq/harbor-backend/internal/repos"
  "github.com/harborhq/harbor-backend/internal/requestdata"
  "github.com/harborhq/harbor-backend/internal/types"
)

// ProductInput is one catalog row as submitted at registration or ingest time.
type ProductInput struct {
  Title       string   `json:"title"`
  Vendor      string   `json:"vendor"`
  ProductType string   `json:"product_type"`
  Price       *float64 `json:"price,omitempty"`
}

type StoreService interface {
  RegisterStore(ctx context.Context, name, domain, frequency string, products []ProductInput) (*types.Store, error)
  IngestProducts(ctx context.Context, products []ProductInput) ([]*types.Product, error)
  GetStore(ctx context.Context, tx *gorm.DB) (*types.Store, error)
  GetScans(ctx context.Context, tx *gorm.DB, limit int) ([]*types.CategoryScan, error)
  GetVisibility(ctx context.Context, tx *gorm.DB, scanID uuid.UUID) ([]*types.ProductVisibility, error)
}

type storeService struct {
  db        *gorm.DB
  log       *logger.Logger
  storeRepo repos.StoreRepo
  prodRepo  repos.ProductRepo
  scanRepo  repos.CategoryScanRepo
  visRepo   repos.ProductVisibilityRepo
}

func NewStoreService(
  db *gorm.DB,
  log *logger.Logger,
  storeRepo repos.StoreRepo,
  prodRepo repos.ProductRepo,
  scanRepo repos.CategoryScanRepo,
  visRepo repos.ProductVisibilityRepo,
) StoreService {
  serviceLog := log.With("service", "StoreService")
  return &storeService{
    db:        db,
    log:       serviceLog,
    storeRepo: storeRepo,
    prodRepo:  prodRepo,
    scanRepo:  scanRepo,
    visRepo:   visRepo,
  }
}

func (s *storeService) RegisterStore(ctx context.Context, name, domain, frequency string, products []ProductInput) (*types.Store, error) {
  name = strings.TrimSpace(name)
  if name == "" {
    return nil, fmt.Errorf("store name is required")
  }
  switch frequency {
  case types.ScanFrequencyDaily, types.ScanFrequencyWeekly, types.ScanFrequencyMonthly:
  case "":
    frequency = types.ScanFrequencyMonthly
  default:
    return nil, fmt.Errorf("invalid scan frequency %q", frequency)
  }

  now := time.Now()
  store := &types.Store{
    ID:            uuid.New(),
    Name:          name,
    Domain:        strings.TrimSpace(domain),
    ScanFrequency: frequency,
    CreatedAt:     now,
    UpdatedAt:     now,
  }

  err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, err := s.storeRepo.Create(ctx, tx, []*types.Store{store}); err != nil {
      return fmt.Errorf("create store: %w", err)
    }
    rows, err := buildProducts(store.ID, products)
    if err != nil {
      return err
    }
    if _, err := s.prodRepo.Create(ctx, tx, rows); err != nil {
      return fmt.Errorf("create products: %w", err)
    }
    return nil
  })
  if err != nil {
    if db.IsUniqueViolation(err) {
      return nil, fmt.Errorf("a store with these details already exists")
    }
    return nil, err
  }

  s.log.Info("store registered", "store_id", store.ID, "products", len(products))
  return store, nil
}

func (s *storeService) IngestProducts(ctx context.Context, products []ProductInput) ([]*types.Product, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.StoreID == uuid.Nil {
    return nil, fmt.Errorf("not authenticated")
  }
  rows, err := buildProducts(rd.StoreID, products)
  if err != nil {
    return nil, err
  }
  if len(rows) == 0 {
    return nil, fmt.Errorf("no products submitted")
  }
  return s.prodRepo.Create(ctx, nil, rows)
}

func (s *storeService) GetStore(ctx context.Context, tx *gorm.DB) (*types.Store, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.StoreID == uuid.Nil {
    return nil, fmt.Errorf("not authenticated")
  }
  stores, err := s.storeRepo.GetByIDs(ctx, tx, []uuid.UUID{rd.StoreID})
  if err != nil {
    return nil, err
  }
  if len(stores) == 0 || stores[0] == nil {
    return nil, fmt.Errorf("store not found")
  }
  return stores[0], nil
}

func (s *storeService) GetScans(ctx context.Context, tx *gorm.DB, limit int) ([]*types.CategoryScan, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.StoreID == uuid.Nil {
    return nil, fmt.Errorf("not authenticated")
  }
  return s.scanRepo.GetByStoreID(ctx, tx, rd.StoreID, limit)
}

func (s *storeService) GetVisibility(ctx context.Context, tx *gorm.DB, scanID uuid.UUID) ([]*types.ProductVisibility, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.StoreID == uuid.Nil {
    return nil, fmt.Errorf("not authenticated")
  }
  if scanID == uuid.Nil {
    return nil, fmt.Errorf("missing scan id")
  }

  transaction := tx
  if transaction == nil {
    transaction = s.db
  }

  // authorize: scan must belong to the caller's store
  scans, err := s.scanRepo.GetByIDs(ctx, transaction, []uuid.UUID{scanID})
  if err != nil {
    return nil, err
  }
  if len(scans) == 0 || scans[0] == nil || scans[0].StoreID != rd.StoreID {
    return nil, fmt.Errorf("scan not found")
  }
  return s.visRepo.GetByScanIDs(ctx, transaction, []uuid.UUID{scanID})
}

func buildProducts(storeID uuid.UUID, inputs []ProductInput) ([]*types.Product, error) {
  now := time.Now()
  rows := make([]*types.Product, 0, len(inputs))
  for i, in := range inputs {
    title := strings.TrimSpace(in.Title)
    if title == "" {
      return nil, fmt.Errorf("product %d: title is required", i)
    }
    rows = append(rows, &types.Product{
      ID:          uuid.New(),
      StoreID:     storeID,
      Title:       title,
      Vendor:      strings.TrimSpace(in.Vendor),
      ProductType: strings.TrimSpace(in.ProductType),
      Price:       in.Price,
      CreatedAt:   now,
      UpdatedAt:   now,
    })
  }
  return rows, nil
}

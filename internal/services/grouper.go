package services

import (
  "context"
  "fmt"
  "sort"
  "strings"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/harborhq/harbor-backend/internal/logger"
  "github.com/harborhq/harbor-backend/internal/repos"
  "github.com/harborhq/harbor-backend/internal/types"
)

// DefaultCategory is used for products with no product_type set.
const DefaultCategory = "General"

// CategoryGroup is the in-memory partition of a store's catalog: one category
// with its member products and the hero product anchoring the prompts.
type CategoryGroup struct {
  Category string
  Products []*types.Product
  Hero     *types.Product
}

type Grouper interface {
  GroupByCategory(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]CategoryGroup, error)
}

type grouper struct {
  log         *logger.Logger
  storeRepo   repos.StoreRepo
  productRepo repos.ProductRepo
}

func NewGrouper(baseLog *logger.Logger, storeRepo repos.StoreRepo, productRepo repos.ProductRepo) Grouper {
  return &grouper{
    log:         baseLog.With("service", "Grouper"),
    storeRepo:   storeRepo,
    productRepo: productRepo,
  }
}

func (g *grouper) GroupByCategory(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]CategoryGroup, error) {
  stores, err := g.storeRepo.GetByIDs(ctx, tx, []uuid.UUID{storeID})
  if err != nil {
    return nil, fmt.Errorf("load store: %w", err)
  }
  if len(stores) == 0 || stores[0] == nil {
    return nil, fmt.Errorf("store not found")
  }

  products, err := g.productRepo.GetByStoreID(ctx, tx, storeID)
  if err != nil {
    return nil, fmt.Errorf("load products: %w", err)
  }

  return BuildCategoryGroups(products), nil
}

// BuildCategoryGroups partitions products by product_type and picks each
// group's hero: highest price wins, null prices sort last, ties broken by
// title then id so the result is deterministic.
func BuildCategoryGroups(products []*types.Product) []CategoryGroup {
  byCategory := map[string][]*types.Product{}
  order := []string{}

  for _, p := range products {
    if p == nil {
      continue
    }
    category := strings.TrimSpace(p.ProductType)
    if category == "" {
      category = DefaultCategory
    }
    if _, ok := byCategory[category]; !ok {
      order = append(order, category)
    }
    byCategory[category] = append(byCategory[category], p)
  }

  groups := make([]CategoryGroup, 0, len(order))
  for _, category := range order {
    members := byCategory[category]
    groups = append(groups, CategoryGroup{
      Category: category,
      Products: members,
      Hero:     pickHero(members),
    })
  }
  return groups
}

func pickHero(members []*types.Product) *types.Product {
  if len(members) == 0 {
    return nil
  }
  sorted := make([]*types.Product, len(members))
  copy(sorted, members)
  sort.SliceStable(sorted, func(i, j int) bool {
    pi, pj := sorted[i], sorted[j]
    switch {
    case pi.Price == nil && pj.Price == nil:
      // fall through to tie-break
    case pi.Price == nil:
      return false
    case pj.Price == nil:
      return true
    case *pi.Price != *pj.Price:
      return *pi.Price > *pj.Price
    }
    if pi.Title != pj.Title {
      return pi.Title < pj.Title
    }
    return pi.ID.String() < pj.ID.String()
  })
  return sorted[0]
}

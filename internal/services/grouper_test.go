package services

import (
  "testing"

  "github.com/google/uuid"

  "github.com/harborhq/harbor-backend/internal/types"
)

func productWithPrice(title, productType string, price *float64) *types.Product {
  return &types.Product{
    ID:          uuid.New(),
    Title:       title,
    ProductType: productType,
    Price:       price,
  }
}

func fptr(v float64) *float64 { return &v }

func TestBuildCategoryGroupsPartitionsByProductType(t *testing.T) {
  products := []*types.Product{
    productWithPrice("Trail Jacket", "Jackets", fptr(120)),
    productWithPrice("Summit Boots", "Boots", fptr(200)),
    productWithPrice("Storm Jacket", "Jackets", fptr(90)),
  }

  groups := BuildCategoryGroups(products)
  if len(groups) != 2 {
    t.Fatalf("expected 2 groups, got %d", len(groups))
  }
  if groups[0].Category != "Jackets" {
    t.Fatalf("expected first group Jackets (insertion order), got %q", groups[0].Category)
  }
  if len(groups[0].Products) != 2 {
    t.Fatalf("expected 2 jackets, got %d", len(groups[0].Products))
  }
  if groups[1].Category != "Boots" {
    t.Fatalf("expected second group Boots, got %q", groups[1].Category)
  }
}

func TestBuildCategoryGroupsDefaultCategory(t *testing.T) {
  products := []*types.Product{
    productWithPrice("Mystery Gadget", "", fptr(10)),
    productWithPrice("Labeled Gadget", "  ", fptr(20)),
  }

  groups := BuildCategoryGroups(products)
  if len(groups) != 1 {
    t.Fatalf("expected 1 group, got %d", len(groups))
  }
  if groups[0].Category != DefaultCategory {
    t.Fatalf("expected default category %q, got %q", DefaultCategory, groups[0].Category)
  }
}

func TestPickHeroHighestPriceWins(t *testing.T) {
  cheap := productWithPrice("Cheap Tent", "Tents", fptr(99))
  pricey := productWithPrice("Alpine Tent", "Tents", fptr(499))

  groups := BuildCategoryGroups([]*types.Product{cheap, pricey})
  if groups[0].Hero == nil || groups[0].Hero.ID != pricey.ID {
    t.Fatalf("expected highest priced product as hero")
  }
}

func TestPickHeroNilPriceSortsLast(t *testing.T) {
  unpriced := productWithPrice("Unpriced Tent", "Tents", nil)
  priced := productWithPrice("Budget Tent", "Tents", fptr(49))

  groups := BuildCategoryGroups([]*types.Product{unpriced, priced})
  if groups[0].Hero == nil || groups[0].Hero.ID != priced.ID {
    t.Fatalf("expected priced product over unpriced as hero")
  }
}

func TestPickHeroTieBreaksOnTitle(t *testing.T) {
  b := productWithPrice("Bravo Pack", "Packs", fptr(150))
  a := productWithPrice("Alpha Pack", "Packs", fptr(150))

  groups := BuildCategoryGroups([]*types.Product{b, a})
  if groups[0].Hero == nil || groups[0].Hero.ID != a.ID {
    t.Fatalf("expected title ascending tie-break, got hero %q", groups[0].Hero.Title)
  }
}

func TestBuildCategoryGroupsEmptyCatalog(t *testing.T) {
  groups := BuildCategoryGroups(nil)
  if len(groups) != 0 {
    t.Fatalf("expected no groups for empty catalog, got %d", len(groups))
  }
}

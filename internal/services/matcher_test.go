package services

import (
  "testing"

  "github.com/google/uuid"

  "github.com/harborhq/harbor-backend/internal/types"
)

func titledProduct(title string) *types.Product {
  return &types.Product{ID: uuid.New(), Title: title}
}

func TestMatchMentionsFullTitleCaseInsensitive(t *testing.T) {
  p := titledProduct("Summit Jacket")
  mentions := MatchMentions("I would recommend the SUMMIT JACKET for cold weather.", []*types.Product{p})
  if len(mentions) != 1 {
    t.Fatalf("expected 1 mention, got %d", len(mentions))
  }
  if mentions[0].ProductID != p.ID {
    t.Fatalf("wrong product matched")
  }
  if mentions[0].Position != 1 {
    t.Fatalf("expected position 1, got %d", mentions[0].Position)
  }
}

func TestMatchMentionsPartialFallback(t *testing.T) {
  // Full title absent, but the first three words ("Alpine Expedition Tent",
  // 22 chars) appear.
  p := titledProduct("Alpine Expedition Tent 4-Person")
  mentions := MatchMentions("The Alpine Expedition Tent is a solid choice.", []*types.Product{p})
  if len(mentions) != 1 {
    t.Fatalf("expected partial-prefix match, got %d mentions", len(mentions))
  }
}

func TestMatchMentionsNoFallbackForShortTitles(t *testing.T) {
  // Two words: no partial fallback at all.
  twoWords := titledProduct("Storm Shell")
  if got := MatchMentions("Try the Storm jacket.", []*types.Product{twoWords}); len(got) != 0 {
    t.Fatalf("expected no match for two-word title, got %d", len(got))
  }

  // Three words but prefix under ten characters: still no fallback.
  shortPrefix := titledProduct("Go Up Kit Deluxe Edition")
  if got := MatchMentions("The Go Up Kit is popular.", []*types.Product{shortPrefix}); len(got) != 0 {
    t.Fatalf("expected no match for short prefix, got %d", len(got))
  }
}

func TestMatchMentionsOrderedByOffset(t *testing.T) {
  first := titledProduct("Beta Boots")
  second := titledProduct("Alpha Anorak")
  response := "Start with the Beta Boots, then consider the Alpha Anorak."

  mentions := MatchMentions(response, []*types.Product{second, first})
  if len(mentions) != 2 {
    t.Fatalf("expected 2 mentions, got %d", len(mentions))
  }
  if mentions[0].ProductID != first.ID || mentions[0].Position != 1 {
    t.Fatalf("expected earliest offset ranked first")
  }
  if mentions[1].ProductID != second.ID || mentions[1].Position != 2 {
    t.Fatalf("expected later offset ranked second")
  }
}

func TestMatchMentionsSkipsBlankTitles(t *testing.T) {
  blank := titledProduct("   ")
  mentions := MatchMentions("anything at all", []*types.Product{blank, nil})
  if len(mentions) != 0 {
    t.Fatalf("expected no mentions, got %d", len(mentions))
  }
}

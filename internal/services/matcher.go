package services

import (
  "sort"
  "strings"

  "github.com/harborhq/harbor-backend/internal/types"
)

// MatchMentions finds each product whose title appears as a case-insensitive
// substring of the response. When the full title is absent, a needle of the
// title's first three words is tried instead, but only when the title has at
// least three words and that prefix is at least ten characters; short titles
// get no partial fallback. Matches are ordered ascending by first-occurrence
// offset and Position is the 1-based rank in that ordering — earlier textual
// mention means a more prominent placement.
func MatchMentions(response string, products []*types.Product) []types.Mention {
  loweredResponse := strings.ToLower(response)

  mentions := make([]types.Mention, 0, len(products))
  for _, p := range products {
    if p == nil || strings.TrimSpace(p.Title) == "" {
      continue
    }
    offset := strings.Index(loweredResponse, strings.ToLower(p.Title))
    if offset < 0 {
      if needle, ok := partialNeedle(p.Title); ok {
        offset = strings.Index(loweredResponse, strings.ToLower(needle))
      }
    }
    if offset < 0 {
      continue
    }
    mentions = append(mentions, types.Mention{
      ProductID:    p.ID,
      ProductTitle: p.Title,
      Offset:       offset,
    })
  }

  sort.SliceStable(mentions, func(i, j int) bool {
    return mentions[i].Offset < mentions[j].Offset
  })
  for i := range mentions {
    mentions[i].Position = i + 1
  }
  return mentions
}

func partialNeedle(title string) (string, bool) {
  words := strings.Fields(title)
  if len(words) < 3 {
    return "", false
  }
  prefix := strings.Join(words[:3], " ")
  if len(prefix) < 10 {
    return "", false
  }
  return prefix, true
}

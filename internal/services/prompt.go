package services

import (
  "fmt"
  "strings"
)

// The question templates a category is expanded into. Only the first one is
// dispatched per scan to bound provider spend; the rest are kept for parity
// with the prompt-tracking surface.
var promptTemplates = []string{
  "What are the best %s products I can buy right now?",
  "Can you recommend a good %s? I'm comparing a few options.",
  "Which brands make the highest quality %s?",
}

// GeneratePrompts expands a category name into the fixed template set.
// Deterministic and idempotent; the category flows in verbatim aside from
// lower-casing.
func GeneratePrompts(category string) []string {
  lowered := strings.ToLower(category)
  out := make([]string, 0, len(promptTemplates))
  for _, tpl := range promptTemplates {
    out = append(out, fmt.Sprintf(tpl, lowered))
  }
  return out
}

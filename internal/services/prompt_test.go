package services

import (
  "strings"
  "testing"
)

func TestGeneratePromptsCount(t *testing.T) {
  prompts := GeneratePrompts("Jackets")
  if len(prompts) != 3 {
    t.Fatalf("expected 3 prompts, got %d", len(prompts))
  }
}

func TestGeneratePromptsLowercasesCategory(t *testing.T) {
  prompts := GeneratePrompts("Hiking Boots")
  for _, p := range prompts {
    if strings.Contains(p, "Hiking Boots") {
      t.Fatalf("expected lowered category in prompt, got %q", p)
    }
    if !strings.Contains(p, "hiking boots") {
      t.Fatalf("expected category in prompt, got %q", p)
    }
  }
}

func TestGeneratePromptsDeterministic(t *testing.T) {
  first := GeneratePrompts("tents")
  second := GeneratePrompts("tents")
  if len(first) != len(second) {
    t.Fatalf("prompt counts differ")
  }
  for i := range first {
    if first[i] != second[i] {
      t.Fatalf("prompt %d differs: %q vs %q", i, first[i], second[i])
    }
  }
}

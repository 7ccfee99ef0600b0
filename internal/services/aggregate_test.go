package services

import (
  "testing"
  "time"

  "github.com/google/uuid"

  "github.com/harborhq/harbor-backend/internal/types"
)

func resultWithMentions(model string, mentions ...types.Mention) types.ScanResult {
  return types.ScanResult{Model: model, Mentions: mentions}
}

func TestAggregateCategoryScore(t *testing.T) {
  pid := uuid.New()
  results := []types.ScanResult{
    resultWithMentions("chatgpt", types.Mention{ProductID: pid, Position: 1}),
    resultWithMentions("claude", types.Mention{ProductID: pid, Position: 2}),
    resultWithMentions("gemini"),
    resultWithMentions("perplexity"),
  }

  score, _ := AggregateCategory(results)
  if score != 50 {
    t.Fatalf("expected score 50, got %d", score)
  }
}

func TestAggregateCategoryScoreRounds(t *testing.T) {
  pid := uuid.New()
  results := []types.ScanResult{
    resultWithMentions("chatgpt", types.Mention{ProductID: pid, Position: 1}),
    resultWithMentions("claude"),
    resultWithMentions("gemini"),
  }

  // 1/3 => 33.33 rounds to 33
  score, _ := AggregateCategory(results)
  if score != 33 {
    t.Fatalf("expected score 33, got %d", score)
  }

  results = append(results, resultWithMentions("perplexity", types.Mention{ProductID: pid, Position: 1}), resultWithMentions("mock", types.Mention{ProductID: pid, Position: 1}))
  // 3/5 => 60
  score, _ = AggregateCategory(results)
  if score != 60 {
    t.Fatalf("expected score 60, got %d", score)
  }
}

func TestAggregateCategoryScoreBounds(t *testing.T) {
  pid := uuid.New()

  // Every model matched: exactly 100.
  all := []types.ScanResult{
    resultWithMentions("chatgpt", types.Mention{ProductID: pid, Position: 1}),
    resultWithMentions("claude", types.Mention{ProductID: pid, Position: 1}),
  }
  if score, _ := AggregateCategory(all); score != 100 {
    t.Fatalf("expected 100 when all models match, got %d", score)
  }

  // No model matched: exactly 0.
  none := []types.ScanResult{
    resultWithMentions("chatgpt"),
    resultWithMentions("claude"),
  }
  if score, _ := AggregateCategory(none); score != 0 {
    t.Fatalf("expected 0 when no models match, got %d", score)
  }
}

func TestAggregateCategoryFailedModelsCountInDenominator(t *testing.T) {
  pid := uuid.New()
  results := []types.ScanResult{
    resultWithMentions("chatgpt", types.Mention{ProductID: pid, Position: 1}),
    {Model: "claude", Failed: true},
  }

  score, _ := AggregateCategory(results)
  if score != 50 {
    t.Fatalf("expected failed model in denominator, got score %d", score)
  }
}

func TestAggregateCategoryEmptyResults(t *testing.T) {
  score, tallies := AggregateCategory(nil)
  if score != 0 {
    t.Fatalf("expected score 0 for empty results, got %d", score)
  }
  if len(tallies) != 0 {
    t.Fatalf("expected no tallies, got %d", len(tallies))
  }
}

func TestAggregateCategoryTallies(t *testing.T) {
  pid := uuid.New()
  results := []types.ScanResult{
    resultWithMentions("chatgpt", types.Mention{ProductID: pid, Position: 3}),
    resultWithMentions("claude", types.Mention{ProductID: pid, Position: 1}),
  }

  _, tallies := AggregateCategory(results)
  tally := tallies[pid]
  if tally == nil {
    t.Fatalf("expected tally for product")
  }
  if tally.MentionCount != 2 {
    t.Fatalf("expected 2 mentions, got %d", tally.MentionCount)
  }
  if tally.BestPosition == nil || *tally.BestPosition != 1 {
    t.Fatalf("expected best position 1, got %v", tally.BestPosition)
  }
  if len(tally.Models) != 2 {
    t.Fatalf("expected 2 models, got %v", tally.Models)
  }
}

func TestNextScanAt(t *testing.T) {
  from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

  if got := NextScanAt(types.ScanFrequencyDaily, from); !got.Equal(from.AddDate(0, 0, 1)) {
    t.Fatalf("daily: got %v", got)
  }
  if got := NextScanAt(types.ScanFrequencyWeekly, from); !got.Equal(from.AddDate(0, 0, 7)) {
    t.Fatalf("weekly: got %v", got)
  }
  if got := NextScanAt(types.ScanFrequencyMonthly, from); !got.Equal(from.AddDate(0, 0, 30)) {
    t.Fatalf("monthly: got %v", got)
  }
  if got := NextScanAt("bogus", from); !got.Equal(from.AddDate(0, 0, 30)) {
    t.Fatalf("unknown cadence should fall back to monthly: got %v", got)
  }
}

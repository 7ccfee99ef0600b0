package services

import (
  "math"
  "time"

  "github.com/google/uuid"

  "github.com/harborhq/harbor-backend/internal/types"
)

// ProductTally accumulates one product's mentions across every model response
// in a category scan.
type ProductTally struct {
  MentionCount int
  BestPosition *int
  Models       []string
}

// AggregateCategory folds the per-model scan results into the category
// visibility score and a per-product tally. The score is the percentage of
// queried models whose response matched at least one product, rounded to an
// integer; failed models count toward the denominator with zero matches.
func AggregateCategory(results []types.ScanResult) (int, map[uuid.UUID]*ProductTally) {
  tallies := map[uuid.UUID]*ProductTally{}

  modelsWithMatch := 0
  for _, res := range results {
    if len(res.Mentions) > 0 {
      modelsWithMatch++
    }
    for _, m := range res.Mentions {
      tally := tallies[m.ProductID]
      if tally == nil {
        tally = &ProductTally{}
        tallies[m.ProductID] = tally
      }
      tally.MentionCount++
      if tally.BestPosition == nil || m.Position < *tally.BestPosition {
        pos := m.Position
        tally.BestPosition = &pos
      }
      if !containsString(tally.Models, res.Model) {
        tally.Models = append(tally.Models, res.Model)
      }
    }
  }

  if len(results) == 0 {
    return 0, tallies
  }
  score := int(math.Round(100 * float64(modelsWithMatch) / float64(len(results))))
  return score, tallies
}

// NextScanAt computes the follow-up scan time from the store's cadence.
// Unknown cadences fall back to monthly.
func NextScanAt(frequency string, from time.Time) time.Time {
  switch frequency {
  case types.ScanFrequencyDaily:
    return from.AddDate(0, 0, 1)
  case types.ScanFrequencyWeekly:
    return from.AddDate(0, 0, 7)
  default:
    return from.AddDate(0, 0, 30)
  }
}

func containsString(list []string, v string) bool {
  for _, item := range list {
    if item == v {
      return true
    }
  }
  return false
}

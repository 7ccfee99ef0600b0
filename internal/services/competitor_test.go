package services

import (
  "testing"
)

func TestExtractCompetitorsFramedPhrase(t *testing.T) {
  response := "You could also look at the Summit Gear Pro from NorthPeak for winter use."
  got := ExtractCompetitors(response, nil)
  if len(got) != 1 {
    t.Fatalf("expected 1 competitor, got %d: %v", len(got), got)
  }
  if got[0] != "Summit Gear Pro" {
    t.Fatalf("expected %q, got %q", "Summit Gear Pro", got[0])
  }
}

func TestExtractCompetitorsPossessivePhrase(t *testing.T) {
  response := "Many hikers prefer Trailblaze's boots over anything else."
  got := ExtractCompetitors(response, nil)
  if len(got) != 1 {
    t.Fatalf("expected 1 competitor, got %d: %v", len(got), got)
  }
  if got[0] != "Trailblaze" {
    t.Fatalf("expected %q, got %q", "Trailblaze", got[0])
  }
}

func TestExtractCompetitorsExcludesOwnProducts(t *testing.T) {
  response := "You could also look at the Summit Gear Pro from NorthPeak."
  got := ExtractCompetitors(response, []string{"Summit Gear Pro Jacket"})
  if len(got) != 0 {
    t.Fatalf("own product reported as competitor: %v", got)
  }
}

func TestExtractCompetitorsExcludesOwnProductsEitherDirection(t *testing.T) {
  // The extracted phrase contains the own title, not the other way around.
  response := "Many hikers prefer Trailblaze Ultra's boots over anything else."
  got := ExtractCompetitors(response, []string{"trailblaze"})
  if len(got) != 0 {
    t.Fatalf("own product reported as competitor: %v", got)
  }
}

func TestExtractCompetitorsTrimsSentenceInitialWord(t *testing.T) {
  response := "Consider NORTHPEAK's jackets if you hike in winter."
  got := ExtractCompetitors(response, nil)
  if len(got) != 1 {
    t.Fatalf("expected 1 competitor, got %d: %v", len(got), got)
  }
  if got[0] != "NORTHPEAK" {
    t.Fatalf("sentence opener absorbed into brand: got %q", got[0])
  }
}

func TestExtractCompetitorsKeepsSingleWordSentenceInitialBrand(t *testing.T) {
  response := "Acme's boots lead the pack."
  got := ExtractCompetitors(response, nil)
  if len(got) != 1 {
    t.Fatalf("expected 1 competitor, got %d: %v", len(got), got)
  }
  if got[0] != "Acme" {
    t.Fatalf("expected %q, got %q", "Acme", got[0])
  }
}

func TestExtractCompetitorsDedupesCaseInsensitively(t *testing.T) {
  response := "Consider NORTHPEAK's jackets early on. Later, Northpeak's boots hold up too."
  got := ExtractCompetitors(response, nil)
  if len(got) != 1 {
    t.Fatalf("expected dedupe to 1 competitor, got %d: %v", len(got), got)
  }
  if got[0] != "NORTHPEAK" {
    t.Fatalf("expected first casing kept, got %q", got[0])
  }
}

func TestExtractCompetitorsNoBrands(t *testing.T) {
  got := ExtractCompetitors("nothing brand shaped in here at all.", []string{"Summit Jacket"})
  if len(got) != 0 {
    t.Fatalf("expected no competitors, got %v", got)
  }
}

package services

import (
  "regexp"
  "strings"
)

// Brand-ish phrases are spotted with two shallow patterns: a capitalized
// phrase framed by an article and "from"/"by", and a possessive capitalized
// phrase. This is a heuristic, not NER; the firm contract is only that the
// store's own products are never reported as competitors.
var (
  framedBrandRe     = regexp.MustCompile(`(?:the|a|The|A) ((?:[A-Z][A-Za-z0-9]*(?: |$)){1,4})(?:from|by) `)
  possessiveBrandRe = regexp.MustCompile(`((?:[A-Z][A-Za-z0-9]*)(?: [A-Z][A-Za-z0-9]*){0,3})'s [a-z]+`)
)

// ExtractCompetitors collects brand-like phrases from the response, drops any
// phrase matching one of the store's own product titles (case-insensitive
// substring, either direction), and deduplicates case-insensitively keeping
// the first casing seen.
func ExtractCompetitors(response string, ownTitles []string) []string {
  candidates := []string{}

  for _, m := range framedBrandRe.FindAllStringSubmatch(response, -1) {
    if len(m) > 1 {
      candidates = append(candidates, strings.TrimSpace(m[1]))
    }
  }
  for _, idx := range possessiveBrandRe.FindAllStringSubmatchIndex(response, -1) {
    if len(idx) < 4 || idx[2] < 0 {
      continue
    }
    phrase := response[idx[2]:idx[3]]
    // A capitalized word that merely opens a sentence ("Consider NORTHPEAK's
    // jackets") is not part of the brand; drop it and keep the rest.
    if sentenceInitial(response, idx[2]) {
      if i := strings.IndexByte(phrase, ' '); i >= 0 {
        phrase = phrase[i+1:]
      }
    }
    candidates = append(candidates, strings.TrimSpace(phrase))
  }

  loweredTitles := make([]string, 0, len(ownTitles))
  for _, t := range ownTitles {
    t = strings.TrimSpace(strings.ToLower(t))
    if t != "" {
      loweredTitles = append(loweredTitles, t)
    }
  }

  seen := map[string]bool{}
  out := []string{}
  for _, phrase := range candidates {
    if phrase == "" {
      continue
    }
    lowered := strings.ToLower(phrase)
    if matchesOwnProduct(lowered, loweredTitles) {
      continue
    }
    if seen[lowered] {
      continue
    }
    seen[lowered] = true
    out = append(out, phrase)
  }
  return out
}

// sentenceInitial reports whether the character at start begins a sentence:
// only whitespace between it and the previous sentence terminator (or the
// beginning of the text).
func sentenceInitial(s string, start int) bool {
  for i := start - 1; i >= 0; i-- {
    switch s[i] {
    case ' ', '\t', '\n', '\r':
      continue
    case '.', '!', '?':
      return true
    default:
      return false
    }
  }
  return true
}

func matchesOwnProduct(loweredPhrase string, loweredTitles []string) bool {
  for _, title := range loweredTitles {
    if strings.Contains(title, loweredPhrase) || strings.Contains(loweredPhrase, title) {
      return true
    }
  }
  return false
}

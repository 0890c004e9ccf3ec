// Package normalizer cleans raw document text and detects its language.
// Cleaning preserves non-Latin scripts untouched; there is no
// transliteration.
package normalizer

import (
	"regexp"
	"strings"

	"github.com/pemistahl/lingua-go"

	"fundrag/internal/domain"
)

const (
	// LanguageUnknown is returned when detection fails or is ambiguous.
	LanguageUnknown = "unknown"

	// detectionWindow bounds how much cleaned text detection looks at.
	detectionWindow = 1000
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	noiseRe = regexp.MustCompile(`[•■◆�]`)
	// "Page 3 of 50" style artifacts left by PDF extraction.
	pageRe     = regexp.MustCompile(`(?i)Page\s*\d+\s*(of)?\s*\d*`)
	strayNumRe = regexp.MustCompile(`\b\d{1,3}\b`)
	punctRunRe = regexp.MustCompile(`[.,;:]{2,}`)
)

// Normalizer implements port.Normalizer.
type Normalizer struct {
	detector lingua.LanguageDetector
}

// New builds a normalizer with a detector restricted to the corpus
// languages. A smaller language set keeps short-query detection reliable.
func New() *Normalizer {
	languages := []lingua.Language{
		lingua.English,
		lingua.Hindi,
		lingua.Tamil,
		lingua.Telugu,
		lingua.Bengali,
		lingua.Gujarati,
		lingua.Punjabi,
		lingua.Urdu,
		lingua.French,
		lingua.German,
		lingua.Spanish,
	}
	return &Normalizer{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}
}

// Normalize cleans text in the given mode and detects its language.
// Pure function of its input; never fails.
func (n *Normalizer) Normalize(text string, mode domain.CleanMode) domain.Normalized {
	var cleaned string
	if mode == domain.CleanAggressive {
		cleaned = aggressiveClean(text)
	} else {
		cleaned = basicClean(text)
	}

	return domain.Normalized{
		CleanText: cleaned,
		Language:  n.DetectLanguage(cleaned),
	}
}

// DetectLanguage returns a lowercase ISO 639-1 code or "unknown". Looks at
// the first ~1000 runes only; detection failure degrades, never errors.
func (n *Normalizer) DetectLanguage(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return LanguageUnknown
	}

	runes := []rune(text)
	if len(runes) > detectionWindow {
		text = string(runes[:detectionWindow])
	}

	lang, ok := n.detector.DetectLanguageOf(text)
	if !ok {
		return LanguageUnknown
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

// basicClean collapses whitespace and strips noise glyphs without losing
// content.
func basicClean(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\t", " ")

	text = noiseRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// aggressiveClean additionally strips page-number artifacts, stray 1-3
// digit tokens and repeated punctuation runs. Heuristic de-noising for
// low-quality scans.
func aggressiveClean(text string) string {
	text = basicClean(text)

	text = pageRe.ReplaceAllString(text, " ")
	text = strayNumRe.ReplaceAllString(text, " ")
	text = punctRunRe.ReplaceAllString(text, ".")

	text = spaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

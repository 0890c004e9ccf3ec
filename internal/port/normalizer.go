package port

import "fundrag/internal/domain"

// Normalizer cleans raw text and detects its language. Pure: same input
// and mode always produce the same output. Detection never fails; it
// degrades to "unknown".
type Normalizer interface {
	Normalize(text string, mode domain.CleanMode) domain.Normalized

	// DetectLanguage returns a lowercase ISO 639-1 code or "unknown".
	DetectLanguage(text string) string
}

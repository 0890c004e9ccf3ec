// Package guardrails holds the quality gates applied to retrieved
// evidence and generated answers. Stateless; the single place where
// "good enough to show the user" is decided.
package guardrails

import (
	"strings"
	"unicode/utf8"
)

// minEvidenceChars is the substantive-length bar for retrieved text,
// in characters, not bytes: shorter passages are likely noise or
// boilerplate.
const minEvidenceChars = 80

// hedgingPhrases indicate the model is speculating instead of grounding
// on evidence. Matched case-insensitively.
var hedgingPhrases = []string{
	"i think",
	"maybe",
	"it seems like",
	"i assume",
	"might be",
	"probably",
	"as an ai i guess",
}

// GuardRails validates evidence and answers and supplies the fallback.
type GuardRails struct{}

// New creates the guardrail gate set.
func New() *GuardRails {
	return &GuardRails{}
}

// ValidateRetrieval reports whether at least one retrieved text exceeds
// the minimum substantive length. Length is counted in characters so
// non-Latin scripts are gated the same as ASCII.
func (g *GuardRails) ValidateRetrieval(docs []string) bool {
	for _, d := range docs {
		if utf8.RuneCountInString(d) > minEvidenceChars {
			return true
		}
	}
	return false
}

// ValidateAnswer rejects blank answers and answers containing a hedging
// phrase from the deny list.
func (g *GuardRails) ValidateAnswer(answer string) bool {
	if strings.TrimSpace(answer) == "" {
		return false
	}

	lower := strings.ToLower(answer)
	for _, phrase := range hedgingPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}

// FinalGate is the combined decision: evidence and answer must both pass.
func (g *GuardRails) FinalGate(docs []string, answer string) bool {
	return g.ValidateRetrieval(docs) && g.ValidateAnswer(answer)
}

// FallbackResponse is the fixed message substituted for rejected answers.
func (g *GuardRails) FallbackResponse() string {
	return "The available knowledge base does not provide reliable information to " +
		"answer this query confidently. Please refine your question or provide " +
		"more specific context."
}

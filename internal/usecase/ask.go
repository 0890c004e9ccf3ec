package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"fundrag/internal/adapter/guardrails"
	"fundrag/internal/domain"
	"fundrag/internal/port"
)

const (
	// defaultLanguage is assumed when query language detection fails.
	defaultLanguage = "en"

	systemPrompt = "You are a friendly, knowledgeable Startup Funding Intelligence Assistant. " +
		"You help people understand funding policies, schemes, and startup opportunities in a clear, " +
		"conversational way. Always be honest about what you know and don't know. Answer naturally, " +
		"like you're having a helpful conversation. If asked about topics outside startup funding, " +
		"politely redirect to your expertise area."

	retrievalErrorAnswer = "I encountered an issue while searching my knowledge base. " +
		"Please make sure the vector index has been built (run 'fundrag build' first)."

	noResultsAnswer = "I'm sorry, but I couldn't find any relevant information in my knowledge base " +
		"to answer your question. This could mean:\n\n" +
		"1. The question might be outside the scope of startup funding information I have access to\n" +
		"2. The knowledge base might need to be updated with more documents\n\n" +
		"Could you try rephrasing your question, or ask something specifically about startup funding " +
		"policies, schemes, or programs?"

	generationErrorAnswer = "I encountered an issue while generating a response. " +
		"Please check your API key and internet connection, then try again."
)

// AskService composes normalizer, retriever, prompt building, the LLM
// and the guardrail gate into a single Ask operation. Stateless across
// calls; safe for concurrent use.
type AskService struct {
	normalizer port.Normalizer
	retriever  port.Retriever
	llm        port.LLM
	guard      *guardrails.GuardRails
	logger     *zap.Logger

	topK          int
	maxContext    int
	minChunkChars int
}

// AskOptions tunes context preparation. Zero values select defaults.
type AskOptions struct {
	TopK          int // passages requested from the retriever (default 5)
	MaxContext    int // passages kept after dedup (default 5)
	MinChunkChars int // passages shorter than this are dropped (default 20)
}

// NewAskService wires the ask pipeline. All collaborators are explicit
// dependencies; the service holds no hidden global state.
func NewAskService(
	normalizer port.Normalizer,
	retriever port.Retriever,
	llm port.LLM,
	guard *guardrails.GuardRails,
	opts AskOptions,
	logger *zap.Logger,
) *AskService {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.MaxContext <= 0 {
		opts.MaxContext = 5
	}
	if opts.MinChunkChars <= 0 {
		opts.MinChunkChars = 20
	}
	return &AskService{
		normalizer:    normalizer,
		retriever:     retriever,
		llm:           llm,
		guard:         guard,
		logger:        logger,
		topK:          opts.TopK,
		maxContext:    opts.MaxContext,
		minChunkChars: opts.MinChunkChars,
	}
}

// Ask answers a question grounded in retrieved evidence. Every outcome is
// a valid envelope; topK <= 0 selects the configured default. The caller
// context short-circuits retrieval and generation.
func (s *AskService) Ask(ctx context.Context, query string, topK int) domain.AnswerEnvelope {
	if topK <= 0 {
		topK = s.topK
	}

	// Stage 1: detect the query language; failure falls back to English.
	language := s.normalizer.DetectLanguage(query)
	if language == "unknown" {
		language = defaultLanguage
	}

	// Stage 2: retrieve evidence.
	result, err := s.retriever.Search(ctx, query, topK)
	if err != nil {
		s.logger.Warn("retrieval failed", zap.Error(err))
		return domain.AnswerEnvelope{
			Answer:     retrievalErrorAnswer,
			Language:   language,
			References: []domain.Reference{},
			Status:     domain.StatusRetrievalError,
		}
	}
	if len(result) == 0 {
		return domain.AnswerEnvelope{
			Answer:     noResultsAnswer,
			Language:   language,
			References: []domain.Reference{},
			Status:     domain.StatusNoResults,
		}
	}

	// Stage 3: prepare context (dedup, drop short, cap).
	contextDocs := s.prepareContext(result)
	contextTexts := make([]string, len(contextDocs))
	for i, d := range contextDocs {
		contextTexts[i] = d.Text
	}

	// Stage 4+5: build the grounding prompt and generate.
	messages := []port.Message{
		{Role: port.RoleSystem, Content: systemPrompt},
		{Role: port.RoleUser, Content: buildPrompt(query, contextTexts, language)},
	}

	answer, err := s.llm.Generate(ctx, messages)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.logger.Debug("generation cancelled", zap.Error(err))
		} else {
			s.logger.Warn("generation failed", zap.Error(err))
		}
		return domain.AnswerEnvelope{
			Answer:     generationErrorAnswer,
			Language:   language,
			References: assembleReferences(contextDocs),
			Status:     domain.StatusGenerationError,
		}
	}

	// Stage 6: the single quality gate. On rejection the fallback text
	// replaces the answer but the references gathered are kept.
	status := domain.StatusSuccess
	if !s.guard.FinalGate(contextTexts, answer) {
		s.logger.Debug("guardrail gate rejected answer")
		answer = s.guard.FallbackResponse()
		status = domain.StatusLowConfidence
	}

	// Stage 7: one reference per context passage actually used.
	return domain.AnswerEnvelope{
		Answer:     answer,
		Language:   language,
		References: assembleReferences(contextDocs),
		Status:     status,
	}
}

// prepareContext deduplicates by exact text, drops passages below the
// substantive minimum and caps the remainder, guarding the downstream
// token budget.
func (s *AskService) prepareContext(result domain.RetrievalResult) []domain.RetrievedDoc {
	seen := make(map[string]struct{})
	var kept []domain.RetrievedDoc

	for _, doc := range result {
		text := strings.TrimSpace(doc.Text)
		if utf8.RuneCountInString(text) < s.minChunkChars {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		kept = append(kept, domain.RetrievedDoc{Text: text, Metadata: doc.Metadata})
		if len(kept) == s.maxContext {
			break
		}
	}

	return kept
}

// assembleReferences maps context passages to their source references.
func assembleReferences(docs []domain.RetrievedDoc) []domain.Reference {
	refs := make([]domain.Reference, 0, len(docs))
	for _, d := range docs {
		refs = append(refs, domain.Reference{
			SourceFile:   metaOr(d.Metadata, "source_file", "unknown"),
			Language:     metaOr(d.Metadata, "language", "unknown"),
			DocumentType: metaOr(d.Metadata, "document_type", "unknown"),
		})
	}
	return refs
}

func metaOr(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return fallback
}

// buildPrompt assembles the grounding prompt: the query, the ordered
// context passages labeled [Source i], and the detected language, with
// explicit instructions to answer only from context and decline politely
// when the question is out of domain.
func buildPrompt(query string, contextTexts []string, language string) string {
	var contextBlock strings.Builder
	for i, chunk := range contextTexts {
		fmt.Fprintf(&contextBlock, "\n[Source %d]\n%s\n", i+1, chunk)
	}

	return fmt.Sprintf(`You are a friendly and knowledgeable Startup Funding Intelligence Assistant. Your goal is to help users understand startup funding policies, schemes, and opportunities in a clear, conversational, and human-like manner.

IMPORTANT GUIDELINES:
1. Use ONLY the information from the CONTEXT DOCUMENTS below. Never make up information.
2. Write in a natural, conversational tone - as if you're having a helpful conversation with a friend.
3. Answer in the same language the user asked (detected as: %s).
4. If the context doesn't have enough information, be honest and say so politely, but try to be helpful with what is available.
5. For questions outside your knowledge base (like weather, general knowledge unrelated to startup funding), politely redirect: "I specialize in startup funding information. Could you ask me something about funding policies, schemes, or startup programs?"
6. Make your answer engaging and easy to understand - use simple language, break down complex topics, and provide practical insights.
7. When discussing funding amounts, eligibility, or deadlines, be specific and cite sources like [Source 1], [Source 2].
8. Structure your answer logically but naturally - like explaining to someone over coffee, not like a formal report.

USER'S QUESTION:
%s

CONTEXT DOCUMENTS (Use these to answer):
%s

Now, provide a helpful, human-like answer. Be conversational, clear, and practical. If you can answer from the context, do so thoroughly. If not, be honest about limitations while still being helpful.`, language, query, contextBlock.String())
}

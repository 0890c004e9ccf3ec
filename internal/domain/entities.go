package domain

// CleanMode selects how much cleaning the normalizer applies.
type CleanMode string

const (
	// CleanBasic collapses whitespace and strips noise glyphs.
	CleanBasic CleanMode = "basic"
	// CleanAggressive additionally strips page-number artifacts, bare
	// numeric tokens and repeated punctuation. Meant for bad scans.
	CleanAggressive CleanMode = "aggressive"
)

// Normalized is the output of text normalization.
type Normalized struct {
	CleanText string
	Language  string
}

// RetrievedDoc is one retrieved passage with its stored metadata.
type RetrievedDoc struct {
	Text     string
	Metadata map[string]string
}

// RetrievalResult is ordered by descending similarity to the query.
type RetrievalResult []RetrievedDoc

// QueryResponse is the raw index query shape. Results are nested one
// level to allow multi-query batching; single-query callers use index 0.
type QueryResponse struct {
	Documents [][]string            `json:"documents"`
	Metadatas [][]map[string]string `json:"metadatas"`
}

// AnswerStatus is the terminal state of an ask() invocation.
type AnswerStatus string

const (
	StatusSuccess         AnswerStatus = "success"
	StatusNoResults       AnswerStatus = "no_results"
	StatusRetrievalError  AnswerStatus = "retrieval_error"
	StatusGenerationError AnswerStatus = "generation_error"
	// StatusLowConfidence means the guardrail gate rejected the generated
	// answer and the fixed fallback text was substituted.
	StatusLowConfidence AnswerStatus = "low_confidence"
)

// Reference identifies a source passage used to ground an answer.
type Reference struct {
	SourceFile   string `json:"source_file"`
	Language     string `json:"language"`
	DocumentType string `json:"document_type"`
}

// AnswerEnvelope is the result of a single ask() call. Never persisted.
type AnswerEnvelope struct {
	Answer     string       `json:"answer"`
	Language   string       `json:"language"`
	References []Reference  `json:"references"`
	Status     AnswerStatus `json:"status"`
}

// ArtifactMetadata describes the source document of a chunk artifact.
type ArtifactMetadata struct {
	Language     string `json:"language"`
	DocumentType string `json:"document_type"`
	Source       string `json:"source"`
	IngestedAt   string `json:"ingested_at"`
	IngestRunID  string `json:"ingest_run_id,omitempty"`
}

// ChunkArtifact is the ingestion output consumed by the index build step:
// one JSON file per source document.
type ChunkArtifact struct {
	FileName   string           `json:"file_name"`
	ChunkCount int              `json:"chunk_count"`
	Metadata   ArtifactMetadata `json:"metadata"`
	Chunks     []string         `json:"chunks"`
}

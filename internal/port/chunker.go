package port

// Chunker splits normalized text into retrieval-sized units. Stateless;
// empty input yields an empty sequence, not an error.
type Chunker interface {
	Chunk(text string) []string
}
